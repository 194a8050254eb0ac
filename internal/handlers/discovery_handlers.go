package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/msanjurjo/fundlens/internal/models"
	"github.com/msanjurjo/fundlens/internal/repository"
	"github.com/msanjurjo/fundlens/internal/services"
	"github.com/msanjurjo/fundlens/internal/util"
	log "github.com/sirupsen/logrus"
)

// DiscoveryHandler handles candidate discovery and ranking endpoints
type DiscoveryHandler struct {
	fundSvc      *services.FundService
	discoverySvc *services.DiscoveryService
	rankingSvc   *services.RankingService
}

// NewDiscoveryHandler creates a new DiscoveryHandler
func NewDiscoveryHandler(fundSvc *services.FundService, discoverySvc *services.DiscoveryService, rankingSvc *services.RankingService) *DiscoveryHandler {
	return &DiscoveryHandler{
		fundSvc:      fundSvc,
		discoverySvc: discoverySvc,
		rankingSvc:   rankingSvc,
	}
}

// Alternatives handles POST /portfolio/alternatives
// @Summary Discover substitute candidates for a held fund
// @Description Searches the fund universe with class/region synonym expansion and returns a bounded, deduplicated candidate set
// @Tags portfolio
// @Accept json
// @Produce json
// @Param request body models.DiscoverRequest true "Target fund and exclusions"
// @Success 200 {object} models.DiscoverResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /portfolio/alternatives [post]
func (h *DiscoveryHandler) Alternatives(c *gin.Context) {
	var req models.DiscoverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "bad_request",
			Message: err.Error(),
		})
		return
	}
	if !util.ValidISIN(req.TargetISIN) {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "bad_request",
			Message: "invalid target ISIN",
		})
		return
	}

	ctx, wc := services.NewWarningContext(c.Request.Context())

	target, err := h.fundSvc.GetFund(ctx, req.TargetISIN)
	if err != nil {
		if errors.Is(err, repository.ErrFundNotFound) {
			c.JSON(http.StatusNotFound, models.ErrorResponse{
				Error:   "not_found",
				Message: "target fund not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "internal_error",
			Message: err.Error(),
		})
		return
	}

	exclude := make(map[string]struct{}, len(req.Exclude))
	for _, isin := range req.Exclude {
		exclude[isin] = struct{}{}
	}

	candidates, err := h.discoverySvc.Discover(ctx, target, exclude, services.DiscoveryFilters{Region: req.Region}, req.DesiredCount)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "internal_error",
			Message: err.Error(),
		})
		return
	}
	if len(candidates) == 0 {
		services.AddWarning(ctx, models.Warning{
			Code:    models.WarnNoAlternatives,
			Message: "no alternatives found for " + req.TargetISIN,
		})
	}

	c.JSON(http.StatusOK, models.DiscoverResponse{
		Candidates: candidates,
		Warnings:   wc.GetWarnings(),
	})
}

// Rank handles POST /portfolio/alternatives/rank
// @Summary Rank candidates by simulated marginal impact
// @Description Backtests one hypothetical portfolio per candidate, sequentially, and ranks by Sharpe delta versus the baseline
// @Tags portfolio
// @Accept json
// @Produce json
// @Param request body models.RankRequest true "Portfolio, candidate ISINs and optional baseline"
// @Success 200 {object} models.RankResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 502 {object} models.ErrorResponse
// @Router /portfolio/alternatives/rank [post]
func (h *DiscoveryHandler) Rank(c *gin.Context) {
	var req models.RankRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "bad_request",
			Message: err.Error(),
		})
		return
	}

	ctx, wc := services.NewWarningContext(c.Request.Context())

	baseline := 0.0
	if req.BaselineSharpe != nil {
		baseline = *req.BaselineSharpe
	} else {
		var err error
		baseline, err = h.rankingSvc.Baseline(ctx, req.Items, req.Period)
		if err != nil {
			c.JSON(http.StatusBadGateway, models.ErrorResponse{
				Error:   "backtest_unavailable",
				Message: err.Error(),
			})
			return
		}
	}

	// Resolve candidate ISINs; an unresolvable candidate is dropped, not fatal.
	var candidates []models.NormalizedFund
	for _, isin := range req.CandidateISINs {
		fund, err := h.fundSvc.GetFund(ctx, isin)
		if err != nil {
			log.Warnf("rank: dropping unresolvable candidate %s: %v", isin, err)
			continue
		}
		candidates = append(candidates, *fund)
	}

	results, err := h.rankingSvc.Rank(ctx, req.Items, candidates, baseline, req.Period, func(processed, total int) {
		log.Debugf("ranking progress %d/%d", processed, total)
	})
	if err != nil {
		// Context cancellation: the client went away, nothing to respond to.
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "internal_error",
			Message: fmt.Sprintf("ranking aborted: %v", err),
		})
		return
	}

	c.JSON(http.StatusOK, models.RankResponse{
		Results:        results,
		BaselineSharpe: baseline,
		Warnings:       wc.GetWarnings(),
	})
}
