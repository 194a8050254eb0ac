package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/msanjurjo/fundlens/internal/buckets"
	"github.com/msanjurjo/fundlens/internal/models"
	"github.com/msanjurjo/fundlens/internal/services"
)

// RebalanceHandler handles rescale and optimizer-proposal endpoints
type RebalanceHandler struct {
	rebalanceSvc *services.RebalanceService
	optimizerSvc *services.OptimizerService
}

// NewRebalanceHandler creates a new RebalanceHandler
func NewRebalanceHandler(rebalanceSvc *services.RebalanceService, optimizerSvc *services.OptimizerService) *RebalanceHandler {
	return &RebalanceHandler{
		rebalanceSvc: rebalanceSvc,
		optimizerSvc: optimizerSvc,
	}
}

// Rescale handles POST /portfolio/rescale
// @Summary Rescale a portfolio toward target bucket weights
// @Description Proportionally rescales every holding so per-bucket totals match the targets
// @Tags portfolio
// @Accept json
// @Produce json
// @Param request body models.RescaleRequest true "Portfolio and bucket targets"
// @Success 200 {object} models.RescaleResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 422 {object} models.ErrorResponse
// @Router /portfolio/rescale [post]
func (h *RebalanceHandler) Rescale(c *gin.Context) {
	var req models.RescaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "bad_request",
			Message: err.Error(),
		})
		return
	}

	rescaled, err := h.rebalanceSvc.Rescale(req.Items, req.Targets)
	if err != nil {
		if errors.Is(err, buckets.ErrTargetSum) || errors.Is(err, buckets.ErrUnknownBucket) {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:   "bad_request",
				Message: err.Error(),
			})
			return
		}
		var infeasible *buckets.InfeasibleError
		if errors.As(err, &infeasible) {
			c.JSON(http.StatusUnprocessableEntity, models.ErrorResponse{
				Error:   "infeasible_rebalance",
				Message: infeasible.Error(),
				Buckets: infeasible.Buckets,
			})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "internal_error",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, models.RescaleResponse{
		Items:   rescaled,
		Buckets: h.rebalanceSvc.CurrentBuckets(rescaled),
	})
}

// Optimize handles POST /portfolio/optimize
// @Summary Request an optimized allocation proposal
// @Description Sends the portfolio (plus any extra assets) to the remote solver and attaches actionable suggestions to degraded statuses
// @Tags portfolio
// @Accept json
// @Produce json
// @Param request body models.OptimizeProposalRequest true "Portfolio and risk level"
// @Success 200 {object} models.OptimizeProposalResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 502 {object} models.ErrorResponse
// @Router /portfolio/optimize [post]
func (h *RebalanceHandler) Optimize(c *gin.Context) {
	var req models.OptimizeProposalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "bad_request",
			Message: err.Error(),
		})
		return
	}

	ctx, wc := services.NewWarningContext(c.Request.Context())
	resp, err := h.optimizerSvc.ProposeAllocation(ctx, &req)
	if err != nil {
		c.JSON(http.StatusBadGateway, models.ErrorResponse{
			Error:   "optimizer_unavailable",
			Message: err.Error(),
		})
		return
	}
	resp.Warnings = wc.GetWarnings()

	c.JSON(http.StatusOK, resp)
}
