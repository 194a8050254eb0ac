package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/msanjurjo/fundlens/internal/models"
	"github.com/msanjurjo/fundlens/internal/repository"
	"github.com/msanjurjo/fundlens/internal/services"
	"github.com/msanjurjo/fundlens/internal/util"
)

// FundHandler handles fund lookup endpoints
type FundHandler struct {
	fundSvc *services.FundService
}

// NewFundHandler creates a new FundHandler
func NewFundHandler(fundSvc *services.FundService) *FundHandler {
	return &FundHandler{fundSvc: fundSvc}
}

// Get handles GET /funds/:isin
// @Summary Get a normalized fund
// @Description Fetch one fund document and return its canonical normalized view
// @Tags funds
// @Produce json
// @Param isin path string true "Fund ISIN"
// @Success 200 {object} models.NormalizedFund
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /funds/{isin} [get]
func (h *FundHandler) Get(c *gin.Context) {
	isin := c.Param("isin")
	if !util.ValidISIN(isin) {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "bad_request",
			Message: "invalid ISIN",
		})
		return
	}

	fund, err := h.fundSvc.GetFund(c.Request.Context(), isin)
	if err != nil {
		if errors.Is(err, repository.ErrFundNotFound) {
			c.JSON(http.StatusNotFound, models.ErrorResponse{
				Error:   "not_found",
				Message: "fund not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "internal_error",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, fund)
}
