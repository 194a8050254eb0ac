package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/msanjurjo/fundlens/internal/middleware"
	"github.com/msanjurjo/fundlens/internal/models"
	"github.com/msanjurjo/fundlens/internal/services"
	"github.com/msanjurjo/fundlens/internal/util"
	log "github.com/sirupsen/logrus"
)

// CSVHandler handles portfolio CSV import/export
type CSVHandler struct {
	fundSvc *services.FundService
}

// NewCSVHandler creates a new CSVHandler
func NewCSVHandler(fundSvc *services.FundService) *CSVHandler {
	return &CSVHandler{fundSvc: fundSvc}
}

// Import handles POST /portfolio/import
// @Summary Import a portfolio from CSV
// @Description Parses isin;name;value rows (plain or European decimal dialect), resolves funds and converts values to weights
// @Tags portfolio
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Portfolio CSV"
// @Success 200 {object} models.ImportResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /portfolio/import [post]
func (h *CSVHandler) Import(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "bad_request",
			Message: "missing file upload",
		})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "bad_request",
			Message: err.Error(),
		})
		return
	}
	defer file.Close()

	if userID, ok := middleware.GetUserID(c); ok {
		log.Infof("import: user %d uploading %s", userID, fileHeader.Filename)
	}

	positions, err := ParsePositionsCSV(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "bad_request",
			Message: err.Error(),
		})
		return
	}

	ctx, wc := services.NewWarningContext(c.Request.Context())

	var total float64
	var valid []models.CSVPosition
	for _, p := range positions {
		if !util.ValidISIN(p.ISIN) || p.Value <= 0 {
			services.AddWarning(ctx, models.Warning{
				Code:    models.WarnCSVRowSkipped,
				Message: fmt.Sprintf("skipped row %s (%s): invalid ISIN or value", p.ISIN, p.Name),
			})
			continue
		}
		valid = append(valid, p)
		total += p.Value
	}

	var items []models.PortfolioItem
	for _, p := range valid {
		fund, err := h.fundSvc.GetFund(ctx, p.ISIN)
		if err != nil {
			log.Warnf("import: fund %s not resolvable: %v", p.ISIN, err)
			services.AddWarning(ctx, models.Warning{
				Code:    models.WarnCSVRowSkipped,
				Message: fmt.Sprintf("skipped row %s (%s): fund not found", p.ISIN, p.Name),
			})
			continue
		}
		items = append(items, models.PortfolioItem{
			Fund:   *fund,
			Weight: p.Value / total * 100,
		})
	}

	c.JSON(http.StatusOK, models.ImportResponse{
		Items:    items,
		Warnings: wc.GetWarnings(),
	})
}

// Export handles POST /portfolio/export
// @Summary Export a portfolio to CSV
// @Description Writes isin;name;value rows in the plain or European decimal dialect
// @Tags portfolio
// @Accept json
// @Produce text/csv
// @Param request body models.ExportRequest true "Portfolio and dialect"
// @Success 200 {string} string "CSV body"
// @Failure 400 {object} models.ErrorResponse
// @Router /portfolio/export [post]
func (h *CSVHandler) Export(c *gin.Context) {
	var req models.ExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "bad_request",
			Message: err.Error(),
		})
		return
	}

	total := req.TotalValue
	if total <= 0 {
		total = 100
	}
	positions := make([]models.CSVPosition, 0, len(req.Items))
	for _, item := range req.Items {
		positions = append(positions, models.CSVPosition{
			ISIN:  item.Fund.ISIN,
			Name:  item.Fund.Name,
			Value: item.Weight / 100 * total,
		})
	}

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", `attachment; filename="portfolio.csv"`)
	if err := WritePositionsCSV(c.Writer, positions, req.Format == "european"); err != nil {
		log.Errorf("export: failed writing CSV: %v", err)
	}
}
