package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/simp-monitor-api/internal/service"
	appErrors "github.com/noah-isme/simp-monitor-api/pkg/errors"
	"github.com/noah-isme/simp-monitor-api/pkg/response"
)

// ExportHandler streams intervention listings as downloadable files.
type ExportHandler struct {
	exports *service.ExportService
}

// NewExportHandler constructs ExportHandler.
func NewExportHandler(exports *service.ExportService) *ExportHandler {
	return &ExportHandler{exports: exports}
}

// Interventions godoc
// @Summary Export interventions as CSV or PDF
// @Tags Exports
// @Produce octet-stream
// @Param format query string true "csv or pdf"
// @Param student_id query string false "Filter by student"
// @Param status query string false "Filter by lifecycle status"
// @Param category query string false "Filter by action category"
// @Param overdue query bool false "Only overdue interventions"
// @Success 200 {file} binary
// @Router /exports/interventions [get]
func (h *ExportHandler) Interventions(c *gin.Context) {
	filter := interventionFilterFromQuery(c)
	filter.Page = 0
	filter.PageSize = 0
	stamp := time.Now().UTC().Format("20060102")

	switch c.DefaultQuery("format", "csv") {
	case "csv":
		payload, err := h.exports.InterventionsCSV(c.Request.Context(), filter)
		if err != nil {
			response.Error(c, err)
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=intervencoes-%s.csv", stamp))
		c.Data(http.StatusOK, "text/csv", payload)
	case "pdf":
		payload, err := h.exports.InterventionsPDF(c.Request.Context(), filter)
		if err != nil {
			response.Error(c, err)
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=intervencoes-%s.pdf", stamp))
		c.Data(http.StatusOK, "application/pdf", payload)
	default:
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf"))
	}
}
