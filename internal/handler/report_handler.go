package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/simp-monitor-api/internal/dto"
	"github.com/noah-isme/simp-monitor-api/internal/service"
	appErrors "github.com/noah-isme/simp-monitor-api/pkg/errors"
	"github.com/noah-isme/simp-monitor-api/pkg/response"
)

// ReportHandler exposes asynchronous case report generation.
type ReportHandler struct {
	reports *service.ReportService
}

// NewReportHandler constructs ReportHandler.
func NewReportHandler(reports *service.ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// Request godoc
// @Summary Enqueue case report generation for a student
// @Tags Reports
// @Accept json
// @Produce json
// @Param id path string true "Student ID"
// @Param payload body dto.CreateCaseReportRequest true "Report request payload"
// @Success 202 {object} response.Envelope
// @Router /students/{id}/reports [post]
func (h *ReportHandler) Request(c *gin.Context) {
	var req dto.CreateCaseReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	report, err := h.reports.Request(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusAccepted, report, nil)
}

// Status godoc
// @Summary Get case report generation status
// @Tags Reports
// @Produce json
// @Param id path string true "Report ID"
// @Success 200 {object} response.Envelope
// @Router /reports/{id} [get]
func (h *ReportHandler) Status(c *gin.Context) {
	report, err := h.reports.Status(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}

// Download godoc
// @Summary Download a generated case report via signed token
// @Tags Reports
// @Produce octet-stream
// @Param token query string true "Signed download token"
// @Success 200 {file} binary
// @Router /reports/download [get]
func (h *ReportHandler) Download(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "token is required"))
		return
	}
	path, err := h.reports.OpenSigned(token)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename=dossie.pdf")
	c.File(path)
}
