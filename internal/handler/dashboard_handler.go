package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/simp-monitor-api/internal/service"
	"github.com/noah-isme/simp-monitor-api/pkg/response"
)

// DashboardHandler exposes the aggregate monitoring panel.
type DashboardHandler struct {
	dashboard *service.DashboardService
}

// NewDashboardHandler constructs DashboardHandler.
func NewDashboardHandler(dashboard *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard}
}

// Summary godoc
// @Summary Aggregate risk, queue and workload figures
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /dashboard [get]
func (h *DashboardHandler) Summary(c *gin.Context) {
	summary, err := h.dashboard.Summary(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}
