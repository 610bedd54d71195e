package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/simp-monitor-api/internal/models"
	"github.com/noah-isme/simp-monitor-api/internal/service"
	"github.com/noah-isme/simp-monitor-api/pkg/response"
)

// QueueHandler exposes the triage kanban queues.
type QueueHandler struct {
	triage *service.TriageService
}

// NewQueueHandler constructs QueueHandler.
func NewQueueHandler(triage *service.TriageService) *QueueHandler {
	return &QueueHandler{triage: triage}
}

// Queues godoc
// @Summary List all triage queues
// @Tags Queues
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /queues [get]
func (h *QueueHandler) Queues(c *gin.Context) {
	queues, err := h.triage.Queues(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, queues, nil)
}

// ByStage godoc
// @Summary List students in one triage queue
// @Tags Queues
// @Produce json
// @Param stage path string true "Queue stage"
// @Success 200 {object} response.Envelope
// @Router /queues/{stage} [get]
func (h *QueueHandler) ByStage(c *gin.Context) {
	stage := models.Stage(strings.ToUpper(c.Param("stage")))
	students, err := h.triage.ListByStage(c.Request.Context(), stage)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, students, nil)
}
