package handler

import (
	"io"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/simp-monitor-api/internal/repository"
)

// EventsHandler streams repository change notifications as server-sent
// events so the kanban board can refresh without polling.
type EventsHandler struct {
	notifier  *repository.Notifier
	heartbeat time.Duration
}

// NewEventsHandler constructs EventsHandler.
func NewEventsHandler(notifier *repository.Notifier) *EventsHandler {
	return &EventsHandler{notifier: notifier, heartbeat: 30 * time.Second}
}

// Stream godoc
// @Summary Subscribe to change notifications (SSE)
// @Tags Events
// @Produce text/event-stream
// @Success 200
// @Router /events [get]
func (h *EventsHandler) Stream(c *gin.Context) {
	changes, cancel := h.notifier.Subscribe(32)
	defer cancel()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	c.Stream(func(w io.Writer) bool {
		select {
		case <-c.Request.Context().Done():
			return false
		case change, ok := <-changes:
			if !ok {
				return false
			}
			c.SSEvent("change", change)
			return true
		case <-ticker.C:
			c.SSEvent("heartbeat", time.Now().UTC().Format(time.RFC3339))
			return true
		}
	})
}
