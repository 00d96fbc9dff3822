package server

import (
	"io"

	"github.com/gin-gonic/gin"
)

// TimerUpdateEvent is the event name of every pushed status.
const TimerUpdateEvent = "timer-update"

// GetEvents handles GET /api/events. The current status is sent first, then every change.
func (h *Handler) GetEvents(c *gin.Context) {
	updates, unsubscribe := h.backend.Subscribe(4)
	defer unsubscribe()

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.SSEvent(TimerUpdateEvent, h.backend.Status())
	c.Writer.Flush()

	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case status, ok := <-updates:
			if !ok {
				return false
			}
			c.SSEvent(TimerUpdateEvent, status)
			return true
		}
	})
}
