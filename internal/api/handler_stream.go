package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetStream upgrades GET /api/stream to a websocket of availability changes.
func (h *Handler) GetStream(c *gin.Context) {
	if h.hub == nil {
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "stream is not enabled"})
		return
	}
	h.hub.ServeWS(c.Writer, c.Request)
}
