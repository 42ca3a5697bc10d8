package mw

import (
	"time"

	"github.com/gin-gonic/gin"

	"power-status-backend/internal/logger"
)

// Logger logs one line per request through the service logger.
func Logger(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []interface{}{
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start).String(),
			"client_ip", c.ClientIP(),
		}
		switch {
		case c.Writer.Status() >= 500:
			log.Error("request failed", fields...)
		case c.Writer.Status() == 429:
			log.Warn("request rate limited", fields...)
		default:
			log.Debug("request served", fields...)
		}
	}
}
