package server

import (
	"time"

	"sportbeacon/internal/auth"
	"sportbeacon/internal/logger"

	"github.com/gin-gonic/gin"
)

// RequestLoggingMiddleware logs every request after the handler ran, so the
// authenticated user id is available for money-moving endpoints.
func RequestLoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		if raw != "" {
			path = path + "?" + raw
		}

		fields := []interface{}{
			"method", c.Request.Method,
			"path", path,
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		}
		if userID, ok := auth.GetUserID(c); ok {
			fields = append(fields, "user_id", userID)
		}

		logger.Info("HTTP request", fields...)
	}
}
