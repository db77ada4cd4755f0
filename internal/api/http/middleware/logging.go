package middleware

import (
	"time"

	"github.com/dtroode/sessiongate/internal/logger"
	"github.com/gin-gonic/gin"
)

// Logging logs every HTTP request with its status and duration.
type Logging struct {
	logger *logger.Logger
}

// NewLogging creates a new Logging middleware.
func NewLogging(logger *logger.Logger) *Logging {
	return &Logging{logger: logger}
}

// Handle logs method, path, status and duration once the request completes.
func (l *Logging) Handle(c *gin.Context) {
	start := time.Now()

	c.Next()

	status := c.Writer.Status()
	args := []any{
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"status", status,
		"duration_ms", time.Since(start).Milliseconds(),
		"client_ip", c.ClientIP(),
	}
	if id := c.GetString(requestIDKey); id != "" {
		args = append(args, "request_id", id)
	}

	switch {
	case status >= 500:
		l.logger.Error("HTTP request completed", args...)
	case status >= 400:
		l.logger.Warn("HTTP request completed", args...)
	default:
		l.logger.Info("HTTP request completed", args...)
	}
}
