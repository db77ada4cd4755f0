package middleware

import (
	"fmt"
	"runtime/debug"

	"github.com/dtroode/sessiongate/internal/api/http/response"
	"github.com/dtroode/sessiongate/internal/logger"
	"github.com/dtroode/sessiongate/internal/model"
	"github.com/gin-gonic/gin"
)

// Recovery turns a handler panic into a 500 response and logs the stack.
func Recovery(logger *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				logger.Error("HTTP handler panicked",
					"error", fmt.Sprintf("%v", rec),
					"stack", string(debug.Stack()),
					"method", c.Request.Method,
					"path", c.Request.URL.Path)
				response.Error(c, model.ErrInternal)
			}
		}()
		c.Next()
	}
}
