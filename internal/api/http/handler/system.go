package handler

import (
	"context"

	"github.com/dtroode/sessiongate/internal/api/http/response"
	"github.com/dtroode/sessiongate/internal/logger"
	"github.com/dtroode/sessiongate/internal/model"
	"github.com/gin-gonic/gin"
)

// Pinger reports whether the database is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// System serves the unauthenticated service routes.
type System struct {
	pinger Pinger
	logger *logger.Logger
}

// NewSystem creates a new System handler instance.
func NewSystem(pinger Pinger, logger *logger.Logger) *System {
	return &System{pinger: pinger, logger: logger}
}

// Index handles GET /.
func (h *System) Index(c *gin.Context) {
	response.OK(c, "sessiongate is running")
}

// Healthz handles GET /healthz.
func (h *System) Healthz(c *gin.Context) {
	if err := h.pinger.Ping(c.Request.Context()); err != nil {
		h.logger.Error("System handler: database ping failed",
			"error", err.Error())
		response.Error(c, model.ErrInternal)
		return
	}

	response.OK(c, "OK")
}

// NotFound answers every unknown route.
func (h *System) NotFound(c *gin.Context) {
	response.Error(c, model.ErrNotFound)
}
