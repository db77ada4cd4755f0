package handler

import (
	"context"
	"time"

	"github.com/dtroode/sessiongate/internal/logger"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// Pinger reports whether the database is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Health keeps the standard gRPC health service in step with the database.
type Health struct {
	server *health.Server
	pinger Pinger
	logger *logger.Logger
}

// NewHealth creates a Health handler. The overall status starts as NOT_SERVING until the first check.
func NewHealth(pinger Pinger, logger *logger.Logger) *Health {
	s := health.NewServer()
	s.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	return &Health{server: s, pinger: pinger, logger: logger}
}

// Server returns the health service to register on a grpc.Server.
func (h *Health) Server() *health.Server {
	return h.server
}

// Check pings the database once and updates the overall serving status.
func (h *Health) Check(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	st := healthpb.HealthCheckResponse_SERVING
	if err := h.pinger.Ping(ctx); err != nil {
		h.logger.Warn("Health handler: database ping failed",
			"error", err.Error())
		st = healthpb.HealthCheckResponse_NOT_SERVING
	}

	h.server.SetServingStatus("", st)
	return st
}

// Watch runs Check every interval until ctx is done, then marks the service as shutting down.
// A non-positive interval checks once and only waits for ctx.
func (h *Health) Watch(ctx context.Context, interval time.Duration) {
	h.Check(ctx)

	if interval <= 0 {
		h.logger.Warn("Health handler: periodic checks disabled",
			"interval", interval.String())
		<-ctx.Done()
		h.server.Shutdown()
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			h.server.Shutdown()
			return
		case <-ticker.C:
			h.Check(ctx)
		}
	}
}
