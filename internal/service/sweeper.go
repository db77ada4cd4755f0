package service

import (
	"context"
	"time"

	"github.com/dtroode/sessiongate/internal/logger"
	"github.com/dtroode/sessiongate/internal/model"
)

// Sweeper periodically deletes expired sessions so user_login does not grow unbounded.
type Sweeper struct {
	sessionStore model.SessionStore
	interval     time.Duration
	recorder     Recorder
	logger       *logger.Logger
	now          func() time.Time
}

func NewSweeper(sessionStore model.SessionStore, interval time.Duration, recorder Recorder, logger *logger.Logger) *Sweeper {
	return &Sweeper{
		sessionStore: sessionStore,
		interval:     interval,
		recorder:     orNoop(recorder),
		logger:       logger,
		now:          time.Now,
	}
}

// Run sweeps every interval until ctx is done. A non-positive interval disables sweeping.
func (s *Sweeper) Run(ctx context.Context) {
	if s.interval <= 0 {
		s.logger.Info("Session sweeper: disabled")
		return
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep runs a single purge and returns the number of removed sessions.
func (s *Sweeper) Sweep(ctx context.Context) int64 {
	n, err := s.sessionStore.PurgeExpired(ctx, s.now())
	if err != nil {
		s.logger.Error("Session sweeper: failed to purge expired sessions",
			"error", err.Error())
		return 0
	}

	s.recorder.SessionsPurged(n)
	if n > 0 {
		s.logger.Debug("Session sweeper: purged expired sessions",
			"count", n)
	}
	return n
}
