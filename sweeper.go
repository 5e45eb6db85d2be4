package shopadmin

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Sweeper periodically removes expired sessions. Run it in its own
// goroutine; it stops when the context is cancelled.
type Sweeper struct {
	engine   *Engine
	interval time.Duration
	logger   *zap.Logger
}

// NewSweeper builds a sweeper from the engine's configured interval.
// Returns nil when sweeping is disabled (interval zero).
func NewSweeper(e *Engine) *Sweeper {
	if e == nil || e.config.Session.SweepInterval <= 0 {
		return nil
	}
	return &Sweeper{
		engine:   e,
		interval: e.config.Session.SweepInterval,
		logger:   e.logger,
	}
}

// Run blocks, sweeping on every tick until ctx is cancelled. Individual
// sweep failures are logged and the loop keeps going.
func (s *Sweeper) Run(ctx context.Context) {
	if s == nil {
		return
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("session sweeper started", zap.Duration("interval", s.interval))

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("session sweeper stopped")
			return
		case <-ticker.C:
			if _, err := s.engine.SweepExpired(ctx); err != nil {
				s.logger.Warn("session sweep failed", zap.Error(err))
			}
		}
	}
}
