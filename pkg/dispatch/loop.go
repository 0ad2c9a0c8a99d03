package dispatch

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// Loop runs the orchestrator on a fixed interval for deployments that do
// not use an external cron caller.
type Loop struct {
	orchestrator *Orchestrator
	logger       *zap.Logger
	interval     time.Duration
	emailLimit   int
}

func NewLoop(orchestrator *Orchestrator, logger *zap.Logger, interval time.Duration, emailLimit int) *Loop {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Loop{
		orchestrator: orchestrator,
		logger:       logger,
		interval:     interval,
		emailLimit:   emailLimit,
	}
}

func (l *Loop) Run(ctx context.Context) {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	l.pass(ctx)

	for {
		select {
		case <-ctx.Done():
			l.logger.Info("dispatch loop shutting down")
			return
		case <-ticker.C:
			l.pass(ctx)
		}
	}
}

func (l *Loop) pass(ctx context.Context) {
	if _, err := l.orchestrator.RunPass(ctx, l.emailLimit); err != nil {
		if errors.Is(err, ErrPassInProgress) {
			l.logger.Debug("skipping tick, pass already running")
			return
		}
		l.logger.Error("dispatch pass failed", zap.Error(err))
	}
}
