package dispatch

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/leadforge/leadforge/pkg/eventbus"
	"github.com/leadforge/leadforge/pkg/metrics"
)

// ErrPassInProgress means another dispatcher instance holds the pass lock.
var ErrPassInProgress = errors.New("dispatch pass already in progress")

// ScrapePhase is the scrape dispatcher as seen by the orchestrator. It is
// nil when no provider token is configured, which skips the phase entirely.
type ScrapePhase interface {
	Dispatch(ctx context.Context) (int, error)
}

// PassLocker serializes passes across instances. Optional.
type PassLocker interface {
	Acquire(ctx context.Context) (bool, error)
	Release(ctx context.Context) error
}

type Result struct {
	WorkflowsExecuted int `json:"workflowsExecuted"`
	Sent              int `json:"sent"`
	Failed            int `json:"failed"`
}

// Orchestrator runs one dispatch pass: trigger scan, email drain, scrape
// dispatch, strictly in that order. Side effects of completed phases are
// never rolled back when a later phase fails.
type Orchestrator struct {
	scanner *TriggerScanner
	drainer *EmailDrainer
	scrapes ScrapePhase
	lock    PassLocker
	bus     *eventbus.Bus
	logger  *zap.Logger
}

func NewOrchestrator(scanner *TriggerScanner, drainer *EmailDrainer, scrapes ScrapePhase, lock PassLocker, bus *eventbus.Bus, logger *zap.Logger) *Orchestrator {
	return &Orchestrator{
		scanner: scanner,
		drainer: drainer,
		scrapes: scrapes,
		lock:    lock,
		bus:     bus,
		logger:  logger,
	}
}

func (o *Orchestrator) RunPass(ctx context.Context, limit int) (Result, error) {
	if o.lock != nil {
		acquired, err := o.lock.Acquire(ctx)
		if err != nil {
			return Result{}, err
		}
		if !acquired {
			return Result{}, ErrPassInProgress
		}
		defer func() {
			if err := o.lock.Release(ctx); err != nil {
				o.logger.Warn("failed to release pass lock", zap.Error(err))
			}
		}()
	}

	started := time.Now()
	result, err := o.runPhases(ctx, limit)
	metrics.DispatchDuration.Observe(time.Since(started).Seconds())

	if err != nil {
		metrics.DispatchPasses.WithLabelValues("error").Inc()
		return result, err
	}
	metrics.DispatchPasses.WithLabelValues("ok").Inc()

	o.logger.Info("dispatch pass complete",
		zap.Int("workflows_executed", result.WorkflowsExecuted),
		zap.Int("sent", result.Sent),
		zap.Int("failed", result.Failed),
		zap.Duration("took", time.Since(started)),
	)
	o.publish(ctx, result)

	return result, nil
}

func (o *Orchestrator) runPhases(ctx context.Context, limit int) (Result, error) {
	var result Result

	executed, err := o.scanner.Scan(ctx)
	if err != nil {
		return result, err
	}
	result.WorkflowsExecuted = len(executed)

	drained, err := o.drainer.Drain(ctx, ClampLimit(limit))
	if err != nil {
		return result, err
	}
	result.Sent = drained.Sent
	result.Failed = drained.Failed

	if o.scrapes != nil {
		if _, err := o.scrapes.Dispatch(ctx); err != nil {
			return result, err
		}
	}

	return result, nil
}

func (o *Orchestrator) publish(ctx context.Context, result Result) {
	if o.bus == nil {
		return
	}
	event, err := eventbus.NewEvent("dispatch.completed", eventbus.DispatchEvent{
		WorkflowsExecuted: result.WorkflowsExecuted,
		Sent:              result.Sent,
		Failed:            result.Failed,
	})
	if err != nil {
		return
	}
	_ = o.bus.Publish(ctx, eventbus.ChannelDispatch, event)
}
