package workflow

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/leadforge/leadforge/pkg/eventbus"
	"github.com/leadforge/leadforge/pkg/metrics"
	"github.com/leadforge/leadforge/pkg/model"
)

type job struct {
	workflow *model.Workflow
	trigger  Context
}

// Runner executes triggered workflows off the request path. Dispatch never
// blocks and failures never propagate to the caller: workflow side effects
// are not part of the triggering write's guarantee. A full queue drops the
// job, which is acceptable under the best-effort contract.
type Runner struct {
	executor *StepExecutor
	bus      *eventbus.Bus
	logger   *zap.Logger
	jobs     chan job

	startOnce sync.Once
	stopOnce  sync.Once
	done      chan struct{}
}

func NewRunner(executor *StepExecutor, bus *eventbus.Bus, logger *zap.Logger, buffer int) *Runner {
	if buffer <= 0 {
		buffer = 64
	}
	return &Runner{
		executor: executor,
		bus:      bus,
		logger:   logger,
		jobs:     make(chan job, buffer),
		done:     make(chan struct{}),
	}
}

func (r *Runner) Start(ctx context.Context) {
	r.startOnce.Do(func() {
		go r.work(ctx)
	})
}

func (r *Runner) work(ctx context.Context) {
	defer close(r.done)
	for {
		select {
		case <-ctx.Done():
			return
		case j, ok := <-r.jobs:
			if !ok {
				return
			}
			r.run(ctx, j)
		}
	}
}

func (r *Runner) run(ctx context.Context, j job) {
	if err := r.executor.Execute(ctx, j.workflow, j.trigger); err != nil {
		metrics.WorkflowStepFailures.Inc()
		r.logger.Warn("workflow execution failed",
			zap.String("workflow_id", j.workflow.ID.String()),
			zap.Error(err),
		)
		return
	}

	metrics.WorkflowExecutions.WithLabelValues(string(j.workflow.TriggerType)).Inc()
	r.publish(ctx, j)
}

func (r *Runner) publish(ctx context.Context, j job) {
	if r.bus == nil {
		return
	}
	entityID := ""
	if raw, ok := j.trigger["deal_id"].(string); ok {
		entityID = raw
	}
	event, err := eventbus.NewEvent("workflow.executed", eventbus.WorkflowEvent{
		WorkflowID: j.workflow.ID.String(),
		Trigger:    string(j.workflow.TriggerType),
		EntityID:   entityID,
		Status:     string(model.ExecutionCompleted),
	})
	if err != nil {
		return
	}
	_ = r.bus.Publish(ctx, eventbus.ChannelWorkflow, event)
}

// Dispatch hands a workflow to the worker without blocking.
func (r *Runner) Dispatch(workflow *model.Workflow, trigger Context) {
	select {
	case r.jobs <- job{workflow: workflow, trigger: trigger}:
	default:
		r.logger.Warn("workflow runner queue full, dropping job",
			zap.String("workflow_id", workflow.ID.String()),
		)
	}
}

// Stop closes the queue and waits for in-flight work to settle.
func (r *Runner) Stop() {
	r.stopOnce.Do(func() {
		close(r.jobs)
		<-r.done
	})
}
