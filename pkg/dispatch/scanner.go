package dispatch

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/leadforge/leadforge/pkg/metrics"
	"github.com/leadforge/leadforge/pkg/model"
)

// WorkflowStore is the slice of the workflow repository the scanner needs.
type WorkflowStore interface {
	ListActiveByTrigger(ctx context.Context, trigger model.TriggerType) ([]model.Workflow, error)
	HasExecutionSince(ctx context.Context, workflowID uuid.UUID, since time.Time) (bool, error)
	CreateExecution(ctx context.Context, execution *model.WorkflowExecution) error
}

// TriggerScanner fires due time_based workflows. Firing only records a
// completed execution; no steps run for time-based triggers.
type TriggerScanner struct {
	workflows WorkflowStore
	logger    *zap.Logger
	now       func() time.Time
}

func NewTriggerScanner(workflows WorkflowStore, logger *zap.Logger) *TriggerScanner {
	return &TriggerScanner{
		workflows: workflows,
		logger:    logger,
		now:       time.Now,
	}
}

// Scan returns the ids of the workflows that fired. A failure on one
// workflow never aborts the scan of the rest.
func (s *TriggerScanner) Scan(ctx context.Context) ([]uuid.UUID, error) {
	workflows, err := s.workflows.ListActiveByTrigger(ctx, model.TriggerTimeBased)
	if err != nil {
		return nil, err
	}

	now := s.now()
	executed := make([]uuid.UUID, 0, len(workflows))

	for i := range workflows {
		workflow := &workflows[i]
		since := now.AddDate(0, 0, -workflow.DelayDays())

		fired, err := s.workflows.HasExecutionSince(ctx, workflow.ID, since)
		if err != nil {
			s.logger.Warn("failed to check execution window",
				zap.String("workflow_id", workflow.ID.String()),
				zap.Error(err),
			)
			continue
		}
		if fired {
			continue
		}

		completedAt := now
		execution := &model.WorkflowExecution{
			WorkflowID:    workflow.ID,
			Status:        model.ExecutionCompleted,
			ExecutionData: model.JSONB{},
			StartedAt:     now,
			CompletedAt:   &completedAt,
		}
		if err := s.workflows.CreateExecution(ctx, execution); err != nil {
			s.logger.Warn("failed to record workflow execution",
				zap.String("workflow_id", workflow.ID.String()),
				zap.Error(err),
			)
			continue
		}

		metrics.WorkflowExecutions.WithLabelValues(string(model.TriggerTimeBased)).Inc()
		executed = append(executed, workflow.ID)
	}

	return executed, nil
}
