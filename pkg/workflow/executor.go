package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/leadforge/leadforge/pkg/model"
)

// Context carries the triggering entity into step execution,
// e.g. {"deal_id": "..."} for deal triggers.
type Context map[string]interface{}

func (c Context) DealID() (uuid.UUID, bool) {
	raw, ok := c["deal_id"].(string)
	if !ok {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

type ActivityStore interface {
	Create(ctx context.Context, activity *model.DealActivity) error
}

type DealStore interface {
	UpdateStage(ctx context.Context, id uuid.UUID, stageID uuid.UUID) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.DealStatus) error
}

const maxWaitSeconds = 60

// StepExecutor walks a workflow's ordered steps and performs each step's
// side effect. Steps whose conditions do not match the trigger context are
// skipped; the first failing step aborts the remainder.
type StepExecutor struct {
	activities ActivityStore
	deals      DealStore
	logger     *zap.Logger
}

func NewStepExecutor(activities ActivityStore, deals DealStore, logger *zap.Logger) *StepExecutor {
	return &StepExecutor{
		activities: activities,
		deals:      deals,
		logger:     logger,
	}
}

func (e *StepExecutor) Execute(ctx context.Context, wf *model.Workflow, trigger Context) error {
	for i := range wf.Steps {
		step := &wf.Steps[i]
		if !conditionsMatch(step.Conditions, trigger) {
			continue
		}
		if err := e.executeStep(ctx, wf, step, trigger); err != nil {
			return fmt.Errorf("step %d (%s): %w", step.StepOrder, step.StepType, err)
		}
	}
	return nil
}

func (e *StepExecutor) executeStep(ctx context.Context, wf *model.Workflow, step *model.WorkflowStep, trigger Context) error {
	switch step.StepType {
	case StepCreateActivity:
		return e.createActivity(ctx, wf, step, trigger)
	case StepUpdateField:
		return e.updateField(ctx, step, trigger)
	case StepNotify:
		e.logger.Info("workflow notification",
			zap.String("workflow_id", wf.ID.String()),
			zap.Any("config", map[string]interface{}(step.Config)),
		)
		return nil
	case StepWait:
		return e.wait(ctx, step)
	default:
		return fmt.Errorf("unsupported step type %q", step.StepType)
	}
}

func (e *StepExecutor) createActivity(ctx context.Context, wf *model.Workflow, step *model.WorkflowStep, trigger Context) error {
	activityType, _ := step.Config["activity_type"].(string)
	if activityType == "" {
		activityType = "workflow_action"
	}
	description, _ := step.Config["description"].(string)

	activity := &model.DealActivity{
		UserID:       &wf.UserID,
		ActivityType: activityType,
		Description:  description,
		Metadata: model.JSONB{
			"workflow_id": wf.ID.String(),
			"step_order":  step.StepOrder,
		},
	}
	if dealID, ok := trigger.DealID(); ok {
		activity.DealID = &dealID
	}

	return e.activities.Create(ctx, activity)
}

func (e *StepExecutor) updateField(ctx context.Context, step *model.WorkflowStep, trigger Context) error {
	dealID, ok := trigger.DealID()
	if !ok {
		return fmt.Errorf("update_field step requires a deal in the trigger context")
	}

	field, _ := step.Config["field"].(string)
	value, _ := step.Config["value"].(string)

	switch field {
	case "status":
		return e.deals.UpdateStatus(ctx, dealID, model.DealStatus(value))
	case "stage_id":
		stageID, err := uuid.Parse(value)
		if err != nil {
			return fmt.Errorf("invalid stage_id %q: %w", value, err)
		}
		return e.deals.UpdateStage(ctx, dealID, stageID)
	default:
		return fmt.Errorf("unsupported field %q", field)
	}
}

func (e *StepExecutor) wait(ctx context.Context, step *model.WorkflowStep) error {
	seconds, _ := step.Config["seconds"].(float64)
	if seconds <= 0 {
		return nil
	}
	if seconds > maxWaitSeconds {
		seconds = maxWaitSeconds
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(time.Duration(seconds * float64(time.Second))):
		return nil
	}
}

// conditionsMatch checks each condition key for equality against the
// trigger context. An empty condition set always matches.
func conditionsMatch(conditions model.JSONB, trigger Context) bool {
	for key, expected := range conditions {
		actual, ok := trigger[key]
		if !ok {
			return false
		}
		if fmt.Sprintf("%v", actual) != fmt.Sprintf("%v", expected) {
			return false
		}
	}
	return true
}
