package workflow

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/leadforge/leadforge/pkg/model"
)

type fakeActivityStore struct {
	activities []model.DealActivity
	err        error
}

func (f *fakeActivityStore) Create(ctx context.Context, activity *model.DealActivity) error {
	if f.err != nil {
		return f.err
	}
	f.activities = append(f.activities, *activity)
	return nil
}

type fakeDealStore struct {
	statusUpdates map[uuid.UUID]model.DealStatus
	stageUpdates  map[uuid.UUID]uuid.UUID
}

func newFakeDealStore() *fakeDealStore {
	return &fakeDealStore{
		statusUpdates: map[uuid.UUID]model.DealStatus{},
		stageUpdates:  map[uuid.UUID]uuid.UUID{},
	}
}

func (f *fakeDealStore) UpdateStage(ctx context.Context, id uuid.UUID, stageID uuid.UUID) error {
	f.stageUpdates[id] = stageID
	return nil
}

func (f *fakeDealStore) UpdateStatus(ctx context.Context, id uuid.UUID, status model.DealStatus) error {
	f.statusUpdates[id] = status
	return nil
}

func testWorkflow(steps ...model.WorkflowStep) *model.Workflow {
	return &model.Workflow{
		ID:          uuid.New(),
		UserID:      uuid.New(),
		TriggerType: model.TriggerDealStageChanged,
		Active:      true,
		Steps:       steps,
	}
}

func TestExecuteCreateActivity(t *testing.T) {
	activities := &fakeActivityStore{}
	wf := testWorkflow(model.WorkflowStep{
		StepOrder: 0,
		StepType:  StepCreateActivity,
		Config: model.JSONB{
			"activity_type": "follow_up",
			"description":   "call the lead",
		},
	})
	dealID := uuid.New()

	executor := NewStepExecutor(activities, newFakeDealStore(), zap.NewNop())
	trigger := Context{"deal_id": dealID.String()}

	if err := executor.Execute(context.Background(), wf, trigger); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if len(activities.activities) != 1 {
		t.Fatalf("expected one activity, got %d", len(activities.activities))
	}

	activity := activities.activities[0]
	if activity.ActivityType != "follow_up" || activity.Description != "call the lead" {
		t.Fatalf("unexpected activity: %+v", activity)
	}
	if activity.DealID == nil || *activity.DealID != dealID {
		t.Fatalf("expected activity tied to deal %s, got %v", dealID, activity.DealID)
	}
	if activity.UserID == nil || *activity.UserID != wf.UserID {
		t.Fatalf("expected activity attributed to workflow owner")
	}
	if activity.Metadata["workflow_id"] != wf.ID.String() {
		t.Fatalf("expected workflow id in metadata, got %v", activity.Metadata)
	}
}

func TestExecuteCreateActivityDefaultsType(t *testing.T) {
	activities := &fakeActivityStore{}
	wf := testWorkflow(model.WorkflowStep{StepType: StepCreateActivity, Config: model.JSONB{}})

	executor := NewStepExecutor(activities, newFakeDealStore(), zap.NewNop())
	if err := executor.Execute(context.Background(), wf, Context{}); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if activities.activities[0].ActivityType != "workflow_action" {
		t.Fatalf("expected default activity type, got %q", activities.activities[0].ActivityType)
	}
}

func TestExecuteUpdateStatusField(t *testing.T) {
	deals := newFakeDealStore()
	wf := testWorkflow(model.WorkflowStep{
		StepType: StepUpdateField,
		Config:   model.JSONB{"field": "status", "value": "won"},
	})
	dealID := uuid.New()

	executor := NewStepExecutor(&fakeActivityStore{}, deals, zap.NewNop())
	if err := executor.Execute(context.Background(), wf, Context{"deal_id": dealID.String()}); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if deals.statusUpdates[dealID] != model.DealStatus("won") {
		t.Fatalf("expected status update, got %v", deals.statusUpdates)
	}
}

func TestExecuteUpdateStageField(t *testing.T) {
	deals := newFakeDealStore()
	stageID := uuid.New()
	wf := testWorkflow(model.WorkflowStep{
		StepType: StepUpdateField,
		Config:   model.JSONB{"field": "stage_id", "value": stageID.String()},
	})
	dealID := uuid.New()

	executor := NewStepExecutor(&fakeActivityStore{}, deals, zap.NewNop())
	if err := executor.Execute(context.Background(), wf, Context{"deal_id": dealID.String()}); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if deals.stageUpdates[dealID] != stageID {
		t.Fatalf("expected stage update, got %v", deals.stageUpdates)
	}
}

func TestExecuteUpdateFieldRequiresDeal(t *testing.T) {
	wf := testWorkflow(model.WorkflowStep{
		StepType: StepUpdateField,
		Config:   model.JSONB{"field": "status", "value": "lost"},
	})

	executor := NewStepExecutor(&fakeActivityStore{}, newFakeDealStore(), zap.NewNop())
	if err := executor.Execute(context.Background(), wf, Context{}); err == nil {
		t.Fatal("expected error without a deal in the trigger context")
	}
}

func TestExecuteSkipsStepsWithUnmatchedConditions(t *testing.T) {
	activities := &fakeActivityStore{}
	wf := testWorkflow(
		model.WorkflowStep{
			StepOrder:  0,
			StepType:   StepCreateActivity,
			Config:     model.JSONB{"description": "skipped"},
			Conditions: model.JSONB{"stage": "negotiation"},
		},
		model.WorkflowStep{
			StepOrder:  1,
			StepType:   StepCreateActivity,
			Config:     model.JSONB{"description": "kept"},
			Conditions: model.JSONB{"stage": "closing"},
		},
	)

	executor := NewStepExecutor(activities, newFakeDealStore(), zap.NewNop())
	trigger := Context{"deal_id": uuid.New().String(), "stage": "closing"}

	if err := executor.Execute(context.Background(), wf, trigger); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if len(activities.activities) != 1 || activities.activities[0].Description != "kept" {
		t.Fatalf("expected only the matching step to run, got %+v", activities.activities)
	}
}

func TestExecuteAbortsOnStepFailure(t *testing.T) {
	activities := &fakeActivityStore{err: errors.New("write refused")}
	wf := testWorkflow(
		model.WorkflowStep{StepOrder: 0, StepType: StepCreateActivity, Config: model.JSONB{}},
		model.WorkflowStep{StepOrder: 1, StepType: StepNotify, Config: model.JSONB{}},
	)

	executor := NewStepExecutor(activities, newFakeDealStore(), zap.NewNop())
	err := executor.Execute(context.Background(), wf, Context{})
	if err == nil {
		t.Fatal("expected step failure to propagate")
	}
}

func TestExecuteUnsupportedStepType(t *testing.T) {
	wf := testWorkflow(model.WorkflowStep{StepType: "teleport"})

	executor := NewStepExecutor(&fakeActivityStore{}, newFakeDealStore(), zap.NewNop())
	if err := executor.Execute(context.Background(), wf, Context{}); err == nil {
		t.Fatal("expected error for unsupported step type")
	}
}

func TestWaitStepHonorsCancellation(t *testing.T) {
	wf := testWorkflow(model.WorkflowStep{
		StepType: StepWait,
		Config:   model.JSONB{"seconds": float64(30)},
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	executor := NewStepExecutor(&fakeActivityStore{}, newFakeDealStore(), zap.NewNop())
	if err := executor.Execute(ctx, wf, Context{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context cancellation, got %v", err)
	}
}

func TestContextDealID(t *testing.T) {
	id := uuid.New()
	if got, ok := (Context{"deal_id": id.String()}).DealID(); !ok || got != id {
		t.Fatalf("expected deal id %s, got %s ok=%v", id, got, ok)
	}
	if _, ok := (Context{}).DealID(); ok {
		t.Fatal("expected no deal id on empty context")
	}
	if _, ok := (Context{"deal_id": "not-a-uuid"}).DealID(); ok {
		t.Fatal("expected parse failure to report absence")
	}
}
