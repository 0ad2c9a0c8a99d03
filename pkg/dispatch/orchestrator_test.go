package dispatch

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/leadforge/leadforge/pkg/model"
)

type fakeScrapePhase struct {
	dispatched int
	err        error
	called     bool
}

func (f *fakeScrapePhase) Dispatch(ctx context.Context) (int, error) {
	f.called = true
	return f.dispatched, f.err
}

type fakeLock struct {
	acquired bool
	released bool
}

func (f *fakeLock) Acquire(ctx context.Context) (bool, error) {
	return f.acquired, nil
}

func (f *fakeLock) Release(ctx context.Context) error {
	f.released = true
	return nil
}

func newTestOrchestrator(workflows *fakeWorkflowStore, emails *fakeEmailStore, scrapes ScrapePhase, lock PassLocker) *Orchestrator {
	logger := zap.NewNop()
	scanner := NewTriggerScanner(workflows, logger)
	drainer := newDrainer(emails, &fakeSender{})
	return NewOrchestrator(scanner, drainer, scrapes, lock, nil, logger)
}

func TestRunPassAggregatesCounts(t *testing.T) {
	workflow := timeBasedWorkflow(float64(7))
	workflows := &fakeWorkflowStore{
		workflows: []model.Workflow{workflow},
		fired:     map[uuid.UUID]bool{},
	}
	emails := newFakeEmailStore(
		queuedEmail("a@example.com"),
		queuedEmail("b@example.com"),
	)
	scrapes := &fakeScrapePhase{dispatched: 1}

	orchestrator := newTestOrchestrator(workflows, emails, scrapes, nil)

	result, err := orchestrator.RunPass(context.Background(), 50)
	if err != nil {
		t.Fatalf("RunPass() error: %v", err)
	}
	if result.WorkflowsExecuted != 1 {
		t.Fatalf("expected 1 workflow executed, got %d", result.WorkflowsExecuted)
	}
	if result.Sent != 2 || result.Failed != 0 {
		t.Fatalf("expected {2,0} drained, got %+v", result)
	}
	if !scrapes.called {
		t.Fatal("expected scrape phase to run")
	}
}

func TestRunPassSkipsScrapePhaseWhenNil(t *testing.T) {
	workflows := &fakeWorkflowStore{fired: map[uuid.UUID]bool{}}
	orchestrator := newTestOrchestrator(workflows, newFakeEmailStore(), nil, nil)

	if _, err := orchestrator.RunPass(context.Background(), 50); err != nil {
		t.Fatalf("RunPass() error: %v", err)
	}
}

func TestRunPassClampsLimit(t *testing.T) {
	workflows := &fakeWorkflowStore{fired: map[uuid.UUID]bool{}}
	emails := newFakeEmailStore()
	orchestrator := newTestOrchestrator(workflows, emails, nil, nil)

	if _, err := orchestrator.RunPass(context.Background(), 0); err != nil {
		t.Fatalf("RunPass() error: %v", err)
	}
	if emails.lastLimit != 50 {
		t.Fatalf("expected default limit 50, got %d", emails.lastLimit)
	}

	if _, err := orchestrator.RunPass(context.Background(), 500); err != nil {
		t.Fatalf("RunPass() error: %v", err)
	}
	if emails.lastLimit != 100 {
		t.Fatalf("expected clamped limit 100, got %d", emails.lastLimit)
	}
}

func TestRunPassHeldLock(t *testing.T) {
	workflows := &fakeWorkflowStore{fired: map[uuid.UUID]bool{}}
	lock := &fakeLock{acquired: false}
	orchestrator := newTestOrchestrator(workflows, newFakeEmailStore(), nil, lock)

	_, err := orchestrator.RunPass(context.Background(), 50)
	if !errors.Is(err, ErrPassInProgress) {
		t.Fatalf("expected ErrPassInProgress, got %v", err)
	}
	if lock.released {
		t.Fatal("must not release a lock it never acquired")
	}
}

func TestRunPassReleasesLock(t *testing.T) {
	workflows := &fakeWorkflowStore{fired: map[uuid.UUID]bool{}}
	lock := &fakeLock{acquired: true}
	orchestrator := newTestOrchestrator(workflows, newFakeEmailStore(), nil, lock)

	if _, err := orchestrator.RunPass(context.Background(), 50); err != nil {
		t.Fatalf("RunPass() error: %v", err)
	}
	if !lock.released {
		t.Fatal("expected lock release after pass")
	}
}

func TestRunPassScrapeFailureDegradesResponseOnly(t *testing.T) {
	workflow := timeBasedWorkflow(float64(7))
	workflows := &fakeWorkflowStore{
		workflows: []model.Workflow{workflow},
		fired:     map[uuid.UUID]bool{},
	}
	emails := newFakeEmailStore(queuedEmail("a@example.com"))
	scrapes := &fakeScrapePhase{err: errors.New("provider listing failed")}

	orchestrator := newTestOrchestrator(workflows, emails, scrapes, nil)

	_, err := orchestrator.RunPass(context.Background(), 50)
	if err == nil {
		t.Fatal("expected scrape phase failure to surface")
	}
	// Earlier phases already committed; their writes stay.
	if len(workflows.created) != 1 {
		t.Fatalf("expected execution write to persist, got %d", len(workflows.created))
	}
	if len(emails.sent) != 1 {
		t.Fatalf("expected sent email write to persist, got %d", len(emails.sent))
	}
}
