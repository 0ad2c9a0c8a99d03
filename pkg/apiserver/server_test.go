package apiserver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/leadforge/leadforge/pkg/auth"
	"github.com/leadforge/leadforge/pkg/config"
	"github.com/leadforge/leadforge/pkg/dispatch"
	"github.com/leadforge/leadforge/pkg/mailer"
	"github.com/leadforge/leadforge/pkg/model"
)

type stubWorkflowStore struct{}

func (stubWorkflowStore) ListActiveByTrigger(ctx context.Context, trigger model.TriggerType) ([]model.Workflow, error) {
	return nil, nil
}

func (stubWorkflowStore) HasExecutionSince(ctx context.Context, workflowID uuid.UUID, since time.Time) (bool, error) {
	return false, nil
}

func (stubWorkflowStore) CreateExecution(ctx context.Context, execution *model.WorkflowExecution) error {
	return nil
}

type stubEmailStore struct {
	queued    []model.OutreachEmail
	lastLimit int
}

func (s *stubEmailStore) ListQueued(ctx context.Context, limit int) ([]model.OutreachEmail, error) {
	s.lastLimit = limit
	if limit < len(s.queued) {
		return s.queued[:limit], nil
	}
	return s.queued, nil
}

func (s *stubEmailStore) MarkSent(ctx context.Context, id uuid.UUID, messageID string, sentAt time.Time) error {
	return nil
}

func (s *stubEmailStore) MarkBounced(ctx context.Context, id uuid.UUID, reason string) error {
	return nil
}

type stubSender struct{}

func (stubSender) Send(ctx context.Context, msg mailer.Message) (mailer.Result, error) {
	return mailer.Result{Success: true, MessageID: "msg-1"}, nil
}

type stubLock struct {
	acquired bool
}

func (s *stubLock) Acquire(ctx context.Context) (bool, error) { return s.acquired, nil }
func (s *stubLock) Release(ctx context.Context) error         { return nil }

func testConfig() *config.Config {
	return &config.Config{
		Auth: config.AuthConfig{
			JWTSecret: "test-signing-key",
			TokenTTL:  time.Hour,
		},
		Dispatch: config.DispatchConfig{
			CronSecret: "cron-secret-value",
			EmailLimit: 50,
		},
	}
}

func newTestServer(t *testing.T, cfg *config.Config, emails *stubEmailStore, lock dispatch.PassLocker) *Server {
	t.Helper()
	logger := zap.NewNop()
	scanner := dispatch.NewTriggerScanner(stubWorkflowStore{}, logger)
	drainer := dispatch.NewEmailDrainer(emails, stubSender{}, mailer.NewRenderer(""), "outreach@leadforge.io", nil, logger)
	orchestrator := dispatch.NewOrchestrator(scanner, drainer, nil, lock, nil, logger)
	return NewServer(nil, cfg, logger, orchestrator, nil)
}

func TestHealthEndpoint(t *testing.T) {
	server := newTestServer(t, testConfig(), &stubEmailStore{}, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	server.Router().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestDispatchRejectsMissingSecret(t *testing.T) {
	server := newTestServer(t, testConfig(), &stubEmailStore{}, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/dispatch", nil)
	server.Router().ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", w.Code)
	}
}

func TestDispatchRejectsWrongSecret(t *testing.T) {
	server := newTestServer(t, testConfig(), &stubEmailStore{}, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/dispatch", nil)
	req.Header.Set("x-cron-secret", "wrong-value")
	server.Router().ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", w.Code)
	}
}

func TestDispatchRejectsAllWhenSecretUnconfigured(t *testing.T) {
	cfg := testConfig()
	cfg.Dispatch.CronSecret = ""
	server := newTestServer(t, cfg, &stubEmailStore{}, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/dispatch", nil)
	req.Header.Set("x-cron-secret", "")
	server.Router().ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", w.Code)
	}
}

func TestDispatchRunsPass(t *testing.T) {
	emails := &stubEmailStore{queued: []model.OutreachEmail{
		{ID: uuid.New(), CampaignID: uuid.New(), LeadID: uuid.New(), LeadEmail: "a@example.com", Status: model.EmailQueued},
		{ID: uuid.New(), CampaignID: uuid.New(), LeadID: uuid.New(), LeadEmail: "b@example.com", Status: model.EmailQueued},
	}}
	server := newTestServer(t, testConfig(), emails, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/dispatch", nil)
	req.Header.Set("x-cron-secret", "cron-secret-value")
	server.Router().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var body struct {
		Success           bool `json:"success"`
		WorkflowsExecuted int  `json:"workflowsExecuted"`
		Sent              int  `json:"sent"`
		Failed            int  `json:"failed"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !body.Success || body.Sent != 2 || body.Failed != 0 {
		t.Fatalf("unexpected response: %+v", body)
	}
	if emails.lastLimit != 50 {
		t.Fatalf("expected default limit 50, got %d", emails.lastLimit)
	}
}

func TestDispatchClampsLimitQuery(t *testing.T) {
	emails := &stubEmailStore{}
	server := newTestServer(t, testConfig(), emails, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/dispatch?limit=500", nil)
	req.Header.Set("x-cron-secret", "cron-secret-value")
	server.Router().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if emails.lastLimit != 100 {
		t.Fatalf("expected clamped limit 100, got %d", emails.lastLimit)
	}
}

func TestDispatchConflictWhenPassInProgress(t *testing.T) {
	server := newTestServer(t, testConfig(), &stubEmailStore{}, &stubLock{acquired: false})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/dispatch", nil)
	req.Header.Set("x-cron-secret", "cron-secret-value")
	server.Router().ServeHTTP(w, req)

	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", w.Code)
	}
}

func TestAPIRequiresBearerToken(t *testing.T) {
	server := newTestServer(t, testConfig(), &stubEmailStore{}, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/workflows", nil)
	server.Router().ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/v1/workflows", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	server.Router().ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for invalid token, got %d", w.Code)
	}
}

func TestAPIRejectsExpiredToken(t *testing.T) {
	cfg := testConfig()
	server := newTestServer(t, cfg, &stubEmailStore{}, nil)

	expired := auth.NewAPITokenManager([]byte(cfg.Auth.JWTSecret), -time.Hour)
	token, err := expired.Generate(uuid.New().String(), "user@example.com")
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/workflows", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	server.Router().ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for expired token, got %d", w.Code)
	}
}
