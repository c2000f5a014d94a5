package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aibradaa-labs/council/internal/domain"
	"github.com/aibradaa-labs/council/internal/service"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubRouter struct{}

func (stubRouter) Route(ctx context.Context, prompt string, hint domain.Complexity) (*domain.RouteResult, error) {
	return &domain.RouteResult{
		Text: `{"decision":"approve","confidence":0.8,"reasoning":"fine"}`,
		Tier: domain.TierFree,
	}, nil
}

func (stubRouter) Exhausted() bool { return false }

type stubVerdictStore struct{}

func (stubVerdictStore) Create(ctx context.Context, d *domain.Decision, v *domain.Verdict) error {
	return nil
}

func (stubVerdictStore) GetByDecisionID(ctx context.Context, decisionID uuid.UUID) (*domain.Verdict, error) {
	return nil, domain.ErrVerdictNotFound
}

func (stubVerdictStore) ListRecent(ctx context.Context, limit int) ([]domain.Verdict, error) {
	return nil, nil
}

type stubSessionStore struct{}

func (stubSessionStore) Append(ctx context.Context, userID string, msg domain.Message) error {
	return nil
}

func (stubSessionStore) GetRecent(ctx context.Context, userID string, limit int) ([]domain.Message, error) {
	return nil, nil
}

func (stubSessionStore) Clear(ctx context.Context, userID string) error { return nil }

const testCatalogue = `personas:
  - id: reviewer
    name: Reviewer
    expertise_tags: [release]
    thinking_style: analytical
    risk_appetite: balanced
    voting_weight: 1.0
    playbook:
      - assess the proposal on its merits
`

func newDecisionHandler(t *testing.T) *DecisionHandler {
	t.Helper()

	path := filepath.Join(t.TempDir(), "personas.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testCatalogue), 0o644))
	reg, err := service.LoadRegistry(path)
	require.NoError(t, err)

	policies := service.NewPolicyTable(domain.DecisionTypePolicy{
		Type:              "feature-release",
		ApprovalThreshold: 70,
		Quorum:            1,
		MaxPersonas:       5,
	})
	collector := service.NewCollector(stubRouter{}, time.Second, 5*time.Second, 2, zap.NewNop())
	orch := service.NewOrchestrator(
		policies,
		service.NewSelector(reg),
		collector,
		service.NewScorer(service.TieBreakReject),
		stubVerdictStore{},
		stubSessionStore{},
		zap.NewNop(),
	)
	return NewDecisionHandler(orch, stubVerdictStore{})
}

func postDecision(t *testing.T, h *DecisionHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/v1/decisions", strings.NewReader(body))
	w := httptest.NewRecorder()
	h.Submit(w, req)
	return w
}

func TestDecisionHandler_SubmitRejectsBadInput(t *testing.T) {
	h := newDecisionHandler(t)

	w := postDecision(t, h, `{"type":"feature-release","title":"Ship it","requested_by":"u1","urgency":"apocalyptic"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "urgency")

	w = postDecision(t, h, `{"type":"unknown-kind","title":"Ship it","requested_by":"u1"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = postDecision(t, h, `{"type":"feature-release","requested_by":"u1"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = postDecision(t, h, `not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDecisionHandler_SubmitConcludes(t *testing.T) {
	h := newDecisionHandler(t)

	w := postDecision(t, h, `{"type":"feature-release","title":"Ship it","requested_by":"u1"}`)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), "composite_score")
}
