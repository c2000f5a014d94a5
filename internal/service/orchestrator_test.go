package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aibradaa-labs/council/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// memVerdictStore keeps verdicts in memory for orchestrator tests.
type memVerdictStore struct {
	mu       sync.Mutex
	verdicts map[uuid.UUID]*domain.Verdict
}

func newMemVerdictStore() *memVerdictStore {
	return &memVerdictStore{verdicts: make(map[uuid.UUID]*domain.Verdict)}
}

func (s *memVerdictStore) Create(_ context.Context, _ *domain.Decision, v *domain.Verdict) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.verdicts[v.DecisionID] = v
	return nil
}

func (s *memVerdictStore) GetByDecisionID(_ context.Context, decisionID uuid.UUID) (*domain.Verdict, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.verdicts[decisionID]
	if !ok {
		return nil, domain.ErrVerdictNotFound
	}
	return v, nil
}

func (s *memVerdictStore) ListRecent(_ context.Context, limit int) ([]domain.Verdict, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Verdict, 0, limit)
	for _, v := range s.verdicts {
		if len(out) == limit {
			break
		}
		out = append(out, *v)
	}
	return out, nil
}

// memSessionStore keeps per-user message logs in memory.
type memSessionStore struct {
	mu       sync.Mutex
	messages map[string][]domain.Message
}

func newMemSessionStore() *memSessionStore {
	return &memSessionStore{messages: make(map[string][]domain.Message)}
}

func (s *memSessionStore) Append(_ context.Context, userID string, msg domain.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages[userID] = append(s.messages[userID], msg)
	return nil
}

func (s *memSessionStore) GetRecent(_ context.Context, userID string, limit int) ([]domain.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	msgs := s.messages[userID]
	if len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	return msgs, nil
}

func (s *memSessionStore) Clear(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.messages, userID)
	return nil
}

// councilFixture wires an orchestrator over in-memory stores and a scripted
// router whose ballots are keyed by the persona name found in the prompt.
type councilFixture struct {
	orch     *Orchestrator
	router   *mockRouter
	verdicts *memVerdictStore
	sessions *memSessionStore
}

func newCouncilFixture(t *testing.T, reg *Registry, policies *PolicyTable, ballots map[string]string) *councilFixture {
	t.Helper()
	router := &mockRouter{
		routeFunc: func(_ context.Context, prompt string, _ domain.Complexity) (*domain.RouteResult, error) {
			for name, ballot := range ballots {
				if strings.Contains(prompt, name) {
					return &domain.RouteResult{Text: ballot, Tier: domain.TierFree}, nil
				}
			}
			return nil, fmt.Errorf("no scripted ballot for prompt")
		},
	}
	verdicts := newMemVerdictStore()
	sessions := newMemSessionStore()
	orch := NewOrchestrator(
		policies,
		NewSelector(reg),
		NewCollector(router, time.Second, 5*time.Second, 4, zap.NewNop()),
		NewScorer(TieBreakReject),
		verdicts,
		sessions,
		zap.NewNop(),
	)
	return &councilFixture{orch: orch, router: router, verdicts: verdicts, sessions: sessions}
}

func releaseInput() SubmitInput {
	return SubmitInput{
		Type:        "feature-release",
		Title:       "Ship the new billing engine",
		Description: "Replace the legacy billing pipeline for all tenants",
		RequestedBy: "user-42",
	}
}

func releasePolicies() *PolicyTable {
	return NewPolicyTable(domain.DecisionTypePolicy{
		Type:              "feature-release",
		ApprovalThreshold: 70,
		Quorum:            2,
		MaxPersonas:       10,
	})
}

func ballotJSON(choice string, conf float64) string {
	return fmt.Sprintf(`{"decision":%q,"confidence":%.2f,"reasoning":"scripted"}`, choice, conf)
}

func TestOrchestrator_SplitCouncilResolvesRejected(t *testing.T) {
	reg := testRegistry(
		persona("eng-lead", 1.3, "billing"),
		persona("platform", 1.2, "billing"),
		persona("cfo", 1.4, "billing"),
	)
	fix := newCouncilFixture(t, reg, releasePolicies(), map[string]string{
		"eng-lead": ballotJSON("approve", 0.9),
		"platform": ballotJSON("approve", 0.8),
		"cfo":      ballotJSON("reject", 0.9),
	})

	v, err := fix.orch.Submit(context.Background(), releaseInput())
	require.NoError(t, err)

	// weighted sum 0.9*1.3 + 0.8*1.2 - 0.9*1.4 = 0.87 over weight 3.9.
	assert.InDelta(t, 61.15, v.CompositeScore, 0.01)
	assert.Equal(t, domain.OutcomeRejected, v.Outcome)
	assert.Equal(t, 3, v.VotesCast)
	assert.Zero(t, v.VotesFailed)

	// Approve holds the count majority, so the cfo is the lone dissenter.
	require.Len(t, v.Dissenters, 1)
	assert.Equal(t, "cfo", v.Dissenters[0].PersonaID)
}

func TestOrchestrator_QuorumUnmetIsInconclusive(t *testing.T) {
	reg := testRegistry(
		persona("eng-lead", 1.3, "billing"),
		persona("kernel-dev", 2.0, "kernel"),
	)
	fix := newCouncilFixture(t, reg, releasePolicies(), map[string]string{
		"eng-lead": ballotJSON("approve", 1.0),
	})

	v, err := fix.orch.Submit(context.Background(), releaseInput())
	require.NoError(t, err)

	assert.Equal(t, domain.OutcomeInconclusive, v.Outcome)
	assert.Equal(t, "quorum not met", v.Cause)
}

func TestOrchestrator_UnknownDecisionType(t *testing.T) {
	fix := newCouncilFixture(t, testRegistry(), releasePolicies(), nil)

	in := releaseInput()
	in.Type = "lunar-landing"
	_, err := fix.orch.Submit(context.Background(), in)
	require.ErrorIs(t, err, domain.ErrUnknownDecisionType)
	assert.Zero(t, fix.router.callCount())
}

func TestOrchestrator_ValidatesInput(t *testing.T) {
	fix := newCouncilFixture(t, testRegistry(), releasePolicies(), nil)

	in := releaseInput()
	in.Title = ""
	_, err := fix.orch.Submit(context.Background(), in)
	assert.ErrorIs(t, err, ErrDecisionTitleEmpty)

	in = releaseInput()
	in.RequestedBy = ""
	_, err = fix.orch.Submit(context.Background(), in)
	assert.ErrorIs(t, err, ErrDecisionNoRequester)

	in = releaseInput()
	in.Urgency = "apocalyptic"
	_, err = fix.orch.Submit(context.Background(), in)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidUrgency)
}

func TestOrchestrator_PersistsVerdictAndSessionSummary(t *testing.T) {
	reg := testRegistry(
		persona("eng-lead", 1.3, "billing"),
		persona("platform", 1.2, "billing"),
	)
	fix := newCouncilFixture(t, reg, releasePolicies(), map[string]string{
		"eng-lead": ballotJSON("approve", 0.9),
		"platform": ballotJSON("approve", 0.9),
	})

	v, err := fix.orch.Submit(context.Background(), releaseInput())
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeApproved, v.Outcome)

	stored, err := fix.verdicts.GetByDecisionID(context.Background(), v.DecisionID)
	require.NoError(t, err)
	assert.Equal(t, v.Outcome, stored.Outcome)

	history, err := fix.sessions.GetRecent(context.Background(), "user-42", 10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "council", history[0].Role)
	assert.Contains(t, history[0].Content, "approved")
	assert.Contains(t, history[0].Content, "Ship the new billing engine")
}

func TestOrchestrator_CancellationYieldsInconclusive(t *testing.T) {
	reg := testRegistry(
		persona("eng-lead", 1.3, "billing"),
		persona("platform", 1.2, "billing"),
	)
	fix := newCouncilFixture(t, reg, releasePolicies(), map[string]string{
		"eng-lead": ballotJSON("approve", 0.9),
		"platform": ballotJSON("approve", 0.9),
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	v, err := fix.orch.Submit(ctx, releaseInput())
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeInconclusive, v.Outcome)
	assert.Equal(t, "cancelled", v.Cause)

	// The verdict is still audited under a detached context.
	stored, err := fix.verdicts.GetByDecisionID(context.Background(), v.DecisionID)
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeInconclusive, stored.Outcome)
}
