package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aibradaa-labs/council/internal/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Decision lifecycle stages. A decision moves strictly forward; concluded
// is terminal and holds the verdict.
type stage string

const (
	stageReceived  stage = "received"
	stageSelecting stage = "selecting"
	stageVoting    stage = "voting"
	stageScoring   stage = "scoring"
	stageConcluded stage = "concluded"
)

var (
	ErrDecisionTitleEmpty  = errors.New("decision title is required")
	ErrDecisionNoRequester = errors.New("decision requested_by is required")
	ErrInvalidUrgency      = errors.New("invalid decision urgency")
)

// SubmitInput is the single inbound operation the engine exposes.
type SubmitInput struct {
	Type        string
	Title       string
	Description string
	Context     map[string]any
	RequestedBy string
	Urgency     string
}

// Orchestrator drives one decision through selection, voting, and scoring,
// persists the verdict, and records a summary in the requester's session.
// Decisions in flight are independent; the only shared state is the
// router's spend ledger and the per-user session log, both synchronized in
// their owners.
type Orchestrator struct {
	policies  *PolicyTable
	selector  *Selector
	collector *Collector
	scorer    *Scorer
	verdicts  domain.VerdictStore
	sessions  domain.SessionStore
	logger    *zap.Logger
}

func NewOrchestrator(
	policies *PolicyTable,
	selector *Selector,
	collector *Collector,
	scorer *Scorer,
	verdicts domain.VerdictStore,
	sessions domain.SessionStore,
	logger *zap.Logger,
) *Orchestrator {
	return &Orchestrator{
		policies:  policies,
		selector:  selector,
		collector: collector,
		scorer:    scorer,
		verdicts:  verdicts,
		sessions:  sessions,
		logger:    logger,
	}
}

// Submit validates the proposal, runs the council, and returns the verdict.
// The only errors a caller ever sees are ErrUnknownDecisionType (bad input)
// and genuine internal bugs; every backend failure inside the pipeline
// resolves into a verdict, possibly inconclusive.
func (o *Orchestrator) Submit(ctx context.Context, in SubmitInput) (*domain.Verdict, error) {
	policy, err := o.policies.Get(in.Type)
	if err != nil {
		return nil, err
	}
	if in.Title == "" {
		return nil, ErrDecisionTitleEmpty
	}
	if in.RequestedBy == "" {
		return nil, ErrDecisionNoRequester
	}

	urgency := domain.Urgency(in.Urgency)
	if in.Urgency == "" {
		urgency = domain.UrgencyNormal
	} else if !domain.ValidUrgency(in.Urgency) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidUrgency, in.Urgency)
	}

	decision := &domain.Decision{
		ID:          uuid.New(),
		Type:        in.Type,
		Title:       in.Title,
		Description: in.Description,
		Context:     in.Context,
		RequestedBy: in.RequestedBy,
		Urgency:     urgency,
		CreatedAt:   time.Now(),
	}

	verdict := o.run(ctx, decision, policy)
	o.conclude(decision, verdict)
	return verdict, nil
}

// run executes the selecting → voting → scoring stages. Component panics
// and failures collapse into an inconclusive verdict with a recorded cause
// rather than crashing the decision request.
func (o *Orchestrator) run(ctx context.Context, decision *domain.Decision, policy domain.DecisionTypePolicy) (verdict *domain.Verdict) {
	current := stageReceived
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("decision stage panicked",
				zap.String("decision_id", decision.ID.String()),
				zap.String("stage", string(current)),
				zap.Any("panic", r))
			verdict = o.inconclusive(decision, fmt.Sprintf("internal error in stage %s", current))
		}
	}()

	current = stageSelecting
	selected := o.selector.Select(decision, policy)
	o.logger.Info("personas selected",
		zap.String("decision_id", decision.ID.String()),
		zap.Int("selected", len(selected)),
		zap.Int("max", policy.MaxPersonas))

	current = stageVoting
	history, err := o.sessions.GetRecent(ctx, decision.RequestedBy, 10)
	if err != nil {
		// Context is an enrichment; voting proceeds without it.
		o.logger.Warn("session history unavailable", zap.Error(err))
	}
	votes, err := o.collector.Collect(ctx, decision, selected, history)
	if err != nil {
		switch {
		case errors.Is(err, context.Canceled):
			return o.inconclusive(decision, "cancelled")
		case errors.Is(err, domain.ErrBudgetExhausted):
			return o.inconclusive(decision, "inference budget exhausted")
		default:
			o.logger.Error("vote collection failed",
				zap.String("decision_id", decision.ID.String()),
				zap.Error(err))
			return o.inconclusive(decision, "vote collection failed")
		}
	}
	if ctx.Err() != nil {
		return o.inconclusive(decision, "cancelled")
	}

	current = stageScoring
	verdict = o.scorer.Score(decision.ID, votes, policy, time.Now())

	current = stageConcluded
	return verdict
}

// inconclusive builds the terminal verdict for a decision that could not be
// scored normally.
func (o *Orchestrator) inconclusive(decision *domain.Decision, cause string) *domain.Verdict {
	return &domain.Verdict{
		DecisionID:     decision.ID,
		CompositeScore: 50,
		Outcome:        domain.OutcomeInconclusive,
		Cause:          cause,
		ComputedAt:     time.Now(),
	}
}

// conclude persists the verdict and appends a summary to the requester's
// session. Both are best-effort: audit or memory failure never changes an
// already-computed verdict.
func (o *Orchestrator) conclude(decision *domain.Decision, verdict *domain.Verdict) {
	// Detached context: a caller cancelling right after voting should not
	// lose the audit record.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := o.verdicts.Create(ctx, decision, verdict); err != nil {
		o.logger.Error("failed to persist verdict",
			zap.String("decision_id", decision.ID.String()),
			zap.Error(err))
	}

	summary := fmt.Sprintf("Council verdict on %q (%s): %s, composite score %.1f, %d votes cast, %d failed, %d dissenting.",
		decision.Title, decision.Type, verdict.Outcome, verdict.CompositeScore,
		verdict.VotesCast, verdict.VotesFailed, len(verdict.Dissenters))
	msg := domain.Message{Role: "council", Content: summary, CreatedAt: time.Now()}
	if err := o.sessions.Append(ctx, decision.RequestedBy, msg); err != nil {
		o.logger.Warn("failed to record session summary",
			zap.String("user_id", decision.RequestedBy),
			zap.Error(err))
	}

	o.logger.Info("decision concluded",
		zap.String("decision_id", decision.ID.String()),
		zap.String("outcome", string(verdict.Outcome)),
		zap.Float64("composite_score", verdict.CompositeScore))
}
