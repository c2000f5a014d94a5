package service

import (
	"context"
	"fmt"
	"time"

	"github.com/aibradaa-labs/council/internal/domain"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Collection defaults.
const (
	DefaultVoteTimeout    = 10 * time.Second
	DefaultCollectTimeout = 60 * time.Second
	DefaultConcurrency    = 10
)

// Collector gathers one vote per selected persona through the model router.
// A single persona's failure never fails the collection: timeouts, backend
// errors, and unparsable ballots all become failed/abstain votes. The only
// fatal condition is a budget already exhausted before any call goes out.
type Collector struct {
	router         domain.ModelRouter
	voteTimeout    time.Duration
	collectTimeout time.Duration
	concurrency    int
	logger         *zap.Logger
}

func NewCollector(router domain.ModelRouter, voteTimeout, collectTimeout time.Duration, concurrency int, logger *zap.Logger) *Collector {
	if voteTimeout <= 0 {
		voteTimeout = DefaultVoteTimeout
	}
	if collectTimeout <= 0 {
		collectTimeout = DefaultCollectTimeout
	}
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &Collector{
		router:         router,
		voteTimeout:    voteTimeout,
		collectTimeout: collectTimeout,
		concurrency:    concurrency,
		logger:         logger,
	}
}

// Collect returns exactly one vote per selected persona, in selection
// order. Fan-out is bounded by the concurrency limit; the whole collection
// carries an aggregate deadline, and personas still in flight when it
// fires are recorded as failed abstains.
func (c *Collector) Collect(ctx context.Context, decision *domain.Decision, selected []domain.RankedPersona, history []domain.Message) ([]domain.Vote, error) {
	if len(selected) == 0 {
		return nil, nil
	}

	// Fail fast before fanning out: a spent ceiling means every paid call
	// would be refused anyway.
	if c.router.Exhausted() {
		return nil, fmt.Errorf("collect votes: %w", domain.ErrBudgetExhausted)
	}

	collectCtx, cancel := context.WithTimeout(ctx, c.collectTimeout)
	defer cancel()

	hint := complexityFor(decision)
	votes := make([]domain.Vote, len(selected))

	g, gctx := errgroup.WithContext(collectCtx)
	g.SetLimit(c.concurrency)

	for i, rp := range selected {
		i, rp := i, rp
		g.Go(func() error {
			votes[i] = c.collectOne(gctx, rp, decision, history, hint)
			return nil
		})
	}
	// Workers never return errors; failures are recorded in the votes.
	_ = g.Wait()

	return votes, nil
}

// collectOne issues one routed inference call and parses the ballot.
func (c *Collector) collectOne(ctx context.Context, rp domain.RankedPersona, decision *domain.Decision, history []domain.Message, hint domain.Complexity) (vote domain.Vote) {
	p := rp.Persona
	vote = domain.Vote{
		PersonaID: p.ID,
		Relevance: rp.Relevance,
		Weight:    p.VotingWeight,
	}

	start := time.Now()
	defer func() { vote.LatencyMs = time.Since(start).Milliseconds() }()

	abstain := func(reason string, err error) domain.Vote {
		vote.Choice = domain.VoteAbstain
		vote.Confidence = 0
		vote.Failed = true
		c.logger.Warn("vote downgraded to abstain",
			zap.String("persona_id", p.ID),
			zap.String("decision_id", decision.ID.String()),
			zap.String("reason", reason),
			zap.Error(err))
		return vote
	}

	voteCtx, cancel := context.WithTimeout(ctx, c.voteTimeout)
	defer cancel()

	prompt := BuildBallotPrompt(p, decision, history)
	res, err := c.router.Route(voteCtx, prompt, hint)
	if err != nil {
		return abstain("inference failed", err)
	}

	choice, confidence, reasoning, err := ParseBallot(res.Text)
	if err != nil {
		return abstain("malformed ballot", err)
	}

	vote.Choice = choice
	vote.Confidence = confidence
	vote.Reasoning = reasoning
	return vote
}

// complexityFor maps decision urgency to a routing hint: critical
// governance decisions justify stronger models up front.
func complexityFor(d *domain.Decision) domain.Complexity {
	switch d.Urgency {
	case domain.UrgencyCritical:
		return domain.ComplexityHigh
	case domain.UrgencyHigh:
		return domain.ComplexityMedium
	default:
		return domain.ComplexityLow
	}
}
