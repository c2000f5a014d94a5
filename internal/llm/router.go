package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aibradaa-labs/council/internal/domain"
	"go.uber.org/zap"
)

// Prompt length (in characters) above which the complexity heuristic
// demotes the free tier to last resort.
const longPromptChars = 4000

// DefaultAttemptTimeout bounds each tier attempt inside a routing call.
const DefaultAttemptTimeout = 10 * time.Second

// CostTable holds per-tier rates per 1000 prompt characters, used for
// ledger reservations. The ledger settles at each attempt's actual cost.
type CostTable struct {
	CheapPer1K   float64
	PremiumPer1K float64
}

// Router picks an inference backend per generation request: cheapest tier
// first, escalating only when a tier fails, with every paid attempt gated
// by the spend ledger. Free-tier attempts bypass the ledger since they
// cost nothing.
type Router struct {
	clients        map[domain.Tier]domain.InferenceClient
	budget         *Budget
	costs          CostTable
	attemptTimeout time.Duration
	logger         *zap.Logger
}

// NewRouter builds a router over the given tier clients. Missing tiers are
// simply skipped in the cascade.
func NewRouter(clients []domain.InferenceClient, budget *Budget, costs CostTable, attemptTimeout time.Duration, logger *zap.Logger) *Router {
	if attemptTimeout <= 0 {
		attemptTimeout = DefaultAttemptTimeout
	}
	byTier := make(map[domain.Tier]domain.InferenceClient, len(clients))
	for _, c := range clients {
		byTier[c.Tier()] = c
	}
	return &Router{
		clients:        byTier,
		budget:         budget,
		costs:          costs,
		attemptTimeout: attemptTimeout,
		logger:         logger,
	}
}

// Exhausted reports whether no tier can serve another request: the paid
// budget is spent and no free-tier backend is configured. A free client
// keeps the router usable past the ceiling since its calls cost nothing.
func (r *Router) Exhausted() bool {
	if _, ok := r.clients[domain.TierFree]; ok {
		return false
	}
	return r.budget.Exhausted()
}

// Spent returns the paid spend committed this billing period.
func (r *Router) Spent() float64 {
	return r.budget.Spent()
}

// cascade returns the tier order for a request. The heuristic is cheap on
// purpose: prompt length plus the caller's hint. Hard prompts prefer the
// paid tiers, with free demoted to last resort rather than removed, so a
// free-only deployment still serves every request.
func (r *Router) cascade(prompt string, hint domain.Complexity) []domain.Tier {
	if hint == domain.ComplexityHigh || len(prompt) > longPromptChars {
		return []domain.Tier{domain.TierCheap, domain.TierPremium, domain.TierFree}
	}
	return []domain.Tier{domain.TierFree, domain.TierCheap, domain.TierPremium}
}

// estimate predicts a tier attempt's cost for the ledger reservation.
func (r *Router) estimate(tier domain.Tier, prompt string) float64 {
	switch tier {
	case domain.TierCheap:
		return promptCost(prompt, r.costs.CheapPer1K)
	case domain.TierPremium:
		return promptCost(prompt, r.costs.PremiumPer1K)
	}
	return 0
}

// Route attempts tiers in cascade order until one succeeds. Each attempt is
// bounded by its own timeout. Paid tiers reserve their estimated cost
// before the call and settle at actual cost after; a reservation that would
// exceed the ceiling fails that tier with ErrBudgetExhausted.
func (r *Router) Route(ctx context.Context, prompt string, hint domain.Complexity) (*domain.RouteResult, error) {
	var attempts []domain.RouteAttempt
	budgetBlocked := true

	for _, tier := range r.cascade(prompt, hint) {
		client, ok := r.clients[tier]
		if !ok {
			continue
		}

		est := r.estimate(tier, prompt)
		if tier != domain.TierFree {
			if err := r.budget.Reserve(est); err != nil {
				attempts = append(attempts, domain.RouteAttempt{
					Tier:          tier,
					EstimatedCost: est,
					Err:           err.Error(),
				})
				r.logger.Warn("tier skipped, budget exhausted",
					zap.String("tier", string(tier)),
					zap.Float64("estimated_cost", est))
				continue
			}
		}

		text, cost, err := r.attempt(ctx, client, prompt)
		if err != nil {
			if tier != domain.TierFree {
				r.budget.Release(est)
			}
			attempts = append(attempts, domain.RouteAttempt{
				Tier:          tier,
				EstimatedCost: est,
				Err:           err.Error(),
			})
			budgetBlocked = false
			r.logger.Debug("tier attempt failed",
				zap.String("tier", string(tier)),
				zap.Error(err))

			// Caller cancellation is not retryable at a higher tier.
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			continue
		}

		if tier != domain.TierFree {
			r.budget.Commit(est, cost)
		}
		attempts = append(attempts, domain.RouteAttempt{
			Tier:          tier,
			EstimatedCost: est,
			ActualCost:    cost,
			Succeeded:     true,
		})
		return &domain.RouteResult{
			Text:     text,
			Tier:     tier,
			Cost:     cost,
			Attempts: attempts,
		}, nil
	}

	if budgetBlocked && len(attempts) > 0 {
		// Every reachable tier was refused by the ledger before a single
		// call went out.
		return nil, fmt.Errorf("route: %w", domain.ErrBudgetExhausted)
	}
	return nil, fmt.Errorf("route after %d attempts: %w", len(attempts), domain.ErrAllTiersFailed)
}

func (r *Router) attempt(ctx context.Context, client domain.InferenceClient, prompt string) (string, float64, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, r.attemptTimeout)
	defer cancel()

	text, cost, err := client.Generate(attemptCtx, prompt)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", 0, fmt.Errorf("tier %s timed out: %w", client.Tier(), err)
		}
		return "", 0, err
	}
	return text, cost, nil
}
