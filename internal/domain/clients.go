package domain

import (
	"context"

	"github.com/google/uuid"
)

// InferenceClient is one text-generation backend. The engine only cares
// about its text/cost/error contract, not how it is implemented.
type InferenceClient interface {
	// Generate produces a completion for prompt and reports the cost
	// incurred in dollars.
	Generate(ctx context.Context, prompt string) (text string, cost float64, err error)
	Tier() Tier
}

// ModelRouter chooses an inference tier for one generation request,
// enforcing the spend ceiling and the fallback cascade.
type ModelRouter interface {
	Route(ctx context.Context, prompt string, hint Complexity) (*RouteResult, error)
	// Exhausted reports whether the paid-tier budget is already spent,
	// letting callers fail fast before fanning out work.
	Exhausted() bool
}

// SessionStore is the per-user conversation memory. Implementations must
// keep at most SessionWindowSize messages per user, oldest evicted first,
// and expire idle sessions.
type SessionStore interface {
	Append(ctx context.Context, userID string, msg Message) error
	GetRecent(ctx context.Context, userID string, limit int) ([]Message, error)
	Clear(ctx context.Context, userID string) error
}

// VerdictStore persists concluded verdicts for audit.
type VerdictStore interface {
	Create(ctx context.Context, d *Decision, v *Verdict) error
	GetByDecisionID(ctx context.Context, decisionID uuid.UUID) (*Verdict, error)
	ListRecent(ctx context.Context, limit int) ([]Verdict, error)
}
