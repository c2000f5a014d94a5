package domain

import "errors"

var (
	// ErrPersonaNotFound is returned by the registry for an unknown persona id.
	ErrPersonaNotFound = errors.New("persona not found")

	// ErrUnknownDecisionType is returned when no policy exists for a
	// decision type. Surfaced to callers as InvalidDecisionType.
	ErrUnknownDecisionType = errors.New("unknown decision type")

	// ErrBudgetExhausted means the spend ceiling for the current billing
	// period is reached and no paid tier may be attempted.
	ErrBudgetExhausted = errors.New("inference budget exhausted")

	// ErrAllTiersFailed means every tier in the cascade failed for one
	// routing call.
	ErrAllTiersFailed = errors.New("all inference tiers failed")

	// ErrVerdictNotFound is returned by the audit store for an unknown
	// decision id.
	ErrVerdictNotFound = errors.New("verdict not found")
)
