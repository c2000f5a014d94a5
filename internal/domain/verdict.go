package domain

import (
	"time"

	"github.com/google/uuid"
)

// Outcome is the terminal resolution of a decision.
type Outcome string

const (
	OutcomeApproved     Outcome = "approved"
	OutcomeRejected     Outcome = "rejected"
	OutcomeEscalated    Outcome = "escalated"
	OutcomeInconclusive Outcome = "inconclusive"
)

// Dissenter records a voter whose choice differed from the resolved majority.
type Dissenter struct {
	PersonaID string `json:"persona_id"`
	Vote      Vote   `json:"vote"`
}

// Verdict summarizes the council's weighted consensus on one decision.
// Produced once by the scorer, persisted for audit, never mutated.
type Verdict struct {
	DecisionID     uuid.UUID   `json:"decision_id"`
	CompositeScore float64     `json:"composite_score"`
	Outcome        Outcome     `json:"outcome"`
	Dissenters     []Dissenter `json:"dissenters,omitempty"`
	VotesCast      int         `json:"votes_cast"`
	VotesFailed    int         `json:"votes_failed"`
	Cause          string      `json:"cause,omitempty"`
	ComputedAt     time.Time   `json:"computed_at"`
}
