package domain

import (
	"time"

	"github.com/google/uuid"
)

// Urgency indicates how quickly a decision needs to resolve.
type Urgency string

const (
	UrgencyLow      Urgency = "low"
	UrgencyNormal   Urgency = "normal"
	UrgencyHigh     Urgency = "high"
	UrgencyCritical Urgency = "critical"
)

// ValidUrgency reports whether s is a known urgency level.
func ValidUrgency(s string) bool {
	switch Urgency(s) {
	case UrgencyLow, UrgencyNormal, UrgencyHigh, UrgencyCritical:
		return true
	}
	return false
}

// Decision is a proposal submitted to the council. Immutable once created;
// downstream components reference it but never mutate it.
type Decision struct {
	ID          uuid.UUID      `json:"id"`
	Type        string         `json:"type"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Context     map[string]any `json:"context,omitempty"`
	RequestedBy string         `json:"requested_by"`
	Urgency     Urgency        `json:"urgency"`
	CreatedAt   time.Time      `json:"created_at"`
}

// DecisionTypePolicy configures how a decision type resolves: the approval
// threshold on the composite score, the minimum number of non-abstaining
// votes, and the cap on personas consulted.
type DecisionTypePolicy struct {
	Type              string  `json:"type" yaml:"type"`
	ApprovalThreshold float64 `json:"approval_threshold" yaml:"approval_threshold"`
	Quorum            int     `json:"quorum" yaml:"quorum"`
	MaxPersonas       int     `json:"max_personas" yaml:"max_personas"`
}
