package domain

// VoteChoice is a persona's position on a decision.
type VoteChoice string

const (
	VoteApprove VoteChoice = "approve"
	VoteReject  VoteChoice = "reject"
	VoteAbstain VoteChoice = "abstain"
)

// ValidVoteChoice reports whether s is a known vote choice.
func ValidVoteChoice(s string) bool {
	switch VoteChoice(s) {
	case VoteApprove, VoteReject, VoteAbstain:
		return true
	}
	return false
}

// Vote is one persona's ballot on one decision. Immutable evidence record:
// created by the vote collector and never mutated afterwards. A failed
// inference call or unparsable ballot is recorded as an abstain with
// Failed set.
type Vote struct {
	PersonaID  string     `json:"persona_id"`
	Choice     VoteChoice `json:"choice"`
	Confidence float64    `json:"confidence"`
	Reasoning  string     `json:"reasoning,omitempty"`
	Relevance  float64    `json:"relevance"`
	LatencyMs  int64      `json:"latency_ms"`
	Failed     bool       `json:"failed"`

	// Weight is copied from the persona at collection time so the scorer
	// stays a pure function of its vote set.
	Weight float64 `json:"weight"`
}

// Counted reports whether the vote counts toward quorum.
func (v Vote) Counted() bool {
	return !v.Failed && v.Choice != VoteAbstain
}
