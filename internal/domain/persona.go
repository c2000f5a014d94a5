package domain

// RiskAppetite describes how aggressively a persona votes on risky proposals.
type RiskAppetite string

const (
	RiskVeryConservative RiskAppetite = "very-conservative"
	RiskConservative     RiskAppetite = "conservative"
	RiskBalanced         RiskAppetite = "balanced"
	RiskHigh             RiskAppetite = "high"
	RiskVeryHigh         RiskAppetite = "very-high"
)

// ValidRiskAppetite reports whether s is a known risk appetite.
func ValidRiskAppetite(s string) bool {
	switch RiskAppetite(s) {
	case RiskVeryConservative, RiskConservative, RiskBalanced, RiskHigh, RiskVeryHigh:
		return true
	}
	return false
}

// Voting weight bounds enforced at registry load.
const (
	MinVotingWeight = 0.5
	MaxVotingWeight = 2.0
)

// Persona is a configured expert profile with weighted influence on a vote.
// Personas are loaded once at startup and never mutated afterwards.
type Persona struct {
	ID            string       `json:"id" yaml:"id"`
	Name          string       `json:"name" yaml:"name"`
	ExpertiseTags []string     `json:"expertise_tags" yaml:"expertise_tags"`
	ThinkingStyle string       `json:"thinking_style" yaml:"thinking_style"`
	RiskAppetite  RiskAppetite `json:"risk_appetite" yaml:"risk_appetite"`
	VotingWeight  float64      `json:"voting_weight" yaml:"voting_weight"`
	Playbook      []string     `json:"playbook" yaml:"playbook"`
}

// RankedPersona pairs a persona with its relevance to a decision, as
// computed by the relevance selector.
type RankedPersona struct {
	Persona   *Persona `json:"persona"`
	Relevance float64  `json:"relevance"`
}
