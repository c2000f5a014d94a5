package domain

// Tier identifies an inference backend by cost class.
type Tier string

const (
	TierFree    Tier = "free"
	TierCheap   Tier = "cheap"
	TierPremium Tier = "premium"
)

// Complexity is a caller-supplied hint about how demanding a generation
// request is. It biases which tier the router tries first.
type Complexity string

const (
	ComplexityLow    Complexity = "low"
	ComplexityMedium Complexity = "medium"
	ComplexityHigh   Complexity = "high"
)

// RouteAttempt records one tier attempt inside a routing call. Ephemeral:
// summed into the spend ledger, not persisted.
type RouteAttempt struct {
	Tier          Tier    `json:"tier"`
	EstimatedCost float64 `json:"estimated_cost"`
	ActualCost    float64 `json:"actual_cost"`
	Succeeded     bool    `json:"succeeded"`
	Err           string  `json:"err,omitempty"`
}

// RouteResult is the outcome of a successful routing call.
type RouteResult struct {
	Text     string         `json:"text"`
	Tier     Tier           `json:"tier"`
	Cost     float64        `json:"cost"`
	Attempts []RouteAttempt `json:"attempts,omitempty"`
}
