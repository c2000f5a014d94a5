package domain

import "time"

// Session memory bounds. Every append refreshes the TTL; the message log is
// a rolling window that evicts oldest entries past the capacity.
const (
	SessionWindowSize = 50
	SessionTTL        = 30 * 24 * time.Hour
)

// Message is one entry in a user's session log.
type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}
