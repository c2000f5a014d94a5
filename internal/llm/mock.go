package llm

import (
	"context"
	"sync"

	"github.com/aibradaa-labs/council/internal/domain"
)

// MockClient is a configurable inference client for testing.
// Set the response fields to control what Generate returns.
type MockClient struct {
	ClientTier       domain.Tier
	GenerateResponse string
	GenerateCost     float64
	GenerateError    error

	// GenerateFunc, when set, overrides the static response fields.
	GenerateFunc func(ctx context.Context, prompt string) (string, float64, error)

	mu            sync.Mutex
	GenerateCalls []string
}

func NewMockClient() *MockClient {
	return &MockClient{
		ClientTier:       domain.TierFree,
		GenerateResponse: `{"decision":"abstain","confidence":0,"reasoning":"mock"}`,
	}
}

func (c *MockClient) Tier() domain.Tier { return c.ClientTier }

func (c *MockClient) Generate(ctx context.Context, prompt string) (string, float64, error) {
	c.mu.Lock()
	c.GenerateCalls = append(c.GenerateCalls, prompt)
	c.mu.Unlock()

	if c.GenerateFunc != nil {
		return c.GenerateFunc(ctx, prompt)
	}
	if c.GenerateError != nil {
		return "", 0, c.GenerateError
	}
	return c.GenerateResponse, c.GenerateCost, nil
}

// CallCount returns how many Generate calls were recorded.
func (c *MockClient) CallCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.GenerateCalls)
}
