package llm

import (
	"fmt"

	"github.com/aibradaa-labs/council/internal/domain"
)

// TierClients builds the inference clients for every tier with a configured
// API key. Returns an error if no tier at all is usable.
func TierClients(geminiKey, cerebrasKey, openAIKey string, costs CostTable) ([]domain.InferenceClient, error) {
	var clients []domain.InferenceClient

	if geminiKey != "" {
		clients = append(clients, NewGeminiClient(geminiKey))
	}
	if cerebrasKey != "" {
		clients = append(clients, NewCerebrasClient(cerebrasKey, costs.CheapPer1K))
	}
	if openAIKey != "" {
		clients = append(clients, NewOpenAIClient(openAIKey, costs.PremiumPer1K))
	}

	if len(clients) == 0 {
		return nil, fmt.Errorf("no inference tier configured (set GEMINI_API_KEY, CEREBRAS_API_KEY, or OPENAI_API_KEY)")
	}
	return clients, nil
}
