package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aibradaa-labs/council/internal/domain"
	"go.uber.org/zap"
)

func testCosts() CostTable {
	return CostTable{CheapPer1K: 0.002, PremiumPer1K: 0.03}
}

func TestRouter_FreeTierFirst(t *testing.T) {
	free := NewMockClient()
	free.GenerateResponse = "free answer"
	cheap := NewMockClient()
	cheap.ClientTier = domain.TierCheap

	budget := NewBudget(10, time.Hour)
	r := NewRouter([]domain.InferenceClient{free, cheap}, budget, testCosts(), time.Second, zap.NewNop())

	res, err := r.Route(context.Background(), "short prompt", domain.ComplexityLow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Tier != domain.TierFree {
		t.Errorf("tier = %s, want free", res.Tier)
	}
	if res.Text != "free answer" {
		t.Errorf("text = %q", res.Text)
	}
	if cheap.CallCount() != 0 {
		t.Error("cheap tier should not be called when free succeeds")
	}
	if budget.Spent() != 0 {
		t.Errorf("free tier must not charge the ledger, spent = %f", budget.Spent())
	}
}

func TestRouter_EscalatesOnFailure(t *testing.T) {
	free := NewMockClient()
	free.GenerateError = errors.New("rate limited")
	cheap := NewMockClient()
	cheap.ClientTier = domain.TierCheap
	cheap.GenerateResponse = "cheap answer"
	cheap.GenerateCost = 0.001

	budget := NewBudget(10, time.Hour)
	r := NewRouter([]domain.InferenceClient{free, cheap}, budget, testCosts(), time.Second, zap.NewNop())

	res, err := r.Route(context.Background(), "short prompt", domain.ComplexityLow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Tier != domain.TierCheap {
		t.Errorf("tier = %s, want cheap", res.Tier)
	}
	if len(res.Attempts) != 2 {
		t.Errorf("attempts = %d, want 2", len(res.Attempts))
	}
	if spent := budget.Spent(); spent < 0.001-1e-9 || spent > 0.001+1e-9 {
		t.Errorf("spent = %f, want committed actual cost 0.001", spent)
	}
}

func TestRouter_HighComplexityPrefersPaid(t *testing.T) {
	free := NewMockClient()
	cheap := NewMockClient()
	cheap.ClientTier = domain.TierCheap
	cheap.GenerateResponse = "cheap answer"

	r := NewRouter([]domain.InferenceClient{free, cheap}, NewBudget(10, time.Hour), testCosts(), time.Second, zap.NewNop())

	res, err := r.Route(context.Background(), "hard prompt", domain.ComplexityHigh)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Tier != domain.TierCheap {
		t.Errorf("tier = %s, want cheap", res.Tier)
	}
	if free.CallCount() != 0 {
		t.Error("free tier should not be tried while a paid tier succeeds")
	}
}

func TestRouter_FreeOnlyServesHighComplexity(t *testing.T) {
	free := NewMockClient()
	free.GenerateResponse = "free answer"

	r := NewRouter([]domain.InferenceClient{free}, NewBudget(10, time.Hour), testCosts(), time.Second, zap.NewNop())

	res, err := r.Route(context.Background(), "hard prompt", domain.ComplexityHigh)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Tier != domain.TierFree {
		t.Errorf("tier = %s, want free", res.Tier)
	}
	if free.CallCount() != 1 {
		t.Errorf("free calls = %d, want 1", free.CallCount())
	}
}

func TestRouter_HighComplexityFallsBackToFree(t *testing.T) {
	free := NewMockClient()
	free.GenerateResponse = "free answer"
	cheap := NewMockClient()
	cheap.ClientTier = domain.TierCheap
	cheap.GenerateError = errors.New("backend down")

	budget := NewBudget(10, time.Hour)
	r := NewRouter([]domain.InferenceClient{free, cheap}, budget, testCosts(), time.Second, zap.NewNop())

	res, err := r.Route(context.Background(), "hard prompt", domain.ComplexityHigh)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Tier != domain.TierFree {
		t.Errorf("tier = %s, want free after paid tiers fail", res.Tier)
	}
	if budget.Spent() != 0 {
		t.Errorf("failed paid attempt must not charge the ledger, spent = %f", budget.Spent())
	}
}

func TestRouter_BudgetExhaustedFailsPaidTiers(t *testing.T) {
	cheap := NewMockClient()
	cheap.ClientTier = domain.TierCheap
	premium := NewMockClient()
	premium.ClientTier = domain.TierPremium

	budget := NewBudget(0, time.Hour) // nothing to spend
	r := NewRouter([]domain.InferenceClient{cheap, premium}, budget, testCosts(), time.Second, zap.NewNop())

	_, err := r.Route(context.Background(), "hard prompt", domain.ComplexityHigh)
	if !errors.Is(err, domain.ErrBudgetExhausted) {
		t.Fatalf("error = %v, want ErrBudgetExhausted", err)
	}
	if cheap.CallCount() != 0 || premium.CallCount() != 0 {
		t.Error("no paid backend may be called past the ceiling")
	}
}

func TestRouter_FreeTierUsablePastCeiling(t *testing.T) {
	free := NewMockClient()
	free.GenerateResponse = "still works"

	budget := NewBudget(0, time.Hour)
	r := NewRouter([]domain.InferenceClient{free}, budget, testCosts(), time.Second, zap.NewNop())

	res, err := r.Route(context.Background(), "short prompt", domain.ComplexityLow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Text != "still works" {
		t.Errorf("text = %q", res.Text)
	}
}

func TestRouter_ExhaustedOnlyWithoutFreeTier(t *testing.T) {
	free := NewMockClient()
	cheap := NewMockClient()
	cheap.ClientTier = domain.TierCheap

	spent := NewBudget(0, time.Hour)
	withFree := NewRouter([]domain.InferenceClient{free, cheap}, spent, testCosts(), time.Second, zap.NewNop())
	if withFree.Exhausted() {
		t.Error("a free tier keeps the router usable past the ceiling")
	}

	paidOnly := NewRouter([]domain.InferenceClient{cheap}, spent, testCosts(), time.Second, zap.NewNop())
	if !paidOnly.Exhausted() {
		t.Error("paid-only router with spent budget must report exhausted")
	}
}

func TestRouter_FailedPaidAttemptReleasesReservation(t *testing.T) {
	cheap := NewMockClient()
	cheap.ClientTier = domain.TierCheap
	cheap.GenerateError = errors.New("backend down")

	budget := NewBudget(1, time.Hour)
	r := NewRouter([]domain.InferenceClient{cheap}, budget, testCosts(), time.Second, zap.NewNop())

	_, err := r.Route(context.Background(), "hard prompt", domain.ComplexityHigh)
	if !errors.Is(err, domain.ErrAllTiersFailed) {
		t.Fatalf("error = %v, want ErrAllTiersFailed", err)
	}
	if budget.Spent() != 0 {
		t.Errorf("failed attempt must release its reservation, spent = %f", budget.Spent())
	}
}

func TestRouter_CancellationStopsCascade(t *testing.T) {
	free := NewMockClient()
	free.GenerateFunc = func(ctx context.Context, prompt string) (string, float64, error) {
		<-ctx.Done()
		return "", 0, ctx.Err()
	}
	cheap := NewMockClient()
	cheap.ClientTier = domain.TierCheap

	r := NewRouter([]domain.InferenceClient{free, cheap}, NewBudget(10, time.Hour), testCosts(), time.Second, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.Route(ctx, "short prompt", domain.ComplexityLow)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
	if cheap.CallCount() != 0 {
		t.Error("cascade must stop once the caller cancels")
	}
}
