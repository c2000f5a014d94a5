package service

import (
	"testing"

	"github.com/aibradaa-labs/council/internal/domain"
	"github.com/google/uuid"
)

func testRegistry(personas ...domain.Persona) *Registry {
	reg := &Registry{byID: make(map[string]*domain.Persona)}
	for i := range personas {
		p := &personas[i]
		reg.byID[p.ID] = p
		reg.order = append(reg.order, p.ID)
	}
	return reg
}

func persona(id string, weight float64, tags ...string) domain.Persona {
	return domain.Persona{
		ID:            id,
		Name:          id,
		ExpertiseTags: tags,
		ThinkingStyle: "analytical",
		RiskAppetite:  domain.RiskBalanced,
		VotingWeight:  weight,
		Playbook:      []string{"assess the proposal"},
	}
}

func pricingDecision() *domain.Decision {
	return &domain.Decision{
		ID:          uuid.New(),
		Type:        "pricing-change",
		Title:       "Raise pro tier pricing",
		Description: "Increase the monthly subscription price by 10%",
		Context:     map[string]any{"segment": "enterprise churn risk"},
		RequestedBy: "user-1",
		Urgency:     domain.UrgencyNormal,
	}
}

func TestSelector_ExcludesIrrelevantPersonas(t *testing.T) {
	reg := testRegistry(
		persona("pricing-expert", 1.5, "pricing"),
		persona("kernel-dev", 2.0, "kernel", "drivers"),
	)
	sel := NewSelector(reg)

	got := sel.Select(pricingDecision(), domain.DecisionTypePolicy{MaxPersonas: 10, Quorum: 1})

	if len(got) != 1 {
		t.Fatalf("selected = %d, want 1", len(got))
	}
	if got[0].Persona.ID != "pricing-expert" {
		t.Errorf("selected %s, want pricing-expert", got[0].Persona.ID)
	}
}

func TestSelector_RelevanceIsTagFractionInRange(t *testing.T) {
	reg := testRegistry(
		persona("half-match", 1.0, "pricing", "kubernetes"),
	)
	sel := NewSelector(reg)

	got := sel.Select(pricingDecision(), domain.DecisionTypePolicy{MaxPersonas: 10, Quorum: 1})

	if len(got) != 1 {
		t.Fatalf("selected = %d, want 1", len(got))
	}
	if got[0].Relevance != 0.5 {
		t.Errorf("relevance = %f, want 0.5 (1 of 2 tags)", got[0].Relevance)
	}
}

func TestSelector_RanksByRelevanceTimesWeight(t *testing.T) {
	reg := testRegistry(
		// Both fully relevant; the heavier voter ranks first.
		persona("light", 0.8, "pricing"),
		persona("heavy", 1.8, "pricing"),
		// Half relevant but heavy: 0.5*2.0 = 1.0 ranks between.
		persona("partial", 2.0, "pricing", "networking"),
	)
	sel := NewSelector(reg)

	got := sel.Select(pricingDecision(), domain.DecisionTypePolicy{MaxPersonas: 10, Quorum: 1})

	wantOrder := []string{"heavy", "partial", "light"}
	if len(got) != len(wantOrder) {
		t.Fatalf("selected = %d, want %d", len(got), len(wantOrder))
	}
	for i, id := range wantOrder {
		if got[i].Persona.ID != id {
			t.Errorf("position %d = %s, want %s", i, got[i].Persona.ID, id)
		}
	}
}

func TestSelector_TiesBreakByIDAscending(t *testing.T) {
	reg := testRegistry(
		persona("zeta", 1.0, "pricing"),
		persona("alpha", 1.0, "pricing"),
	)
	sel := NewSelector(reg)

	got := sel.Select(pricingDecision(), domain.DecisionTypePolicy{MaxPersonas: 10, Quorum: 1})

	if got[0].Persona.ID != "alpha" || got[1].Persona.ID != "zeta" {
		t.Errorf("tie order = %s, %s; want alpha, zeta", got[0].Persona.ID, got[1].Persona.ID)
	}
}

func TestSelector_CapsAtMaxPersonas(t *testing.T) {
	reg := testRegistry(
		persona("a", 1.0, "pricing"),
		persona("b", 1.2, "pricing"),
		persona("c", 1.4, "pricing"),
	)
	sel := NewSelector(reg)

	got := sel.Select(pricingDecision(), domain.DecisionTypePolicy{MaxPersonas: 2, Quorum: 1})

	if len(got) != 2 {
		t.Fatalf("selected = %d, want 2", len(got))
	}
}

func TestSelector_UnderQuorumReturnsMatchesUnpadded(t *testing.T) {
	reg := testRegistry(
		persona("only-match", 1.0, "pricing"),
		persona("kernel-dev", 1.0, "kernel"),
	)
	sel := NewSelector(reg)

	// Quorum 3 cannot be met; the selector must not pad with irrelevant
	// personas to hide that.
	got := sel.Select(pricingDecision(), domain.DecisionTypePolicy{MaxPersonas: 10, Quorum: 3})

	if len(got) != 1 {
		t.Fatalf("selected = %d, want 1", len(got))
	}
}
