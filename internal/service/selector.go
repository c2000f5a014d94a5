package service

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aibradaa-labs/council/internal/domain"
)

// Selector picks the voting subset for a decision by matching persona
// expertise tags against the decision's text. No external NLP: a tag counts
// if it appears, case-insensitively, in the decision's combined text.
type Selector struct {
	registry *Registry
}

func NewSelector(registry *Registry) *Selector {
	return &Selector{registry: registry}
}

// Select scores every persona's relevance to the decision and returns the
// top policy.MaxPersonas, ranked by relevance * voting weight descending,
// ties broken by persona id ascending. Personas with zero relevance are
// excluded; if everyone is excluded the result is empty and the quorum
// check fails downstream, which beats padding the vote with irrelevant
// personas.
func (s *Selector) Select(decision *domain.Decision, policy domain.DecisionTypePolicy) []domain.RankedPersona {
	text := decisionText(decision)

	var ranked []domain.RankedPersona
	for _, p := range s.registry.All() {
		rel := relevance(p, text)
		if rel == 0 {
			continue
		}
		ranked = append(ranked, domain.RankedPersona{Persona: p, Relevance: rel})
	}

	sort.Slice(ranked, func(i, j int) bool {
		si := ranked[i].Relevance * ranked[i].Persona.VotingWeight
		sj := ranked[j].Relevance * ranked[j].Persona.VotingWeight
		if si != sj {
			return si > sj
		}
		return ranked[i].Persona.ID < ranked[j].Persona.ID
	})

	if len(ranked) > policy.MaxPersonas {
		ranked = ranked[:policy.MaxPersonas]
	}
	return ranked
}

// decisionText builds the lowercase haystack the expertise tags are matched
// against: type, title, description, and every context key/value.
func decisionText(d *domain.Decision) string {
	var sb strings.Builder
	sb.WriteString(d.Type)
	sb.WriteString(" ")
	sb.WriteString(d.Title)
	sb.WriteString(" ")
	sb.WriteString(d.Description)
	for k, v := range d.Context {
		sb.WriteString(" ")
		sb.WriteString(k)
		sb.WriteString(" ")
		sb.WriteString(fmt.Sprint(v))
	}
	return strings.ToLower(sb.String())
}

// relevance is the fraction of a persona's expertise tags found in the
// decision text, normalized to [0, 1].
func relevance(p *domain.Persona, text string) float64 {
	matched := 0
	for _, tag := range p.ExpertiseTags {
		if strings.Contains(text, strings.ToLower(tag)) {
			matched++
		}
	}
	if matched == 0 {
		return 0
	}
	return float64(matched) / float64(len(p.ExpertiseTags))
}
