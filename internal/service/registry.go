package service

import (
	"fmt"
	"os"
	"sort"

	"github.com/aibradaa-labs/council/internal/domain"
	"gopkg.in/yaml.v3"
)

// Registry is the read-only persona catalogue. Loaded and validated once at
// process start; malformed catalogues prevent startup entirely.
type Registry struct {
	byID  map[string]*domain.Persona
	order []string
}

type personaFile struct {
	Personas []domain.Persona `yaml:"personas"`
}

// LoadRegistry reads and validates the persona catalogue. Every persona
// must have a unique id, at least one expertise tag, a voting weight in
// [0.5, 2.0], a valid risk appetite, and a non-empty playbook.
func LoadRegistry(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read persona catalogue: %w", err)
	}

	var file personaFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse persona catalogue: %w", err)
	}
	if len(file.Personas) == 0 {
		return nil, fmt.Errorf("persona catalogue %s is empty", path)
	}

	reg := &Registry{byID: make(map[string]*domain.Persona, len(file.Personas))}
	for i := range file.Personas {
		p := &file.Personas[i]
		if err := validatePersona(p); err != nil {
			return nil, fmt.Errorf("persona %q: %w", p.ID, err)
		}
		if _, dup := reg.byID[p.ID]; dup {
			return nil, fmt.Errorf("duplicate persona id %q", p.ID)
		}
		reg.byID[p.ID] = p
		reg.order = append(reg.order, p.ID)
	}
	sort.Strings(reg.order)

	return reg, nil
}

func validatePersona(p *domain.Persona) error {
	if p.ID == "" {
		return fmt.Errorf("missing id")
	}
	if p.Name == "" {
		return fmt.Errorf("missing name")
	}
	if len(p.ExpertiseTags) == 0 {
		return fmt.Errorf("expertise_tags must not be empty")
	}
	for _, tag := range p.ExpertiseTags {
		if tag == "" {
			return fmt.Errorf("expertise_tags contains an empty tag")
		}
	}
	if p.VotingWeight < domain.MinVotingWeight || p.VotingWeight > domain.MaxVotingWeight {
		return fmt.Errorf("voting_weight %.2f outside [%.1f, %.1f]",
			p.VotingWeight, domain.MinVotingWeight, domain.MaxVotingWeight)
	}
	if !domain.ValidRiskAppetite(string(p.RiskAppetite)) {
		return fmt.Errorf("invalid risk_appetite %q", p.RiskAppetite)
	}
	if len(p.Playbook) == 0 {
		return fmt.Errorf("playbook must not be empty")
	}
	return nil
}

// Get returns the persona with the given id.
func (r *Registry) Get(id string) (*domain.Persona, error) {
	p, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrPersonaNotFound
	}
	return p, nil
}

// All returns every persona, ordered by id for determinism.
func (r *Registry) All() []*domain.Persona {
	out := make([]*domain.Persona, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id])
	}
	return out
}

// Count returns the catalogue size.
func (r *Registry) Count() int {
	return len(r.byID)
}
