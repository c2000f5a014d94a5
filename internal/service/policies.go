package service

import (
	"fmt"
	"os"

	"github.com/aibradaa-labs/council/internal/domain"
	"gopkg.in/yaml.v3"
)

// PolicyTable maps decision types to their resolution policy. Static
// configuration, loaded once at startup; a missing type is a request
// validation error, never silently defaulted.
type PolicyTable struct {
	byType map[string]domain.DecisionTypePolicy
}

type policyFile struct {
	Policies []domain.DecisionTypePolicy `yaml:"policies"`
}

// LoadPolicyTable reads and validates the decision-type policy table.
func LoadPolicyTable(path string) (*PolicyTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read policy table: %w", err)
	}

	var file policyFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse policy table: %w", err)
	}
	if len(file.Policies) == 0 {
		return nil, fmt.Errorf("policy table %s is empty", path)
	}

	table := &PolicyTable{byType: make(map[string]domain.DecisionTypePolicy, len(file.Policies))}
	for _, p := range file.Policies {
		if p.Type == "" {
			return nil, fmt.Errorf("policy with empty type")
		}
		if p.ApprovalThreshold < 0 || p.ApprovalThreshold > 100 {
			return nil, fmt.Errorf("policy %q: approval_threshold %.1f outside [0, 100]", p.Type, p.ApprovalThreshold)
		}
		if p.Quorum < 1 {
			return nil, fmt.Errorf("policy %q: quorum must be at least 1", p.Type)
		}
		if p.MaxPersonas < 1 {
			return nil, fmt.Errorf("policy %q: max_personas must be at least 1", p.Type)
		}
		if _, dup := table.byType[p.Type]; dup {
			return nil, fmt.Errorf("duplicate policy for type %q", p.Type)
		}
		table.byType[p.Type] = p
	}

	return table, nil
}

// NewPolicyTable builds a table from in-memory policies, for tests.
func NewPolicyTable(policies ...domain.DecisionTypePolicy) *PolicyTable {
	table := &PolicyTable{byType: make(map[string]domain.DecisionTypePolicy, len(policies))}
	for _, p := range policies {
		table.byType[p.Type] = p
	}
	return table
}

// Get returns the policy for a decision type.
func (t *PolicyTable) Get(decisionType string) (domain.DecisionTypePolicy, error) {
	p, ok := t.byType[decisionType]
	if !ok {
		return domain.DecisionTypePolicy{}, fmt.Errorf("%w: %s", domain.ErrUnknownDecisionType, decisionType)
	}
	return p, nil
}
