package service

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aibradaa-labs/council/internal/domain"
)

const ballotPrompt = `You are %s, an expert advisor on a governance council.
Thinking style: %s. Risk appetite: %s.
Your playbook, in order:
%s

A decision has been proposed:
Type: %s
Title: %s
Description: %s
Urgency: %s
%s
Recent conversation with the requester:
%s

Vote on this proposal. Respond with ONLY this JSON, nothing else:
{"decision": "approve"|"reject"|"abstain", "confidence": 0.0-1.0, "reasoning": "<one or two sentences>"}`

// BuildBallotPrompt renders the voting prompt for one persona.
func BuildBallotPrompt(p *domain.Persona, d *domain.Decision, history []domain.Message) string {
	var playbook strings.Builder
	for i, step := range p.Playbook {
		fmt.Fprintf(&playbook, "%d. %s\n", i+1, step)
	}

	var ctx strings.Builder
	if len(d.Context) > 0 {
		ctx.WriteString("Context:\n")
		for k, v := range d.Context {
			fmt.Fprintf(&ctx, "- %s: %v\n", k, v)
		}
	}

	var convo strings.Builder
	if len(history) == 0 {
		convo.WriteString("(none)")
	}
	for _, msg := range history {
		convo.WriteString(msg.Role)
		convo.WriteString(": ")
		convo.WriteString(msg.Content)
		convo.WriteString("\n")
	}

	return fmt.Sprintf(ballotPrompt,
		p.Name, p.ThinkingStyle, p.RiskAppetite, playbook.String(),
		d.Type, d.Title, d.Description, d.Urgency, ctx.String(), convo.String())
}

type ballot struct {
	Decision   string  `json:"decision"`
	Confidence float64 `json:"confidence"`
	Reasoning  string  `json:"reasoning"`
}

// ParseBallot extracts the structured vote from a model response. Markdown
// fences are stripped first since models wrap JSON in them routinely.
func ParseBallot(raw string) (domain.VoteChoice, float64, string, error) {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")
	raw = strings.TrimSpace(raw)

	var b ballot
	if err := json.Unmarshal([]byte(raw), &b); err != nil {
		return "", 0, "", fmt.Errorf("parse ballot: %w (raw: %s)", err, raw)
	}

	choice := domain.VoteChoice(strings.ToLower(strings.TrimSpace(b.Decision)))
	if !domain.ValidVoteChoice(string(choice)) {
		return "", 0, "", fmt.Errorf("parse ballot: invalid decision %q", b.Decision)
	}

	conf := b.Confidence
	if conf < 0 {
		conf = 0
	}
	if conf > 1 {
		conf = 1
	}

	return choice, conf, strings.TrimSpace(b.Reasoning), nil
}
