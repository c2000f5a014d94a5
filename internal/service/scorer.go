package service

import (
	"time"

	"github.com/aibradaa-labs/council/internal/domain"
	"github.com/google/uuid"
)

// TieBreak decides which side is the majority when approve and reject
// counts are equal among non-abstaining votes.
type TieBreak string

const (
	// TieBreakReject treats a rejecting plurality as winning ties. This is
	// a documented policy choice, not a hidden default: a split council
	// should not wave a proposal through.
	TieBreakReject  TieBreak = "reject"
	TieBreakApprove TieBreak = "approve"
)

// Scorer reduces a vote set to a verdict. Pure: no I/O, no clocks beyond
// the injected timestamp, so it is trivially testable.
type Scorer struct {
	tieBreak TieBreak
}

func NewScorer(tieBreak TieBreak) *Scorer {
	if tieBreak == "" {
		tieBreak = TieBreakReject
	}
	return &Scorer{tieBreak: tieBreak}
}

// Score aggregates votes into a composite score in [0, 100] and resolves
// the outcome against the decision type's policy.
//
// Each non-abstaining vote contributes +confidence (approve) or -confidence
// (reject), multiplied by the persona's voting weight; the weighted average
// over non-abstaining weights is mapped from [-1, 1] to [0, 100]. An
// all-abstain vote set scores a neutral 50 and resolves inconclusive.
//
// Quorum counts only votes that expressed a choice: abstentions, voluntary
// or from a failed persona, never count toward it.
func (s *Scorer) Score(decisionID uuid.UUID, votes []domain.Vote, policy domain.DecisionTypePolicy, now time.Time) *domain.Verdict {
	v := &domain.Verdict{
		DecisionID: decisionID,
		VotesCast:  len(votes),
		ComputedAt: now,
	}

	var weightedSum, weightTotal float64
	counted := 0
	for _, vote := range votes {
		if vote.Failed {
			v.VotesFailed++
		}
		if !vote.Counted() {
			continue
		}
		counted++
		weightTotal += vote.Weight
		switch vote.Choice {
		case domain.VoteApprove:
			weightedSum += vote.Confidence * vote.Weight
		case domain.VoteReject:
			weightedSum -= vote.Confidence * vote.Weight
		}
	}

	if counted == 0 || weightTotal == 0 {
		v.CompositeScore = 50
		v.Outcome = domain.OutcomeInconclusive
		v.Cause = "all votes abstained or failed"
		return v
	}

	v.CompositeScore = (weightedSum/weightTotal + 1) * 50
	v.Dissenters = s.dissenters(votes)

	if counted < policy.Quorum {
		v.Outcome = domain.OutcomeInconclusive
		v.Cause = "quorum not met"
		return v
	}

	if v.CompositeScore >= policy.ApprovalThreshold {
		v.Outcome = domain.OutcomeApproved
	} else {
		v.Outcome = domain.OutcomeRejected
	}
	return v
}

// dissenters lists voters whose choice differs from the majority choice
// among non-abstaining votes. Ties resolve per the configured tie-break.
func (s *Scorer) dissenters(votes []domain.Vote) []domain.Dissenter {
	approvals, rejections := 0, 0
	for _, vote := range votes {
		if !vote.Counted() {
			continue
		}
		switch vote.Choice {
		case domain.VoteApprove:
			approvals++
		case domain.VoteReject:
			rejections++
		}
	}

	majority := domain.VoteReject
	switch {
	case approvals > rejections:
		majority = domain.VoteApprove
	case approvals == rejections && s.tieBreak == TieBreakApprove:
		majority = domain.VoteApprove
	}

	var out []domain.Dissenter
	for _, vote := range votes {
		if !vote.Counted() {
			continue
		}
		if vote.Choice != majority {
			out = append(out, domain.Dissenter{PersonaID: vote.PersonaID, Vote: vote})
		}
	}
	return out
}
