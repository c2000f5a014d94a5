package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aibradaa-labs/council/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// VerdictStore persists concluded verdicts in Postgres for audit. Verdicts
// are written once and never updated.
type VerdictStore struct {
	db *pgxpool.Pool
}

func NewVerdictStore(db *pgxpool.Pool) *VerdictStore {
	return &VerdictStore{db: db}
}

func (s *VerdictStore) Create(ctx context.Context, d *domain.Decision, v *domain.Verdict) error {
	dissentersJSON, err := json.Marshal(v.Dissenters)
	if err != nil {
		return fmt.Errorf("marshal dissenters: %w", err)
	}

	contextJSON, err := json.Marshal(d.Context)
	if err != nil {
		return fmt.Errorf("marshal decision context: %w", err)
	}

	if v.ComputedAt.IsZero() {
		v.ComputedAt = time.Now()
	}

	_, err = s.db.Exec(ctx,
		`INSERT INTO verdicts (
			decision_id, decision_type, title, description, context,
			requested_by, urgency,
			composite_score, outcome, dissenters,
			votes_cast, votes_failed, cause,
			decision_created_at, computed_at
		) VALUES (
			$1, $2, $3, $4, $5,
			$6, $7,
			$8, $9, $10,
			$11, $12, $13,
			$14, $15
		)`,
		v.DecisionID, d.Type, d.Title, d.Description, contextJSON,
		d.RequestedBy, d.Urgency,
		v.CompositeScore, v.Outcome, dissentersJSON,
		v.VotesCast, v.VotesFailed, v.Cause,
		d.CreatedAt, v.ComputedAt,
	)
	if err != nil {
		return fmt.Errorf("insert verdict: %w", err)
	}
	return nil
}

func (s *VerdictStore) GetByDecisionID(ctx context.Context, decisionID uuid.UUID) (*domain.Verdict, error) {
	v := &domain.Verdict{}
	var dissentersJSON []byte

	err := s.db.QueryRow(ctx,
		`SELECT decision_id, composite_score, outcome, dissenters,
			votes_cast, votes_failed, cause, computed_at
		FROM verdicts WHERE decision_id = $1`,
		decisionID,
	).Scan(
		&v.DecisionID, &v.CompositeScore, &v.Outcome, &dissentersJSON,
		&v.VotesCast, &v.VotesFailed, &v.Cause, &v.ComputedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrVerdictNotFound
		}
		return nil, fmt.Errorf("get verdict: %w", err)
	}

	if err := json.Unmarshal(dissentersJSON, &v.Dissenters); err != nil {
		return nil, fmt.Errorf("unmarshal dissenters: %w", err)
	}
	return v, nil
}

func (s *VerdictStore) ListRecent(ctx context.Context, limit int) ([]domain.Verdict, error) {
	rows, err := s.db.Query(ctx,
		`SELECT decision_id, composite_score, outcome, dissenters,
			votes_cast, votes_failed, cause, computed_at
		FROM verdicts ORDER BY computed_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list verdicts: %w", err)
	}
	defer rows.Close()

	var verdicts []domain.Verdict
	for rows.Next() {
		var v domain.Verdict
		var dissentersJSON []byte
		if err := rows.Scan(
			&v.DecisionID, &v.CompositeScore, &v.Outcome, &dissentersJSON,
			&v.VotesCast, &v.VotesFailed, &v.Cause, &v.ComputedAt,
		); err != nil {
			return nil, fmt.Errorf("scan verdict: %w", err)
		}
		if err := json.Unmarshal(dissentersJSON, &v.Dissenters); err != nil {
			return nil, fmt.Errorf("unmarshal dissenters: %w", err)
		}
		verdicts = append(verdicts, v)
	}
	return verdicts, rows.Err()
}
