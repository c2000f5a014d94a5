package store

import (
	"context"

	"github.com/aibradaa-labs/council/internal/domain"
	"go.uber.org/zap"
)

// FallbackSessionStore serves session memory from the durable store and
// degrades to the in-process store when it is unreachable. Fallback writes
// are never replayed: once the durable store recovers it becomes
// authoritative again.
type FallbackSessionStore struct {
	primary  domain.SessionStore
	fallback domain.SessionStore
	logger   *zap.Logger
}

func NewFallbackSessionStore(primary, fallback domain.SessionStore, logger *zap.Logger) *FallbackSessionStore {
	return &FallbackSessionStore{primary: primary, fallback: fallback, logger: logger}
}

func (s *FallbackSessionStore) Append(ctx context.Context, userID string, msg domain.Message) error {
	if err := s.primary.Append(ctx, userID, msg); err != nil {
		s.logger.Warn("session store unreachable, appending to local fallback",
			zap.String("user_id", userID),
			zap.Error(err))
		return s.fallback.Append(ctx, userID, msg)
	}
	return nil
}

func (s *FallbackSessionStore) GetRecent(ctx context.Context, userID string, limit int) ([]domain.Message, error) {
	msgs, err := s.primary.GetRecent(ctx, userID, limit)
	if err != nil {
		s.logger.Warn("session store unreachable, reading local fallback",
			zap.String("user_id", userID),
			zap.Error(err))
		return s.fallback.GetRecent(ctx, userID, limit)
	}
	return msgs, nil
}

func (s *FallbackSessionStore) Clear(ctx context.Context, userID string) error {
	// Clear both so a recovered primary cannot resurrect a session the
	// user deleted during an outage.
	perr := s.primary.Clear(ctx, userID)
	ferr := s.fallback.Clear(ctx, userID)
	if perr != nil {
		s.logger.Warn("session store unreachable for clear",
			zap.String("user_id", userID),
			zap.Error(perr))
		return ferr
	}
	return nil
}
