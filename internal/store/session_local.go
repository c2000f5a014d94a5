package store

import (
	"context"
	"sync"
	"time"

	"github.com/aibradaa-labs/council/internal/domain"
)

type localSession struct {
	messages  []domain.Message
	expiresAt time.Time
}

// LocalSessionStore is the in-process degraded fallback for session memory:
// same window and TTL semantics as the Redis store, but the data dies with
// the process. One mutex covers the whole map; session traffic is light
// enough that per-user locking buys nothing.
type LocalSessionStore struct {
	mu       sync.Mutex
	sessions map[string]*localSession
	now      func() time.Time
}

func NewLocalSessionStore() *LocalSessionStore {
	return &LocalSessionStore{
		sessions: make(map[string]*localSession),
		now:      time.Now,
	}
}

func (s *LocalSessionStore) Append(_ context.Context, userID string, msg domain.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.sessions[userID]
	if sess == nil || s.now().After(sess.expiresAt) {
		sess = &localSession{}
		s.sessions[userID] = sess
	}

	sess.messages = append(sess.messages, msg)
	if len(sess.messages) > domain.SessionWindowSize {
		sess.messages = sess.messages[len(sess.messages)-domain.SessionWindowSize:]
	}
	sess.expiresAt = s.now().Add(domain.SessionTTL)
	return nil
}

func (s *LocalSessionStore) GetRecent(_ context.Context, userID string, limit int) ([]domain.Message, error) {
	if limit <= 0 || limit > domain.SessionWindowSize {
		limit = domain.SessionWindowSize
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.sessions[userID]
	if sess == nil {
		return nil, nil
	}
	if s.now().After(sess.expiresAt) {
		delete(s.sessions, userID)
		return nil, nil
	}

	msgs := sess.messages
	if len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	out := make([]domain.Message, len(msgs))
	copy(out, msgs)
	return out, nil
}

func (s *LocalSessionStore) Clear(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, userID)
	return nil
}
