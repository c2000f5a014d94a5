package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aibradaa-labs/council/internal/domain"
	"github.com/redis/go-redis/v9"
)

const sessionKeyPrefix = "council:session:"

// SessionStore keeps each user's rolling message window in a Redis list.
// Every append trims the list to the window size and refreshes the TTL, so
// idle sessions expire on their own.
type SessionStore struct {
	client *redis.Client
}

func NewSessionStore(client *redis.Client) *SessionStore {
	return &SessionStore{client: client}
}

func sessionKey(userID string) string {
	return sessionKeyPrefix + userID
}

func (s *SessionStore) Append(ctx context.Context, userID string, msg domain.Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	key := sessionKey(userID)
	pipe := s.client.TxPipeline()
	pipe.RPush(ctx, key, data)
	pipe.LTrim(ctx, key, -int64(domain.SessionWindowSize), -1)
	pipe.Expire(ctx, key, domain.SessionTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("append session message: %w", err)
	}
	return nil
}

func (s *SessionStore) GetRecent(ctx context.Context, userID string, limit int) ([]domain.Message, error) {
	if limit <= 0 || limit > domain.SessionWindowSize {
		limit = domain.SessionWindowSize
	}

	raw, err := s.client.LRange(ctx, sessionKey(userID), -int64(limit), -1).Result()
	if err != nil {
		return nil, fmt.Errorf("read session messages: %w", err)
	}

	msgs := make([]domain.Message, 0, len(raw))
	for _, item := range raw {
		var msg domain.Message
		if err := json.Unmarshal([]byte(item), &msg); err != nil {
			return nil, fmt.Errorf("unmarshal session message: %w", err)
		}
		msgs = append(msgs, msg)
	}
	return msgs, nil
}

func (s *SessionStore) Clear(ctx context.Context, userID string) error {
	if err := s.client.Del(ctx, sessionKey(userID)).Err(); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}
