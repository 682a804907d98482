package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"quiz-summary-service/internal/domain"
)

// SessionStore keeps session tokens in Redis so every instance can resolve them.
// Tokens are stored as: SET quiz:session:{token} {userID} EX ttl
type SessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{client: client, ttl: ttl}
}

func (s *SessionStore) Create(ctx context.Context, userID string) (string, error) {
	token := uuid.NewString()
	if err := s.client.Set(ctx, s.key(token), userID, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}
	return token, nil
}

func (s *SessionStore) Lookup(ctx context.Context, token string) (domain.User, error) {
	userID, err := s.client.Get(ctx, s.key(token)).Result()
	if errors.Is(err, redis.Nil) {
		return domain.User{}, domain.ErrSessionNotFound
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("lookup session: %w", err)
	}
	return domain.User{ID: userID}, nil
}

// Seed stores fixed tokens without expiry in a single pipeline.
func (s *SessionStore) Seed(ctx context.Context, tokens map[string]string) error {
	if len(tokens) == 0 {
		return nil
	}
	pipe := s.client.Pipeline()
	for token, userID := range tokens {
		pipe.Set(ctx, s.key(token), userID, 0)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("seed sessions: %w", err)
	}
	return nil
}

// Revoke deletes a token.
func (s *SessionStore) Revoke(ctx context.Context, token string) error {
	return s.client.Del(ctx, s.key(token)).Err()
}

func (s *SessionStore) key(token string) string {
	return "quiz:session:" + token
}
