package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"quiz-summary-service/internal/domain"
)

type session struct {
	userID    string
	expiresAt time.Time
}

// SessionStore is an in-memory implementation of app.SessionStore.
// A zero ttl keeps sessions until the process exits.
type SessionStore struct {
	ttl   time.Duration
	clock func() time.Time

	mu       sync.RWMutex
	sessions map[string]session
}

func NewSessionStore(ttl time.Duration) *SessionStore {
	return &SessionStore{
		ttl:      ttl,
		clock:    time.Now,
		sessions: make(map[string]session),
	}
}

// Seed registers fixed tokens, e.g. from configuration. Seeded tokens never expire.
func (s *SessionStore) Seed(tokens map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for token, userID := range tokens {
		s.sessions[token] = session{userID: userID}
	}
}

func (s *SessionStore) Create(_ context.Context, userID string) (string, error) {
	token := uuid.NewString()
	var expiresAt time.Time
	if s.ttl > 0 {
		expiresAt = s.clock().Add(s.ttl)
	}

	s.mu.Lock()
	s.sessions[token] = session{userID: userID, expiresAt: expiresAt}
	s.mu.Unlock()
	return token, nil
}

func (s *SessionStore) Lookup(_ context.Context, token string) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[token]
	if !ok {
		return domain.User{}, domain.ErrSessionNotFound
	}
	if !sess.expiresAt.IsZero() && s.clock().After(sess.expiresAt) {
		delete(s.sessions, token)
		return domain.User{}, domain.ErrSessionNotFound
	}
	return domain.User{ID: sess.userID}, nil
}
