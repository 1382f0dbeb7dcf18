package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	authdomain "storeadmin/backend/internal/domain/auth"
)

// SessionStore keeps sessions keyed by token hash.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]authdomain.Session
}

// NewSessionStore returns an empty store.
func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]authdomain.Session)}
}

var _ authdomain.SessionStore = (*SessionStore)(nil)

// Create records a session. Hash collisions are reported as errors.
func (s *SessionStore) Create(_ context.Context, session *authdomain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.sessions[session.TokenHash]; exists {
		return fmt.Errorf("session %s already exists", session.TokenHash)
	}
	s.sessions[session.TokenHash] = *session
	return nil
}

// Get returns the session for tokenHash.
func (s *SessionStore) Get(_ context.Context, tokenHash string) (*authdomain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[tokenHash]
	if !ok {
		return nil, authdomain.ErrTokenNotFound
	}
	return &session, nil
}

// Delete removes the session for tokenHash.
func (s *SessionStore) Delete(_ context.Context, tokenHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[tokenHash]; !ok {
		return authdomain.ErrTokenNotFound
	}
	delete(s.sessions, tokenHash)
	return nil
}

// DeleteExpired drops every session that has expired at now.
func (s *SessionStore) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for hash, session := range s.sessions {
		if session.ExpiredAt(now) {
			delete(s.sessions, hash)
			n++
		}
	}
	return n, nil
}
