package auth

import (
	"context"
	"time"
)

// Session is the server-side record of an issued token. Only the SHA-256 hash
// of the token is kept.
type Session struct {
	TokenHash string
	UserID    string
	CreatedAt time.Time
	// ExpiresAt is zero for sessions that live until revoked.
	ExpiresAt time.Time
}

// ExpiredAt reports whether the session is no longer usable at t.
func (s *Session) ExpiredAt(t time.Time) bool {
	return !s.ExpiresAt.IsZero() && !t.Before(s.ExpiresAt)
}

// SessionStore persists sessions. Each method is a single atomic operation.
type SessionStore interface {
	Create(ctx context.Context, session *Session) error
	// Get returns ErrTokenNotFound when no session exists for the hash.
	Get(ctx context.Context, tokenHash string) (*Session, error)
	// Delete returns ErrTokenNotFound when no session exists for the hash.
	Delete(ctx context.Context, tokenHash string) error
}
