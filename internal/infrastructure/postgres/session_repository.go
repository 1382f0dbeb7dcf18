package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/samber/oops"

	domain "storeadmin/backend/internal/domain/auth"
)

// SessionRepository stores token sessions in the sessions table.
type SessionRepository struct {
	db DBTX
}

// NewSessionRepository constructs a repository.
func NewSessionRepository(db DBTX) *SessionRepository {
	return &SessionRepository{db: db}
}

var _ domain.SessionStore = (*SessionRepository)(nil)

// Create inserts a session row.
func (r *SessionRepository) Create(ctx context.Context, session *domain.Session) error {
	const query = `
INSERT INTO sessions (token_hash, user_id, created_at, expires_at)
VALUES ($1, $2, $3, $4)
`
	_, err := r.db.Exec(ctx, query,
		session.TokenHash,
		session.UserID,
		session.CreatedAt,
		nullableTime(session.ExpiresAt),
	)
	if err != nil {
		return oops.Code("SESSION_STORE_FAILED").With("user_id", session.UserID).Wrapf(err, "insert session")
	}
	return nil
}

// Get fetches the session for tokenHash.
func (r *SessionRepository) Get(ctx context.Context, tokenHash string) (*domain.Session, error) {
	const query = `
SELECT token_hash, user_id, created_at, expires_at
FROM sessions WHERE token_hash = $1
`
	var (
		s         domain.Session
		expiresAt *time.Time
	)
	err := r.db.QueryRow(ctx, query, tokenHash).Scan(&s.TokenHash, &s.UserID, &s.CreatedAt, &expiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTokenNotFound
		}
		return nil, oops.Code("SESSION_STORE_FAILED").Wrapf(err, "get session")
	}
	if expiresAt != nil {
		s.ExpiresAt = *expiresAt
	}
	return &s, nil
}

// Delete removes the session for tokenHash in a single statement.
func (r *SessionRepository) Delete(ctx context.Context, tokenHash string) error {
	ct, err := r.db.Exec(ctx, `DELETE FROM sessions WHERE token_hash = $1`, tokenHash)
	if err != nil {
		return oops.Code("SESSION_STORE_FAILED").Wrapf(err, "delete session")
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrTokenNotFound
	}
	return nil
}

// DeleteExpired purges sessions whose expiry has passed.
func (r *SessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	ct, err := r.db.Exec(ctx, `DELETE FROM sessions WHERE expires_at IS NOT NULL AND expires_at <= $1`, now)
	if err != nil {
		return 0, oops.Code("SESSION_STORE_FAILED").Wrapf(err, "delete expired sessions")
	}
	return ct.RowsAffected(), nil
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
