package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "storeadmin/backend/internal/domain/auth"
)

func TestSessionRepository_Create(t *testing.T) {
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec(`INSERT INTO sessions`).
		WithArgs("hash", "u1", now, (*time.Time)(nil)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err = NewSessionRepository(mock).Create(context.Background(), &domain.Session{
		TokenHash: "hash",
		UserID:    "u1",
		CreatedAt: now,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepository_Get(t *testing.T) {
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	expires := now.Add(time.Hour)

	t.Run("with expiry", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(`FROM sessions WHERE token_hash = \$1`).
			WithArgs("hash").
			WillReturnRows(pgxmock.NewRows([]string{"token_hash", "user_id", "created_at", "expires_at"}).
				AddRow("hash", "u1", now, &expires))

		got, err := NewSessionRepository(mock).Get(context.Background(), "hash")
		require.NoError(t, err)
		assert.Equal(t, "u1", got.UserID)
		assert.Equal(t, expires, got.ExpiresAt)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(`FROM sessions`).
			WithArgs("nope").
			WillReturnError(pgx.ErrNoRows)

		_, err = NewSessionRepository(mock).Get(context.Background(), "nope")
		assert.ErrorIs(t, err, domain.ErrTokenNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestSessionRepository_Delete(t *testing.T) {
	tests := []struct {
		name     string
		affected int64
		wantErr  error
	}{
		{name: "deleted", affected: 1},
		{name: "already revoked", affected: 0, wantErr: domain.ErrTokenNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()

			mock.ExpectExec(`DELETE FROM sessions WHERE token_hash = \$1`).
				WithArgs("hash").
				WillReturnResult(pgxmock.NewResult("DELETE", tt.affected))

			err = NewSessionRepository(mock).Delete(context.Background(), "hash")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestSessionRepository_DeleteExpired(t *testing.T) {
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec(`DELETE FROM sessions WHERE expires_at IS NOT NULL`).
		WithArgs(now).
		WillReturnResult(pgxmock.NewResult("DELETE", 3))

	n, err := NewSessionRepository(mock).DeleteExpired(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}
