package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "storeadmin/backend/internal/domain/auth"
)

var userRowColumns = []string{"id", "email", "name", "phone", "role", "password_hash", "created_at", "updated_at"}

func TestUserRepository_Create(t *testing.T) {
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	user := &domain.User{
		ID:           "0b6f9a5e-7f7e-4a43-9b0e-3c2d9b8f1a11",
		Email:        "ana@example.com",
		Name:         "Ana",
		Role:         domain.RoleUser,
		PasswordHash: "hash",
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	tests := []struct {
		name      string
		setupMock func(mock pgxmock.PgxPoolIface)
		wantErr   error
		wantCode  string
	}{
		{
			name: "inserted",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(`INSERT INTO users`).
					WithArgs(user.ID, user.Email, user.Name, "", "user", "hash", now, now).
					WillReturnResult(pgxmock.NewResult("INSERT", 1))
			},
		},
		{
			name: "unique violation maps to ErrEmailExists",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(`INSERT INTO users`).
					WithArgs(user.ID, user.Email, user.Name, "", "user", "hash", now, now).
					WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation})
			},
			wantErr: domain.ErrEmailExists,
		},
		{
			name: "other failures carry a code",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(`INSERT INTO users`).
					WithArgs(user.ID, user.Email, user.Name, "", "user", "hash", now, now).
					WillReturnError(errors.New("connection reset"))
			},
			wantCode: "USER_CREATE_FAILED",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()
			tt.setupMock(mock)

			err = NewUserRepository(mock).Create(context.Background(), user)

			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.wantCode != "":
				oopsErr, ok := oops.AsOops(err)
				require.True(t, ok)
				assert.Equal(t, tt.wantCode, oopsErr.Code())
			default:
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUserRepository_GetByEmail(t *testing.T) {
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	t.Run("found", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(`FROM users WHERE lower\(email\) = lower\(\$1\)`).
			WithArgs("Ana@Example.com").
			WillReturnRows(pgxmock.NewRows(userRowColumns).
				AddRow("u1", "ana@example.com", "Ana", "0917", "admin", "hash", now, now))

		got, err := NewUserRepository(mock).GetByEmail(context.Background(), "Ana@Example.com")
		require.NoError(t, err)
		assert.Equal(t, "u1", got.ID)
		assert.Equal(t, domain.RoleAdmin, got.Role)
		assert.Equal(t, "0917", got.Phone)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(`FROM users WHERE lower\(email\)`).
			WithArgs("nobody@example.com").
			WillReturnError(pgx.ErrNoRows)

		_, err = NewUserRepository(mock).GetByEmail(context.Background(), "nobody@example.com")
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUserRepository_GetByID_Missing(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`FROM users WHERE id = \$1`).
		WithArgs("u404").
		WillReturnError(pgx.ErrNoRows)

	_, err = NewUserRepository(mock).GetByID(context.Background(), "u404")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_List(t *testing.T) {
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`FROM users WHERE role = \$1 ORDER BY created_at DESC`).
		WithArgs("admin").
		WillReturnRows(pgxmock.NewRows(userRowColumns).
			AddRow("u1", "root@example.com", "Root", "", "admin", "hash", now, now))

	users, err := NewUserRepository(mock).List(context.Background(), domain.UserFilter{Role: domain.RoleAdmin})
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "root@example.com", users[0].Email)
	assert.NoError(t, mock.ExpectationsWereMet())
}
