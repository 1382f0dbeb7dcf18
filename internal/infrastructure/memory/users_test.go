package memory

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authdomain "storeadmin/backend/internal/domain/auth"
)

func TestUserRepository_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository()

	user := &authdomain.User{ID: "u1", Email: "ana@example.com", Name: "Ana", Role: authdomain.RoleUser}
	require.NoError(t, repo.Create(ctx, user))

	got, err := repo.GetByEmail(ctx, "ANA@example.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", got.ID)

	got.Name = "mutated"
	again, err := repo.GetByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Ana", again.Name)

	_, err = repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, authdomain.ErrUserNotFound)
	_, err = repo.GetByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, authdomain.ErrUserNotFound)
}

func TestUserRepository_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository()

	require.NoError(t, repo.Create(ctx, &authdomain.User{ID: "u1", Email: "ana@example.com"}))
	err := repo.Create(ctx, &authdomain.User{ID: "u2", Email: "Ana@Example.com"})
	assert.ErrorIs(t, err, authdomain.ErrEmailExists)
}

func TestUserRepository_ConcurrentCreateSameEmail(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository()

	var wg sync.WaitGroup
	var created atomic.Int32
	for i := range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := repo.Create(ctx, &authdomain.User{ID: fmt.Sprintf("u%d", i), Email: "race@example.com"})
			if err == nil {
				created.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), created.Load())
}

func TestUserRepository_List(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Create(ctx, &authdomain.User{ID: "a", Email: "a@x.io", Role: authdomain.RoleAdmin, CreatedAt: base}))
	require.NoError(t, repo.Create(ctx, &authdomain.User{ID: "b", Email: "b@x.io", Role: authdomain.RoleUser, CreatedAt: base.Add(time.Hour)}))

	all, err := repo.List(ctx, authdomain.UserFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "b", all[0].ID)

	admins, err := repo.List(ctx, authdomain.UserFilter{Role: authdomain.RoleAdmin})
	require.NoError(t, err)
	require.Len(t, admins, 1)
	assert.Equal(t, "a", admins[0].ID)
}
