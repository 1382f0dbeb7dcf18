package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	addressdomain "storeadmin/backend/internal/domain/address"
)

func TestAddressRepository_OwnershipAndDefaults(t *testing.T) {
	ctx := context.Background()
	repo := NewAddressRepository()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	first := &addressdomain.Address{ID: "a1", UserID: "u1", IsDefault: true, CreatedAt: base}
	second := &addressdomain.Address{ID: "a2", UserID: "u1", CreatedAt: base.Add(time.Hour)}
	other := &addressdomain.Address{ID: "b1", UserID: "u2", IsDefault: true, CreatedAt: base}
	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, second))
	require.NoError(t, repo.Create(ctx, other))

	_, err := repo.GetByID(ctx, "u2", "a1")
	assert.ErrorIs(t, err, addressdomain.ErrAddressNotFound)

	list, err := repo.ListByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "a1", list[0].ID)

	second.IsDefault = true
	require.NoError(t, repo.Update(ctx, second))

	a1, err := repo.GetByID(ctx, "u1", "a1")
	require.NoError(t, err)
	assert.False(t, a1.IsDefault)

	b1, err := repo.GetByID(ctx, "u2", "b1")
	require.NoError(t, err)
	assert.True(t, b1.IsDefault, "other users' defaults are untouched")

	assert.ErrorIs(t, repo.Delete(ctx, "u2", "a2"), addressdomain.ErrAddressNotFound)
	require.NoError(t, repo.Delete(ctx, "u1", "a2"))
	assert.ErrorIs(t, repo.Update(ctx, second), addressdomain.ErrAddressNotFound)
}
