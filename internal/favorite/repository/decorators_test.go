package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tair/movie-favorites/internal/favorite/domain"
)

func TestTracingFavoriteRepository_Delegates(t *testing.T) {
	ctx := context.Background()
	repo := NewTracingFavoriteRepository(newTestRepository(t))

	_, err := repo.Upsert(ctx, &domain.FavoriteRow{UserID: "u", MovieID: 1, Title: "t", Rating: 3})
	require.NoError(t, err)

	rows, err := repo.ListByUser(ctx, "u")
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	_, err = repo.Patch(ctx, "u", 2, domain.Patch{Rating: intPtr(1)})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, repo.Delete(ctx, "u", 1))
}

func TestCachedFavoriteRepository_NilClientPassesThrough(t *testing.T) {
	ctx := context.Background()
	repo := NewCachedFavoriteRepository(newTestRepository(t), nil, 0)
	assert.Equal(t, DefaultCacheTTL, repo.ttl)

	_, err := repo.Upsert(ctx, &domain.FavoriteRow{UserID: "u", MovieID: 1, Title: "t", Rating: 3})
	require.NoError(t, err)

	rows, err := repo.ListByUser(ctx, "u")
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	require.NoError(t, repo.Delete(ctx, "u", 1))
	rows, err = repo.ListByUser(ctx, "u")
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestListCacheKey(t *testing.T) {
	assert.Equal(t, "favorites:list:guest_1", listCacheKey("guest_1"))
}
