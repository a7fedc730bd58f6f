package query

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tair/movie-favorites/internal/favorite/domain"
)

type stubRepo struct {
	domain.FavoriteRepository
	rows   []domain.FavoriteRow
	err    error
	gotUID string
}

func (s *stubRepo) ListByUser(_ context.Context, userID string) ([]domain.FavoriteRow, error) {
	s.gotUID = userID
	return s.rows, s.err
}

func TestListFavorites(t *testing.T) {
	repo := &stubRepo{rows: []domain.FavoriteRow{{UserID: "u", MovieID: 1}}}
	h := NewListFavoritesHandler(repo)

	rows, err := h.Handle(context.Background(), ListFavoritesQuery{UserID: " u "})
	require.NoError(t, err)
	assert.Len(t, rows, 1)
	assert.Equal(t, "u", repo.gotUID)
}

func TestListFavorites_MissingUser(t *testing.T) {
	h := NewListFavoritesHandler(&stubRepo{})

	_, err := h.Handle(context.Background(), ListFavoritesQuery{})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestListFavorites_RepositoryError(t *testing.T) {
	boom := errors.New("db down")
	h := NewListFavoritesHandler(&stubRepo{err: boom})

	_, err := h.Handle(context.Background(), ListFavoritesQuery{UserID: "u"})
	assert.ErrorIs(t, err, boom)
}
