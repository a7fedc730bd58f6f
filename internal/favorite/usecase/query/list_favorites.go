package query

import (
	"context"
	"fmt"
	"strings"

	"github.com/tair/movie-favorites/internal/favorite/domain"
)

// MsgMissingUserID is returned when the list query has no user id.
const MsgMissingUserID = "Missing userId"

// ListFavoritesQuery represents the query to list a user's favorites
type ListFavoritesQuery struct {
	UserID string
}

// ListFavoritesHandler handles list favorites query
type ListFavoritesHandler struct {
	repo domain.FavoriteRepository
}

// NewListFavoritesHandler creates a new list favorites handler
func NewListFavoritesHandler(repo domain.FavoriteRepository) *ListFavoritesHandler {
	return &ListFavoritesHandler{repo: repo}
}

// Handle executes the list favorites query
func (h *ListFavoritesHandler) Handle(ctx context.Context, q ListFavoritesQuery) ([]domain.FavoriteRow, error) {
	userID := strings.TrimSpace(q.UserID)
	if userID == "" {
		return nil, domain.NewValidationError("userId", MsgMissingUserID)
	}

	rows, err := h.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list favorites: %w", err)
	}
	return rows, nil
}
