package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/tair/movie-favorites/internal/favorite/domain"
)

// DeleteFavoriteCommand represents the command to remove a favorite
type DeleteFavoriteCommand struct {
	UserID  string
	MovieID int64
}

// DeleteFavoriteHandler handles delete favorite command
type DeleteFavoriteHandler struct {
	repo      domain.FavoriteRepository
	publisher domain.EventPublisher
}

// NewDeleteFavoriteHandler creates a new delete favorite handler
func NewDeleteFavoriteHandler(repo domain.FavoriteRepository, publisher domain.EventPublisher) *DeleteFavoriteHandler {
	return &DeleteFavoriteHandler{repo: repo, publisher: publisher}
}

// Handle executes the delete favorite command
func (h *DeleteFavoriteHandler) Handle(ctx context.Context, cmd DeleteFavoriteCommand) error {
	userID := strings.TrimSpace(cmd.UserID)
	if userID == "" {
		return domain.NewValidationError("", MsgMissingFields)
	}

	if err := h.repo.Delete(ctx, userID, cmd.MovieID); err != nil {
		return fmt.Errorf("failed to delete favorite: %w", err)
	}

	publish(ctx, h.publisher, domain.FavoriteEvent{
		EventType: domain.EventTypeFavoriteDeleted,
		UserID:    userID,
		MovieID:   cmd.MovieID,
	})
	return nil
}
