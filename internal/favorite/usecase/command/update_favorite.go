package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/tair/movie-favorites/internal/favorite/domain"
)

// UpdateFavoriteCommand represents a partial update of rating and/or note
type UpdateFavoriteCommand struct {
	UserID  string
	MovieID int64
	Rating  *float64
	// Note replaces the stored note; an empty string clears it.
	Note *string
}

// UpdateFavoriteHandler handles update favorite command
type UpdateFavoriteHandler struct {
	repo      domain.FavoriteRepository
	publisher domain.EventPublisher
}

// NewUpdateFavoriteHandler creates a new update favorite handler
func NewUpdateFavoriteHandler(repo domain.FavoriteRepository, publisher domain.EventPublisher) *UpdateFavoriteHandler {
	return &UpdateFavoriteHandler{repo: repo, publisher: publisher}
}

// Handle executes the update favorite command
func (h *UpdateFavoriteHandler) Handle(ctx context.Context, cmd UpdateFavoriteCommand) (*domain.FavoriteRow, error) {
	userID := strings.TrimSpace(cmd.UserID)
	if userID == "" {
		return nil, domain.NewValidationError("", MsgMissingFields)
	}

	var patch domain.Patch
	if cmd.Rating != nil {
		rating, err := normalizeRating(*cmd.Rating)
		if err != nil {
			return nil, err
		}
		patch.Rating = &rating
	}
	if cmd.Note != nil {
		note := strings.TrimSpace(*cmd.Note)
		patch.Note = &note
	}
	if patch.Empty() {
		return nil, domain.NewValidationError("", MsgNothingToDo)
	}

	row, err := h.repo.Patch(ctx, userID, cmd.MovieID, patch)
	if err != nil {
		return nil, fmt.Errorf("failed to update favorite: %w", err)
	}

	publish(ctx, h.publisher, domain.FavoriteEvent{
		EventType: domain.EventTypeFavoriteUpdated,
		UserID:    row.UserID,
		MovieID:   row.MovieID,
		Rating:    row.Rating,
		Note:      row.Note,
	})

	return row, nil
}
