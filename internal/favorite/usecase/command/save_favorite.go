package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/tair/movie-favorites/internal/favorite/domain"
)

// SaveFavoriteCommand represents the command to create or overwrite a favorite
type SaveFavoriteCommand struct {
	UserID      string
	MovieID     int64
	Title       string
	PosterPath  *string
	ReleaseDate *string
	Overview    *string
	// Rating is the raw requested rating; nil means the default.
	Rating *float64
	Note   *string
}

// SaveFavoriteHandler handles save favorite command
type SaveFavoriteHandler struct {
	repo      domain.FavoriteRepository
	publisher domain.EventPublisher
}

// NewSaveFavoriteHandler creates a new save favorite handler
func NewSaveFavoriteHandler(repo domain.FavoriteRepository, publisher domain.EventPublisher) *SaveFavoriteHandler {
	return &SaveFavoriteHandler{repo: repo, publisher: publisher}
}

// Handle executes the save favorite command
func (h *SaveFavoriteHandler) Handle(ctx context.Context, cmd SaveFavoriteCommand) (*domain.FavoriteRow, error) {
	userID := strings.TrimSpace(cmd.UserID)
	title := strings.TrimSpace(cmd.Title)
	if userID == "" || title == "" {
		return nil, domain.NewValidationError("", MsgMissingFields)
	}

	rating := domain.DefaultRating
	if cmd.Rating != nil {
		r, err := normalizeRating(*cmd.Rating)
		if err != nil {
			return nil, err
		}
		rating = r
	}

	row := &domain.FavoriteRow{
		UserID:      userID,
		MovieID:     cmd.MovieID,
		Title:       title,
		PosterPath:  trimmed(cmd.PosterPath),
		ReleaseDate: trimmed(cmd.ReleaseDate),
		Overview:    trimmed(cmd.Overview),
		Rating:      rating,
		Note:        trimmed(cmd.Note),
	}

	stored, err := h.repo.Upsert(ctx, row)
	if err != nil {
		return nil, fmt.Errorf("failed to save favorite: %w", err)
	}

	publish(ctx, h.publisher, domain.FavoriteEvent{
		EventType: domain.EventTypeFavoriteSaved,
		UserID:    stored.UserID,
		MovieID:   stored.MovieID,
		Rating:    stored.Rating,
		Note:      stored.Note,
	})

	return stored, nil
}
