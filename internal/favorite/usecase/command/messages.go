package command

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tair/movie-favorites/internal/favorite/domain"
	"github.com/tair/movie-favorites/pkg/logger"
)

// Validation messages returned to API clients verbatim.
const (
	MsgMissingFields = "Missing required fields."
	MsgInvalidRating = "Rating must be between 1 and 5."
	MsgNothingToDo   = "Nothing to update."
)

func trimmed(p *string) *string {
	if p == nil {
		return nil
	}
	s := strings.TrimSpace(*p)
	if s == "" {
		return nil
	}
	return &s
}

func normalizeRating(raw float64) (int, error) {
	rating, err := domain.NormalizeRating(raw)
	if err != nil {
		return 0, domain.NewValidationError("rating", MsgInvalidRating)
	}
	return rating, nil
}

// publish sends the event without failing the caller.
func publish(ctx context.Context, publisher domain.EventPublisher, event domain.FavoriteEvent) {
	if publisher == nil {
		return
	}
	event.EventID = uuid.NewString()
	event.Timestamp = time.Now().UTC()
	if err := publisher.PublishFavoriteEvent(ctx, event); err != nil {
		logger.Warn(ctx).
			Err(err).
			Str("event_type", event.EventType).
			Str("user_id", event.UserID).
			Int64("movie_id", event.MovieID).
			Msg("Failed to publish favorite event")
	}
}
