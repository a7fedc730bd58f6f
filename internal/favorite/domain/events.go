package domain

import (
	"context"
	"time"
)

// Favorite change event types
const (
	EventTypeFavoriteSaved   = "favorite.saved"
	EventTypeFavoriteUpdated = "favorite.updated"
	EventTypeFavoriteDeleted = "favorite.deleted"
)

// FavoriteEvent is emitted after every successful mutation on the API.
type FavoriteEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	UserID    string    `json:"user_id"`
	MovieID   int64     `json:"movie_id"`
	Rating    int       `json:"rating,omitempty"`
	Note      *string   `json:"note,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// EventPublisher delivers favorite events. Publishing is best-effort.
type EventPublisher interface {
	PublishFavoriteEvent(ctx context.Context, event FavoriteEvent) error
}
