package domain

import "context"

// FavoriteRepository defines the contract for favorite data access
type FavoriteRepository interface {
	// ListByUser returns the user's favorites, most recently updated first.
	ListByUser(ctx context.Context, userID string) ([]FavoriteRow, error)
	// Upsert inserts or replaces the row keyed by (UserID, MovieID) and
	// returns the stored state.
	Upsert(ctx context.Context, row *FavoriteRow) (*FavoriteRow, error)
	// Patch applies a partial update; ErrNotFound when the row is absent.
	Patch(ctx context.Context, userID string, movieID int64, patch Patch) (*FavoriteRow, error)
	// Delete removes the row; ErrNotFound when absent.
	Delete(ctx context.Context, userID string, movieID int64) error
}
