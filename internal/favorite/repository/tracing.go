package repository

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tair/movie-favorites/internal/favorite/domain"
)

var tracer = otel.Tracer("favorite-repository")

// TracingFavoriteRepository wraps a FavoriteRepository with tracing spans
type TracingFavoriteRepository struct {
	next domain.FavoriteRepository
}

// NewTracingFavoriteRepository creates a new repository with tracing
func NewTracingFavoriteRepository(next domain.FavoriteRepository) *TracingFavoriteRepository {
	return &TracingFavoriteRepository{next: next}
}

// ListByUser with tracing
func (r *TracingFavoriteRepository) ListByUser(ctx context.Context, userID string) ([]domain.FavoriteRow, error) {
	ctx, span := tracer.Start(ctx, "repository.ListByUser",
		trace.WithAttributes(attribute.String("favorite.user_id", userID)),
	)
	defer span.End()

	rows, err := r.next.ListByUser(ctx, userID)
	if err != nil {
		recordError(span, err)
		return nil, err
	}

	span.SetAttributes(attribute.Int("result.count", len(rows)))
	return rows, nil
}

// Upsert with tracing
func (r *TracingFavoriteRepository) Upsert(ctx context.Context, row *domain.FavoriteRow) (*domain.FavoriteRow, error) {
	ctx, span := tracer.Start(ctx, "repository.Upsert",
		trace.WithAttributes(
			attribute.String("favorite.user_id", row.UserID),
			attribute.Int64("favorite.movie_id", row.MovieID),
			attribute.Int("favorite.rating", row.Rating),
		),
	)
	defer span.End()

	stored, err := r.next.Upsert(ctx, row)
	if err != nil {
		recordError(span, err)
		return nil, err
	}
	return stored, nil
}

// Patch with tracing
func (r *TracingFavoriteRepository) Patch(ctx context.Context, userID string, movieID int64, patch domain.Patch) (*domain.FavoriteRow, error) {
	ctx, span := tracer.Start(ctx, "repository.Patch",
		trace.WithAttributes(
			attribute.String("favorite.user_id", userID),
			attribute.Int64("favorite.movie_id", movieID),
			attribute.Bool("patch.rating", patch.Rating != nil),
			attribute.Bool("patch.note", patch.Note != nil),
		),
	)
	defer span.End()

	row, err := r.next.Patch(ctx, userID, movieID, patch)
	if err != nil {
		recordError(span, err)
		return nil, err
	}
	return row, nil
}

// Delete with tracing
func (r *TracingFavoriteRepository) Delete(ctx context.Context, userID string, movieID int64) error {
	ctx, span := tracer.Start(ctx, "repository.Delete",
		trace.WithAttributes(
			attribute.String("favorite.user_id", userID),
			attribute.Int64("favorite.movie_id", movieID),
		),
	)
	defer span.End()

	if err := r.next.Delete(ctx, userID, movieID); err != nil {
		recordError(span, err)
		return err
	}
	return nil
}

func recordError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
