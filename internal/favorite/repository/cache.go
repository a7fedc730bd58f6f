package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tair/movie-favorites/internal/favorite/domain"
	"github.com/tair/movie-favorites/pkg/logger"
)

// DefaultCacheTTL bounds how long a cached list may be served.
const DefaultCacheTTL = 5 * time.Minute

// CachedFavoriteRepository caches ListByUser results in Redis and drops the
// user's entry on every mutation. A nil client disables caching.
type CachedFavoriteRepository struct {
	next  domain.FavoriteRepository
	redis *redis.Client
	ttl   time.Duration
}

// NewCachedFavoriteRepository wraps next with a Redis list cache
func NewCachedFavoriteRepository(next domain.FavoriteRepository, redisClient *redis.Client, ttl time.Duration) *CachedFavoriteRepository {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &CachedFavoriteRepository{next: next, redis: redisClient, ttl: ttl}
}

func listCacheKey(userID string) string {
	return fmt.Sprintf("favorites:list:%s", userID)
}

// ListByUser serves from cache when possible
func (r *CachedFavoriteRepository) ListByUser(ctx context.Context, userID string) ([]domain.FavoriteRow, error) {
	if r.redis == nil {
		return r.next.ListByUser(ctx, userID)
	}

	key := listCacheKey(userID)
	if cached, err := r.redis.Get(ctx, key).Bytes(); err == nil {
		var rows []domain.FavoriteRow
		if err := json.Unmarshal(cached, &rows); err == nil {
			logger.Debug(ctx).Str("cache_key", key).Msg("Cache hit")
			return rows, nil
		}
	}

	rows, err := r.next.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(rows); err == nil {
		if err := r.redis.Set(ctx, key, payload, r.ttl).Err(); err != nil {
			logger.Warn(ctx).Err(err).Str("cache_key", key).Msg("Failed to cache favorites")
		}
	}
	return rows, nil
}

// Upsert invalidates the user's cached list
func (r *CachedFavoriteRepository) Upsert(ctx context.Context, row *domain.FavoriteRow) (*domain.FavoriteRow, error) {
	stored, err := r.next.Upsert(ctx, row)
	r.invalidate(ctx, row.UserID)
	return stored, err
}

// Patch invalidates the user's cached list
func (r *CachedFavoriteRepository) Patch(ctx context.Context, userID string, movieID int64, patch domain.Patch) (*domain.FavoriteRow, error) {
	row, err := r.next.Patch(ctx, userID, movieID, patch)
	r.invalidate(ctx, userID)
	return row, err
}

// Delete invalidates the user's cached list
func (r *CachedFavoriteRepository) Delete(ctx context.Context, userID string, movieID int64) error {
	err := r.next.Delete(ctx, userID, movieID)
	r.invalidate(ctx, userID)
	return err
}

func (r *CachedFavoriteRepository) invalidate(ctx context.Context, userID string) {
	if r.redis == nil {
		return
	}
	key := listCacheKey(userID)
	if err := r.redis.Del(ctx, key).Err(); err != nil {
		logger.Warn(ctx).Err(err).Str("cache_key", key).Msg("Failed to invalidate cache")
	}
}
