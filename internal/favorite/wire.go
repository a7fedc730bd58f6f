//go:build wireinject
// +build wireinject

package favorite

import (
	"time"

	"github.com/google/wire"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/tair/movie-favorites/internal/favorite/delivery/http"
	"github.com/tair/movie-favorites/internal/favorite/domain"
	"github.com/tair/movie-favorites/internal/favorite/repository"
	"github.com/tair/movie-favorites/internal/favorite/usecase/command"
	"github.com/tair/movie-favorites/internal/favorite/usecase/query"
)

// ProvideFavoriteRepository layers tracing and the Redis list cache over GORM
func ProvideFavoriteRepository(db *gorm.DB, redisClient *redis.Client, cacheTTL time.Duration) domain.FavoriteRepository {
	var repo domain.FavoriteRepository = repository.NewGormFavoriteRepository(db)
	repo = repository.NewTracingFavoriteRepository(repo)
	return repository.NewCachedFavoriteRepository(repo, redisClient, cacheTTL)
}

// Command Handlers Providers
func ProvideSaveFavoriteHandler(repo domain.FavoriteRepository, publisher domain.EventPublisher) *command.SaveFavoriteHandler {
	return command.NewSaveFavoriteHandler(repo, publisher)
}

func ProvideUpdateFavoriteHandler(repo domain.FavoriteRepository, publisher domain.EventPublisher) *command.UpdateFavoriteHandler {
	return command.NewUpdateFavoriteHandler(repo, publisher)
}

func ProvideDeleteFavoriteHandler(repo domain.FavoriteRepository, publisher domain.EventPublisher) *command.DeleteFavoriteHandler {
	return command.NewDeleteFavoriteHandler(repo, publisher)
}

// Query Handlers Providers
func ProvideListFavoritesHandler(repo domain.FavoriteRepository) *query.ListFavoritesHandler {
	return query.NewListFavoritesHandler(repo)
}

// ProvideMetrics registers the API collectors on reg
func ProvideMetrics(reg prometheus.Registerer) *http.Metrics {
	return http.NewMetrics(reg)
}

// Wire sets
var RepositorySet = wire.NewSet(
	ProvideFavoriteRepository,
)

var CommandHandlerSet = wire.NewSet(
	ProvideSaveFavoriteHandler,
	ProvideUpdateFavoriteHandler,
	ProvideDeleteFavoriteHandler,
)

var QueryHandlerSet = wire.NewSet(
	ProvideListFavoritesHandler,
)

var AllHandlersSet = wire.NewSet(
	RepositorySet,
	CommandHandlerSet,
	QueryHandlerSet,
	ProvideMetrics,
)

// InitializeHTTPHandler initializes the favorites HTTP handler with all dependencies
func InitializeHTTPHandler(
	db *gorm.DB,
	redisClient *redis.Client,
	cacheTTL time.Duration,
	publisher domain.EventPublisher,
	reg prometheus.Registerer,
) (*http.FavoriteHandler, error) {
	wire.Build(
		AllHandlersSet,
		http.NewFavoriteHandlerWithDI,
	)
	return nil, nil
}
