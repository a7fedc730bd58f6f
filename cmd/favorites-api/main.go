package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"

	"github.com/tair/movie-favorites/internal/config"
	"github.com/tair/movie-favorites/internal/favorite"
	httpDelivery "github.com/tair/movie-favorites/internal/favorite/delivery/http"
	"github.com/tair/movie-favorites/internal/favorite/domain"
	"github.com/tair/movie-favorites/kafka"
	"github.com/tair/movie-favorites/pkg/database"
	"github.com/tair/movie-favorites/pkg/logger"
	"github.com/tair/movie-favorites/pkg/tracing"
)

const serviceVersion = "1.0.0"

func main() {
	cfg := config.LoadServerConfig()

	// Initialize logger
	logger.Init(cfg.ServiceName, cfg.IsDevelopment())
	logger.SetLevel(cfg.LogLevel)

	logger.Logger.Info().
		Str("service", cfg.ServiceName).
		Str("environment", cfg.Environment).
		Str("log_level", cfg.LogLevel).
		Msg("Starting favorites service")

	// Initialize tracer
	tp, err := tracing.InitTracer(cfg.ServiceName, serviceVersion, cfg.JaegerEndpoint)
	if err != nil {
		logger.Logger.Error().Err(err).Msg("Failed to initialize tracer")
	} else {
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tracing.Shutdown(ctx, tp); err != nil {
				logger.Logger.Error().Err(err).Msg("Failed to shutdown tracer")
			}
		}()
	}

	redisClient := connectRedis(cfg)
	if redisClient != nil {
		defer redisClient.Close()
	}

	router := mux.NewRouter()
	limiter := httpDelivery.NewRateLimiter(redisClient, cfg.RateLimitPerMinute, time.Minute)
	httpDelivery.RegisterMiddlewares(router, httpDelivery.DefaultMiddlewareConfig(limiter))

	var (
		handler *httpDelivery.FavoriteHandler
		sqlDB   *sql.DB
	)
	if !cfg.Database.Configured() {
		logger.Logger.Warn().Msg("Database is not configured, favorites endpoints will answer 503")
		handler = httpDelivery.NewUnconfiguredHandler(httpDelivery.NewMetrics(prometheus.DefaultRegisterer))
	} else {
		db, err := database.NewGormConnection(cfg.Database)
		if err != nil {
			logger.Logger.Fatal().Err(err).Msg("Failed to connect to database")
		}

		sqlDB, err = db.DB()
		if err != nil {
			logger.Logger.Fatal().Err(err).Msg("Failed to get database instance")
		}
		defer sqlDB.Close()

		// Run migrations
		if err := db.AutoMigrate(&domain.FavoriteRow{}); err != nil {
			logger.Logger.Fatal().Err(err).Msg("Failed to run migrations")
		}
		logger.Logger.Info().Msg("Database initialized successfully")

		publisher := connectKafka(cfg)
		if closer, ok := publisher.(*kafka.Publisher); ok {
			defer closer.Close()
		}

		// Initialize handler with Wire DI
		handler, err = favorite.InitializeHTTPHandler(db, redisClient, cfg.CacheTTL, publisher, prometheus.DefaultRegisterer)
		if err != nil {
			logger.Logger.Fatal().Err(err).Msg("Failed to initialize handler")
		}
	}

	handler.RegisterRoutes(router)
	handler.RegisterHealthCheck(router, sqlDB, redisClient)
	httpDelivery.RegisterSwaggerDocs(router)

	// Prometheus metrics endpoint
	router.Handle("/metrics", promhttp.Handler())

	// CORS middleware
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           c.Handler(router),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Logger.Info().
			Str("port", cfg.Port).
			Str("metrics_endpoint", "/metrics").
			Str("swagger", "/swagger/index.html").
			Msg("HTTP server started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Logger.Fatal().Err(err).Msg("Failed to start HTTP server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Logger.Info().Msg("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Logger.Error().Err(err).Msg("Server shutdown failed")
	}
}

// connectRedis returns nil when Redis is not configured or unreachable; the
// list cache and rate limiter are then disabled.
func connectRedis(cfg *config.ServerConfig) *redis.Client {
	if cfg.RedisAddr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Logger.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("Redis unavailable, cache and rate limiting disabled")
		_ = client.Close()
		return nil
	}
	logger.Logger.Info().Str("addr", cfg.RedisAddr).Msg("Redis connected")
	return client
}

// connectKafka returns a nil publisher when no brokers are configured or the
// producer cannot be created; events are then not emitted.
func connectKafka(cfg *config.ServerConfig) domain.EventPublisher {
	if len(cfg.KafkaBrokers) == 0 {
		return nil
	}
	publisher, err := kafka.NewPublisher(cfg.KafkaBrokers)
	if err != nil {
		logger.Logger.Warn().Err(err).Msg("Kafka unavailable, favorite events disabled")
		return nil
	}
	return publisher
}
