// Package config loads the API server configuration from the environment.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/tair/movie-favorites/pkg/database"
	"github.com/tair/movie-favorites/pkg/tracing"
)

// ServerConfig holds configuration for cmd/favorites-api
type ServerConfig struct {
	Port        string
	ServiceName string
	Environment string
	LogLevel    string

	Database database.Config

	RedisAddr     string
	RedisPassword string
	CacheTTL      time.Duration

	// RateLimitPerMinute of 0 disables rate limiting
	RateLimitPerMinute int

	KafkaBrokers   []string
	JaegerEndpoint string
}

// IsDevelopment reports whether console logging should be used
func (c *ServerConfig) IsDevelopment() bool {
	return c.Environment == "development"
}

// LoadServerConfig loads the server configuration
func LoadServerConfig() *ServerConfig {
	return &ServerConfig{
		Port:        getEnv("HTTP_PORT", "8080"),
		ServiceName: getEnv("OTEL_SERVICE_NAME", "favorites-api"),
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		Database: database.Config{
			Driver:   getEnv("DB_DRIVER", "postgres"),
			URL:      os.Getenv("DATABASE_URL"),
			Host:     os.Getenv("DB_HOST"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "favoritesdb"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		RedisAddr:          os.Getenv("REDIS_ADDR"),
		RedisPassword:      os.Getenv("REDIS_PASSWORD"),
		CacheTTL:           getEnvDuration("CACHE_TTL", 5*time.Minute),
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 120),
		KafkaBrokers:       getEnvList("KAFKA_BROKERS"),
		JaegerEndpoint:     getEnv("JAEGER_ENDPOINT", tracing.DefaultEndpoint),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
