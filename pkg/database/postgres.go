package database

import (
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/tair/movie-favorites/pkg/logger"
)

// ErrNotConfigured is returned when neither DATABASE_URL nor DB_HOST is set.
var ErrNotConfigured = errors.New("database is not configured")

// Config holds database configuration
type Config struct {
	Driver   string // "postgres" (default) or "sqlite"
	URL      string // full DSN; takes precedence over the discrete fields
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// Configured reports whether enough is set to attempt a connection.
func (c Config) Configured() bool {
	if c.Driver == "sqlite" {
		return c.URL != "" || c.DBName != ""
	}
	return c.URL != "" || c.Host != ""
}

// DSN builds the connection string for the configured driver.
func (c Config) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	if c.Driver == "sqlite" {
		return c.DBName
	}
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// NewGormConnection opens a GORM connection. Postgres goes through the
// lib/pq database/sql driver.
func NewGormConnection(cfg Config) (*gorm.DB, error) {
	if !cfg.Configured() {
		return nil, ErrNotConfigured
	}

	var dialector gorm.Dialector
	switch cfg.Driver {
	case "sqlite":
		dialector = sqlite.Open(cfg.DSN())
	case "", "postgres":
		dialector = postgres.New(postgres.Config{
			DriverName: "postgres",
			DSN:        cfg.DSN(),
		})
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Error),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	// Configure connection pool
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)
	if cfg.Driver == "sqlite" {
		sqlDB.SetMaxOpenConns(1)
	}

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Logger.Info().
		Str("driver", cfg.driverName()).
		Msg("Successfully connected to database")
	return db, nil
}

func (c Config) driverName() string {
	if c.Driver == "" {
		return "postgres"
	}
	return c.Driver
}
