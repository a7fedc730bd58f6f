package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Configured(t *testing.T) {
	assert.False(t, Config{}.Configured())
	assert.True(t, Config{URL: "postgres://x"}.Configured())
	assert.True(t, Config{Host: "localhost"}.Configured())
	assert.False(t, Config{Driver: "sqlite"}.Configured())
	assert.True(t, Config{Driver: "sqlite", DBName: "favorites.db"}.Configured())
}

func TestConfig_DSN(t *testing.T) {
	cfg := Config{Host: "db", Port: "5432", User: "u", Password: "p", DBName: "favs", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=favs sslmode=disable", cfg.DSN())

	cfg.URL = "postgres://u:p@db/favs"
	assert.Equal(t, "postgres://u:p@db/favs", cfg.DSN())
}

func TestNewGormConnection_NotConfigured(t *testing.T) {
	_, err := NewGormConnection(Config{})
	require.ErrorIs(t, err, ErrNotConfigured)
}

func TestNewGormConnection_UnsupportedDriver(t *testing.T) {
	_, err := NewGormConnection(Config{Driver: "oracle", URL: "x"})
	require.Error(t, err)
}

func TestNewGormConnection_SQLite(t *testing.T) {
	db, err := NewGormConnection(Config{
		Driver: "sqlite",
		DBName: filepath.Join(t.TempDir(), "favorites.db"),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	defer sqlDB.Close()
	assert.NoError(t, sqlDB.Ping())
}
