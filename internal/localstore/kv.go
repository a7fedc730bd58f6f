// Package localstore is the client's durable key/value persistence. It holds
// the favorites snapshot and the guest identity between runs.
package localstore

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// ErrNotFound is returned by KV.Get for an absent key.
var ErrNotFound = errors.New("key not found")

// KV is a durable string-keyed byte store.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Close() error
}

// MemoryPath selects the in-process backend. Nothing outlives the process.
const MemoryPath = ":memory:"

// Open picks a backend by file extension: ".db" or ".sqlite" opens SQLite,
// MemoryPath keeps state in memory, anything else is a JSON file.
func Open(path string) (KV, error) {
	if strings.TrimSpace(path) == MemoryPath {
		return NewMemoryKV(), nil
	}
	resolved, err := ExpandPath(path)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(filepath.Ext(resolved)) {
	case ".db", ".sqlite", ".sqlite3":
		return OpenSQLite(resolved)
	default:
		return OpenFile(resolved)
	}
}

// ExpandPath resolves a leading ~ and returns an absolute path.
func ExpandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", errors.New("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}

// MemoryKV is an in-process KV, used for --state :memory: runs and tests.
type MemoryKV struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryKV returns an empty MemoryKV
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{data: map[string][]byte{}}
}

func (m *MemoryKV) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (m *MemoryKV) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), value...)
	return nil
}

func (m *MemoryKV) Close() error { return nil }
