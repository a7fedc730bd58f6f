package localstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tair/movie-favorites/internal/favorite/domain"
)

func backends(t *testing.T) map[string]KV {
	t.Helper()
	dir := t.TempDir()

	sqliteKV, err := OpenSQLite(filepath.Join(dir, "state.db"))
	require.NoError(t, err)
	fileKV, err := OpenFile(filepath.Join(dir, "state.json"))
	require.NoError(t, err)

	t.Cleanup(func() { _ = sqliteKV.Close() })
	return map[string]KV{
		"memory": NewMemoryKV(),
		"sqlite": sqliteKV,
		"file":   fileKV,
	}
}

func TestKV_GetSet(t *testing.T) {
	ctx := context.Background()
	for name, kv := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := kv.Get(ctx, "missing")
			assert.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, kv.Set(ctx, "k", []byte("v1")))
			require.NoError(t, kv.Set(ctx, "k", []byte("v2")))
			require.NoError(t, kv.Set(ctx, "other", []byte(`{"x":1}`)))

			got, err := kv.Get(ctx, "k")
			require.NoError(t, err)
			assert.Equal(t, "v2", string(got))

			got, err = kv.Get(ctx, "other")
			require.NoError(t, err)
			assert.Equal(t, `{"x":1}`, string(got))
		})
	}
}

func TestStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	saved := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	poster := "/p.jpg"

	for name, kv := range backends(t) {
		t.Run(name, func(t *testing.T) {
			store := NewStore(kv)

			favs, err := store.LoadFavorites(ctx)
			require.NoError(t, err)
			assert.Empty(t, favs)

			id, err := store.UserID(ctx)
			require.NoError(t, err)
			assert.Equal(t, "", id)

			want := []domain.Favorite{
				{MovieID: 42, Title: "Alien", PosterPath: &poster, Rating: 5, Note: "n", SavedAt: saved},
				{MovieID: 7, Title: "Heat", Rating: 3, SavedAt: saved.Add(-time.Hour)},
			}
			require.NoError(t, store.SaveFavorites(ctx, want))
			require.NoError(t, store.SetUserID(ctx, "guest_abc"))

			got, err := store.LoadFavorites(ctx)
			require.NoError(t, err)
			assert.Equal(t, want, got)

			id, err = store.UserID(ctx)
			require.NoError(t, err)
			assert.Equal(t, "guest_abc", id)
		})
	}
}

func TestStore_PersistedShape(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	store := NewStore(kv)

	require.NoError(t, store.SaveFavorites(ctx, []domain.Favorite{
		{MovieID: 1, Title: "t", Rating: 3, SavedAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)},
	}))

	raw, err := kv.Get(ctx, FavoritesKey)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":1,"title":"t","poster_path":null,"release_date":"","overview":"","rating":3,"note":"","savedAt":"2024-01-02T03:04:05Z"}]`, string(raw))

	require.NoError(t, store.SaveFavorites(ctx, nil))
	raw, err = kv.Get(ctx, FavoritesKey)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(raw))
}

func TestStore_CorruptFavorites(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	require.NoError(t, kv.Set(ctx, FavoritesKey, []byte("not json")))

	_, err := NewStore(kv).LoadFavorites(ctx)
	assert.Error(t, err)
}

func TestStore_ClampsStoredRatings(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	require.NoError(t, kv.Set(ctx, FavoritesKey, []byte(`[{"id":1,"title":"t","rating":9,"note":""}]`)))

	favs, err := NewStore(kv).LoadFavorites(ctx)
	require.NoError(t, err)
	require.Len(t, favs, 1)
	assert.Equal(t, 5, favs[0].Rating)
}

func TestFileKV_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "state.json")

	kv, err := OpenFile(path)
	require.NoError(t, err)
	require.NoError(t, kv.Set(ctx, UserIDKey, []byte("guest_1")))

	reopened, err := OpenFile(path)
	require.NoError(t, err)
	got, err := reopened.Get(ctx, UserIDKey)
	require.NoError(t, err)
	assert.Equal(t, "guest_1", string(got))
}

func TestFileKV_CorruptFileIsReplacedOnWrite(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte("{broken"), 0o644))

	kv, err := OpenFile(path)
	require.NoError(t, err)

	_, err = kv.Get(ctx, "k")
	assert.Error(t, err)

	require.NoError(t, kv.Set(ctx, "k", []byte("v")))
	got, err := kv.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", string(got))
}

func TestOpen_ChoosesBackendByExtension(t *testing.T) {
	dir := t.TempDir()

	kv, err := Open(filepath.Join(dir, "state.db"))
	require.NoError(t, err)
	assert.IsType(t, &SQLiteKV{}, kv)
	require.NoError(t, kv.Close())

	kv, err = Open(filepath.Join(dir, "state.json"))
	require.NoError(t, err)
	assert.IsType(t, &FileKV{}, kv)

	_, err = Open("  ")
	assert.Error(t, err)
}

func TestStore_LenientRecords(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	require.NoError(t, kv.Set(ctx, FavoritesKey, []byte(`[
		{"id":42,"title":"Answer","poster_path":null,"release_date":"","overview":"","rating":5,"note":"","savedAt":"2024-01-01"},
		{"id":"bad","title":"Broken"},
		{"id":7,"title":"Heat","rating":3.6,"note":null,"savedAt":"2024-02-01T00:00:00Z"},
		{"id":9,"title":"Nano","savedAt":"2024-03-01T10:00:00.123456789Z"},
		{"id":11,"title":"Undated","rating":2,"savedAt":"yesterday"}
	]`)))

	favs, err := NewStore(kv).LoadFavorites(ctx)
	require.NoError(t, err)
	require.Len(t, favs, 4)

	assert.Equal(t, int64(42), favs[0].MovieID)
	assert.Equal(t, 5, favs[0].Rating)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), favs[0].SavedAt)

	assert.Equal(t, int64(7), favs[1].MovieID)
	assert.Equal(t, 4, favs[1].Rating)
	assert.Equal(t, "", favs[1].Note)
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), favs[1].SavedAt)

	assert.Equal(t, int64(9), favs[2].MovieID)
	assert.Equal(t, domain.DefaultRating, favs[2].Rating)
	assert.Equal(t, 123456789, favs[2].SavedAt.Nanosecond())

	assert.Equal(t, int64(11), favs[3].MovieID)
	assert.True(t, favs[3].SavedAt.IsZero())
}

func TestOpen_MemoryPath(t *testing.T) {
	kv, err := Open(MemoryPath)
	require.NoError(t, err)
	assert.IsType(t, &MemoryKV{}, kv)
}
