package engine

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/tair/movie-favorites/internal/favorite/domain"
	"github.com/tair/movie-favorites/internal/localstore"
)

var errOffline = errors.New("connection refused")

type remoteCall struct {
	kind    jobKind
	userID  string
	movieID int64
	fields  domain.Fields
	patch   domain.Patch
}

// fakeRemote records writes and serves a canned List result.
type fakeRemote struct {
	mu        sync.Mutex
	items     []domain.Favorite
	listErr   error
	writeErr  error
	listGate  chan struct{}
	listCalls int
	calls     []remoteCall
}

func (f *fakeRemote) List(ctx context.Context, userID string) ([]domain.Favorite, error) {
	f.mu.Lock()
	f.listCalls++
	gate := f.listGate
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]domain.Favorite(nil), f.items...), nil
}

func (f *fakeRemote) record(c remoteCall) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, c)
	return f.writeErr
}

func (f *fakeRemote) CreateOrUpdate(_ context.Context, userID string, fields domain.Fields) error {
	return f.record(remoteCall{kind: jobCreate, userID: userID, movieID: fields.MovieID, fields: fields})
}

func (f *fakeRemote) Patch(_ context.Context, userID string, movieID int64, patch domain.Patch) error {
	return f.record(remoteCall{kind: jobPatch, userID: userID, movieID: movieID, patch: patch})
}

func (f *fakeRemote) Delete(_ context.Context, userID string, movieID int64) error {
	return f.record(remoteCall{kind: jobDelete, userID: userID, movieID: movieID})
}

func (f *fakeRemote) setWriteErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writeErr = err
}

func (f *fakeRemote) recorded() []remoteCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]remoteCall(nil), f.calls...)
}

func (f *fakeRemote) lists() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listCalls
}

// brokenIdentityStore fails every identity read.
type brokenIdentityStore struct {
	*localstore.Store
}

func (brokenIdentityStore) UserID(context.Context) (string, error) {
	return "", errors.New("storage disabled")
}

// failingSaveStore drops every write.
type failingSaveStore struct {
	*localstore.Store
}

func (failingSaveStore) SaveFavorites(context.Context, []domain.Favorite) error {
	return errors.New("disk full")
}

type fixture struct {
	engine *Engine
	remote *fakeRemote
	store  *localstore.Store
	now    time.Time
}

func newFixture(t *testing.T, remote *fakeRemote, seed []domain.Favorite) *fixture {
	t.Helper()
	store := localstore.NewStore(localstore.NewMemoryKV())
	if seed != nil {
		if err := store.SaveFavorites(context.Background(), seed); err != nil {
			t.Fatal(err)
		}
	}
	return newFixtureWithLocal(t, remote, store, store)
}

func newFixtureWithLocal(t *testing.T, remote *fakeRemote, local LocalStore, store *localstore.Store) *fixture {
	t.Helper()
	f := &fixture{
		remote: remote,
		store:  store,
		now:    time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	f.engine = New(Options{
		Local:     local,
		Remote:    remote,
		NewUserID: func() string { return "guest_test" },
		Now:       func() time.Time { return f.now },
	})
	t.Cleanup(func() { _ = f.engine.Close() })
	return f
}

func waitCtx(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func ptr[T any](v T) *T { return &v }
