// Package engine keeps a user's favorites consistent between the durable
// local store and the remote favorites API.
//
// Every mutation is applied to the in-memory collection and persisted
// locally before it returns. The remote write is queued and performed by a
// single background worker; its outcome only moves the sync status.
package engine

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/tair/movie-favorites/internal/catalog"
	"github.com/tair/movie-favorites/internal/favorite/domain"
	"github.com/tair/movie-favorites/pkg/logger"
)

var (
	// ErrNotStarted is returned by mutations issued before Start.
	ErrNotStarted = errors.New("engine not started")
	// ErrClosed is returned by every call after Close.
	ErrClosed = errors.New("engine closed")
)

// LocalStore persists the engine state between runs.
type LocalStore interface {
	LoadFavorites(ctx context.Context) ([]domain.Favorite, error)
	SaveFavorites(ctx context.Context, favorites []domain.Favorite) error
	// UserID returns "" when no identity has been stored.
	UserID(ctx context.Context) (string, error)
	SetUserID(ctx context.Context, userID string) error
}

// RemoteStore is the authoritative favorites service.
type RemoteStore interface {
	List(ctx context.Context, userID string) ([]domain.Favorite, error)
	CreateOrUpdate(ctx context.Context, userID string, fields domain.Fields) error
	Patch(ctx context.Context, userID string, movieID int64, patch domain.Patch) error
	Delete(ctx context.Context, userID string, movieID int64) error
}

// Patch is a partial update of a favorite. Nil fields are left unchanged.
type Patch struct {
	// Rating is rounded and clamped to [1,5]; non-finite values become 3.
	Rating *float64
	// Note replaces the note verbatim; "" clears it.
	Note *string
}

// Options configures an Engine.
type Options struct {
	Local  LocalStore
	Remote RemoteStore
	// NewUserID generates the guest identity on first run.
	NewUserID func() string
	Now       func() time.Time
	// Registerer receives the engine metrics; nil leaves them unregistered.
	Registerer prometheus.Registerer
}

// NewGuestID returns "guest_" followed by a random UUID.
func NewGuestID() string {
	return "guest_" + uuid.NewString()
}

// Engine owns the favorites state. It is safe for concurrent use.
type Engine struct {
	local     LocalStore
	remote    RemoteStore
	newUserID func() string
	now       func() time.Time
	metrics   *metrics

	ctx    context.Context
	cancel context.CancelFunc
	queue  *mirrorQueue
	wg     sync.WaitGroup

	hydratedOnce sync.Once
	hydratedCh   chan struct{}

	mu       sync.Mutex
	started  bool
	closed   bool
	col      *collection
	userID   string
	snapshot Snapshot
	subs     map[chan Snapshot]struct{}
}

// New creates an engine. Nothing is read or fetched until Start.
func New(opts Options) *Engine {
	if opts.NewUserID == nil {
		opts.NewUserID = NewGuestID
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Engine{
		local:      opts.Local,
		remote:     opts.Remote,
		newUserID:  opts.NewUserID,
		now:        opts.Now,
		metrics:    newMetrics(opts.Registerer),
		ctx:        ctx,
		cancel:     cancel,
		queue:      newMirrorQueue(),
		hydratedCh: make(chan struct{}),
		col:        newCollection(nil),
		snapshot:   Snapshot{Status: StatusIdle},
		subs:       map[chan Snapshot]struct{}{},
	}
}

// Start loads the local snapshot, establishes the user identity and begins
// hydration in the background. Cached favorites are readable as soon as
// Start returns. Calling Start again is a no-op.
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return ErrClosed
	}
	if e.started {
		return nil
	}
	e.started = true

	favorites, err := e.local.LoadFavorites(ctx)
	if err != nil {
		logger.Warn(ctx).Err(err).Msg("Could not read local favorites, starting empty")
		favorites = nil
	}
	e.col = newCollection(favorites)
	e.snapshot.Loaded = true
	e.snapshot.Version++

	userID, err := e.ensureUserID(ctx)
	if err != nil {
		logger.Warn(ctx).Err(err).Msg("Could not establish user identity, sync disabled")
		e.setStatusLocked(StatusOffline, MsgIdentityFailed)
		e.hydratedOnce.Do(func() { close(e.hydratedCh) })
		return nil
	}
	e.userID = userID
	e.setStatusLocked(StatusSyncing, "")

	e.wg.Add(2)
	go func() {
		defer e.wg.Done()
		e.queue.run(e.ctx, e.execute)
	}()
	go func() {
		defer e.wg.Done()
		e.hydrate(userID)
	}()

	logger.Debug(ctx).
		Str("user_id", userID).
		Int("favorites", e.col.len()).
		Msg("Favorites engine started")
	return nil
}

func (e *Engine) ensureUserID(ctx context.Context) (string, error) {
	existing, err := e.local.UserID(ctx)
	if err != nil {
		return "", err
	}
	if existing != "" {
		return existing, nil
	}
	generated := e.newUserID()
	if err := e.local.SetUserID(ctx, generated); err != nil {
		return "", err
	}
	return generated, nil
}

// hydrate fetches the remote snapshot and merges it into the current state.
func (e *Engine) hydrate(userID string) {
	defer e.hydratedOnce.Do(func() { close(e.hydratedCh) })

	remote, err := e.remote.List(e.ctx, userID)

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}

	e.snapshot.Hydrated = true
	if err != nil {
		e.metrics.hydrations.WithLabelValues("failure").Inc()
		logger.Warn(e.ctx).Err(err).Msg("Favorites hydration failed")
		e.setStatusLocked(StatusOffline, MsgHydrationFailed)
		return
	}

	current := e.col.list()
	for _, f := range LocalOnly(current, remote) {
		e.queue.push(mirrorJob{kind: jobCreate, userID: userID, movieID: f.MovieID, fields: f.Fields()})
	}

	e.col = newCollection(Merge(current, remote))
	e.snapshot.Version++
	e.persistLocked()

	e.metrics.hydrations.WithLabelValues("success").Inc()
	logger.Debug(e.ctx).
		Int("remote", len(remote)).
		Int("merged", e.col.len()).
		Msg("Favorites hydrated")
	e.setStatusLocked(StatusOnline, "")
}

// execute performs one mirror job and records the outcome in the status.
func (e *Engine) execute(ctx context.Context, j mirrorJob) {
	var err error
	switch j.kind {
	case jobCreate:
		err = e.remote.CreateOrUpdate(ctx, j.userID, j.fields)
	case jobPatch:
		err = e.remote.Patch(ctx, j.userID, j.movieID, j.patch)
	case jobDelete:
		err = e.remote.Delete(ctx, j.userID, j.movieID)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}

	if err != nil {
		e.metrics.mirrorJobs.WithLabelValues(string(j.kind), "failure").Inc()
		logger.Warn(ctx).
			Err(err).
			Str("operation", string(j.kind)).
			Int64("movie_id", j.movieID).
			Msg("Favorite mirror failed")
		e.setStatusLocked(StatusOffline, MsgMirrorFailed)
		return
	}
	e.metrics.mirrorJobs.WithLabelValues(string(j.kind), "success").Inc()
	e.setStatusLocked(StatusOnline, "")
}

// Add favorites movie with the default rating. Adding a movie that is
// already a favorite does nothing.
func (e *Engine) Add(movie catalog.Movie) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.usableLocked(); err != nil {
		return err
	}
	if e.col.has(movie.ID) {
		return nil
	}

	fav := domain.Favorite{
		MovieID:     movie.ID,
		Title:       movie.Title,
		PosterPath:  movie.PosterPath,
		ReleaseDate: movie.ReleaseDate,
		Overview:    movie.Overview,
		Rating:      domain.DefaultRating,
		Note:        "",
		SavedAt:     e.now(),
	}
	e.col.prepend(fav)
	e.changedLocked()
	e.mirrorLocked(mirrorJob{kind: jobCreate, movieID: fav.MovieID, fields: fav.Fields()})
	return nil
}

// Remove drops a favorite. Unknown ids are ignored.
func (e *Engine) Remove(movieID int64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.usableLocked(); err != nil {
		return err
	}
	if !e.col.has(movieID) {
		return nil
	}

	e.col.remove(movieID)
	e.changedLocked()
	e.mirrorLocked(mirrorJob{kind: jobDelete, movieID: movieID})
	return nil
}

// Update changes the rating and/or note of a favorite. An empty patch or an
// unknown id does nothing.
func (e *Engine) Update(movieID int64, patch Patch) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.usableLocked(); err != nil {
		return err
	}
	if patch.Rating == nil && patch.Note == nil {
		return nil
	}
	fav, ok := e.col.get(movieID)
	if !ok {
		return nil
	}

	var remote domain.Patch
	if patch.Rating != nil {
		rating := domain.ClampRating(*patch.Rating)
		fav.Rating = rating
		remote.Rating = &rating
	}
	if patch.Note != nil {
		note := *patch.Note
		fav.Note = note
		remote.Note = &note
	}

	e.col.put(fav)
	e.changedLocked()
	e.mirrorLocked(mirrorJob{kind: jobPatch, movieID: movieID, patch: remote})
	return nil
}

func (e *Engine) usableLocked() error {
	if e.closed {
		return ErrClosed
	}
	if !e.started {
		return ErrNotStarted
	}
	return nil
}

// changedLocked persists the collection and notifies subscribers.
func (e *Engine) changedLocked() {
	e.snapshot.Version++
	e.persistLocked()
	e.notifyLocked()
}

func (e *Engine) persistLocked() {
	if err := e.local.SaveFavorites(e.ctx, e.col.list()); err != nil {
		logger.Warn(e.ctx).Err(err).Msg("Could not persist favorites locally")
	}
}

// mirrorLocked queues j unless sync is disabled for lack of an identity.
func (e *Engine) mirrorLocked(j mirrorJob) {
	if e.userID == "" {
		return
	}
	j.userID = e.userID
	e.queue.push(j)
}

func (e *Engine) setStatusLocked(status SyncStatus, message string) {
	e.snapshot.Status = status
	e.snapshot.Error = message
	e.notifyLocked()
}

// IsFavorite reports whether movieID is in the collection.
func (e *Engine) IsFavorite(movieID int64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.col.has(movieID)
}

// Get returns one favorite.
func (e *Engine) Get(movieID int64) (domain.Favorite, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.col.get(movieID)
}

// Favorites returns a copy of the collection, most recent first.
func (e *Engine) Favorites() []domain.Favorite {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.col.list()
}

// Status returns the current snapshot.
func (e *Engine) Status() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshot
}

// UserID returns the guest identity, or "" before Start or when it could
// not be established.
func (e *Engine) UserID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.userID
}

// Subscribe returns a channel receiving the latest snapshot after every
// change. Slow readers only see the most recent value. The channel is closed
// by the returned cancel func or by Close.
func (e *Engine) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 1)

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		close(ch)
		return ch, func() {}
	}
	e.subs[ch] = struct{}{}
	ch <- e.snapshot

	return ch, func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		if _, ok := e.subs[ch]; ok {
			delete(e.subs, ch)
			close(ch)
		}
	}
}

func (e *Engine) notifyLocked() {
	snap := e.snapshot
	for ch := range e.subs {
		select {
		case ch <- snap:
		default:
			// Replace the stale value.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snap:
			default:
			}
		}
	}
}

// WaitHydrated blocks until hydration has finished or will never run.
func (e *Engine) WaitHydrated(ctx context.Context) error {
	select {
	case <-e.hydratedCh:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Flush blocks until every queued mirror job has completed.
func (e *Engine) Flush(ctx context.Context) error {
	e.mu.Lock()
	err := e.usableLocked()
	e.mu.Unlock()
	if err != nil {
		return err
	}
	return e.queue.wait(ctx)
}

// Close stops hydration and the mirror worker and discards pending jobs.
// Status changes that complete afterwards are dropped.
func (e *Engine) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	e.cancel()
	if n := e.queue.discard(); n > 0 {
		logger.Warn(e.ctx).Int("jobs", n).Msg("Discarded pending favorite mirror jobs")
	}
	for ch := range e.subs {
		close(ch)
	}
	e.subs = map[chan Snapshot]struct{}{}
	e.mu.Unlock()

	e.wg.Wait()
	e.hydratedOnce.Do(func() { close(e.hydratedCh) })
	return nil
}
