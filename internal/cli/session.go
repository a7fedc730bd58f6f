package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/tair/movie-favorites/internal/engine"
	"github.com/tair/movie-favorites/internal/localstore"
	"github.com/tair/movie-favorites/internal/remote"
	"github.com/tair/movie-favorites/pkg/logger"
)

// Breaker settings for the favorites API client
const (
	breakerMaxFailures = 3
	breakerTimeout     = 30 * time.Second
)

// session is one engine run: start, hydrate, mutate, flush, close.
type session struct {
	opts   *RootOptions
	store  *localstore.Store
	client *remote.Client
	engine *engine.Engine
}

func openStore(path string) (*localstore.Store, error) {
	kv, err := localstore.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open state %s: %w", path, err)
	}
	return localstore.NewStore(kv), nil
}

func openSession(ctx context.Context, opts *RootOptions) (*session, error) {
	store, err := openStore(opts.StatePath)
	if err != nil {
		return nil, err
	}

	client := remote.NewClient(opts.APIURL,
		remote.WithCircuitBreaker(remote.NewCircuitBreaker(breakerMaxFailures, breakerTimeout)),
	)
	eng := engine.New(engine.Options{Local: store, Remote: client})
	if err := eng.Start(ctx); err != nil {
		_ = store.Close()
		return nil, err
	}

	waitCtx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()
	if err := eng.WaitHydrated(waitCtx); err != nil {
		logger.Warn(ctx).Err(err).Msg("Favorites API did not answer in time, using local state")
	}

	return &session{opts: opts, store: store, client: client, engine: eng}, nil
}

// close waits for queued remote writes up to the timeout and releases the
// engine and the store.
func (s *session) close(ctx context.Context) error {
	flushCtx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()
	if err := s.engine.Flush(flushCtx); err != nil {
		logger.Warn(ctx).Err(err).Msg("Pending favorite changes were not mirrored")
	}
	return errors.Join(s.engine.Close(), s.store.Close())
}

// warnIfOffline reports the sync error, if any, on w.
func (s *session) warnIfOffline(w io.Writer) {
	snap := s.engine.Status()
	if snap.Status == engine.StatusOffline && snap.Error != "" {
		fmt.Fprintf(w, "warning: %s\n", snap.Error)
	}
}

// withSession runs fn against a started engine and always closes it.
func withSession(ctx context.Context, opts *RootOptions, errOut io.Writer, fn func(*session) error) (err error) {
	s, err := openSession(ctx, opts)
	if err != nil {
		return err
	}
	defer func() {
		closeErr := s.close(ctx)
		s.warnIfOffline(errOut)
		if err == nil {
			err = closeErr
		}
	}()
	return fn(s)
}
