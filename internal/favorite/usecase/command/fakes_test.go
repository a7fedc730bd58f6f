package command

import (
	"context"
	"errors"
	"strconv"
	"sync"

	"github.com/tair/movie-favorites/internal/favorite/domain"
)

type fakeRepo struct {
	mu   sync.Mutex
	rows map[string]domain.FavoriteRow
	err  error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{rows: map[string]domain.FavoriteRow{}}
}

func key(userID string, movieID int64) string {
	return userID + "/" + strconv.FormatInt(movieID, 10)
}

func (r *fakeRepo) ListByUser(_ context.Context, userID string) ([]domain.FavoriteRow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	var out []domain.FavoriteRow
	for _, row := range r.rows {
		if row.UserID == userID {
			out = append(out, row)
		}
	}
	return out, nil
}

func (r *fakeRepo) Upsert(_ context.Context, row *domain.FavoriteRow) (*domain.FavoriteRow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	stored := *row
	r.rows[key(row.UserID, row.MovieID)] = stored
	return &stored, nil
}

func (r *fakeRepo) Patch(_ context.Context, userID string, movieID int64, patch domain.Patch) (*domain.FavoriteRow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[key(userID, movieID)]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if patch.Rating != nil {
		row.Rating = *patch.Rating
	}
	if patch.Note != nil {
		if *patch.Note == "" {
			row.Note = nil
		} else {
			n := *patch.Note
			row.Note = &n
		}
	}
	r.rows[key(userID, movieID)] = row
	return &row, nil
}

func (r *fakeRepo) Delete(_ context.Context, userID string, movieID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[key(userID, movieID)]; !ok {
		return domain.ErrNotFound
	}
	delete(r.rows, key(userID, movieID))
	return nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []domain.FavoriteEvent
	err    error
}

func (p *fakePublisher) PublishFavoriteEvent(_ context.Context, event domain.FavoriteEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

var errBoom = errors.New("boom")

func strPtr(s string) *string     { return &s }
func floatPtr(f float64) *float64 { return &f }
