package localstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tair/movie-favorites/internal/favorite/domain"
	"github.com/tair/movie-favorites/pkg/logger"
)

// Persisted keys
const (
	FavoritesKey = "movie_explorer_favorites_v1"
	UserIDKey    = "movie_explorer_user_id_v1"
)

// Store reads and writes the engine's persisted state on top of a KV.
type Store struct {
	kv KV
}

// NewStore wraps kv
func NewStore(kv KV) *Store {
	return &Store{kv: kv}
}

// LoadFavorites returns the persisted favorites. An absent key yields an
// empty list and a value that is not a JSON array yields an error. Records
// that cannot be read are skipped; the rest are kept.
func (s *Store) LoadFavorites(ctx context.Context) ([]domain.Favorite, error) {
	raw, err := s.kv.Get(ctx, FavoritesKey)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var records []json.RawMessage
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("decode favorites: %w", err)
	}

	favorites := make([]domain.Favorite, 0, len(records))
	for i, rec := range records {
		fav, err := decodeRecord(rec)
		if err != nil {
			logger.Warn(ctx).Err(err).Int("index", i).Msg("Skipping unreadable stored favorite")
			continue
		}
		favorites = append(favorites, fav)
	}
	return favorites, nil
}

// storedFavorite is the lenient on-disk shape. Older clients wrote savedAt
// as a bare date and ratings as fractional numbers.
type storedFavorite struct {
	MovieID     int64    `json:"id"`
	Title       string   `json:"title"`
	PosterPath  *string  `json:"poster_path"`
	ReleaseDate string   `json:"release_date"`
	Overview    string   `json:"overview"`
	Rating      *float64 `json:"rating"`
	Note        string   `json:"note"`
	SavedAt     string   `json:"savedAt"`
}

var savedAtLayouts = []string{time.RFC3339Nano, time.RFC3339, "2006-01-02"}

func decodeRecord(raw json.RawMessage) (domain.Favorite, error) {
	var rec storedFavorite
	if err := json.Unmarshal(raw, &rec); err != nil {
		return domain.Favorite{}, err
	}

	rating := domain.DefaultRating
	if rec.Rating != nil {
		rating = domain.ClampRating(*rec.Rating)
	}

	return domain.Favorite{
		MovieID:     rec.MovieID,
		Title:       rec.Title,
		PosterPath:  rec.PosterPath,
		ReleaseDate: rec.ReleaseDate,
		Overview:    rec.Overview,
		Rating:      rating,
		Note:        rec.Note,
		SavedAt:     parseSavedAt(rec.SavedAt),
	}, nil
}

// parseSavedAt returns the zero time for missing or unknown formats, which
// makes the record lose every merge tie-break against the server.
func parseSavedAt(value string) time.Time {
	value = strings.TrimSpace(value)
	for _, layout := range savedAtLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	return time.Time{}
}

// SaveFavorites persists the full list, replacing what was stored.
func (s *Store) SaveFavorites(ctx context.Context, favorites []domain.Favorite) error {
	if favorites == nil {
		favorites = []domain.Favorite{}
	}
	raw, err := json.Marshal(favorites)
	if err != nil {
		return fmt.Errorf("encode favorites: %w", err)
	}
	return s.kv.Set(ctx, FavoritesKey, raw)
}

// UserID returns the stored identity, or "" when none was saved yet.
func (s *Store) UserID(ctx context.Context) (string, error) {
	raw, err := s.kv.Get(ctx, UserIDKey)
	if errors.Is(err, ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(raw)), nil
}

// SetUserID persists the identity
func (s *Store) SetUserID(ctx context.Context, userID string) error {
	return s.kv.Set(ctx, UserIDKey, []byte(userID))
}

// Close releases the underlying KV
func (s *Store) Close() error {
	return s.kv.Close()
}
