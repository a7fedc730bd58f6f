package domain

import (
	"time"
)

// FavoriteRow is the persisted server-side favorite, unique per
// (UserID, MovieID). Rows are hard-deleted.
type FavoriteRow struct {
	ID          uint    `gorm:"primaryKey"`
	UserID      string  `gorm:"size:128;not null;uniqueIndex:idx_favorites_user_movie,priority:1"`
	MovieID     int64   `gorm:"not null;uniqueIndex:idx_favorites_user_movie,priority:2"`
	Title       string  `gorm:"not null"`
	PosterPath  *string
	ReleaseDate *string
	Overview    *string
	Rating      int `gorm:"not null;default:3"`
	Note        *string
	CreatedAt   time.Time
	UpdatedAt   time.Time `gorm:"index"`
}

// TableName specifies the table name
func (FavoriteRow) TableName() string {
	return "favorites"
}

// Item serializes the row for the wire. The movie id is echoed as id.
func (r FavoriteRow) Item() Item {
	note := ""
	if r.Note != nil {
		note = *r.Note
	}
	createdAt := r.CreatedAt.UTC()
	updatedAt := r.UpdatedAt.UTC()
	return Item{
		ID:          r.MovieID,
		MovieID:     r.MovieID,
		Title:       r.Title,
		PosterPath:  r.PosterPath,
		ReleaseDate: r.ReleaseDate,
		Overview:    r.Overview,
		Rating:      r.Rating,
		Note:        &note,
		SavedAt:     &createdAt,
		CreatedAt:   &createdAt,
		UpdatedAt:   &updatedAt,
	}
}

// Favorite is the client-side record held by the sync engine and persisted
// in the local store. Note is never nil; "" means no note.
type Favorite struct {
	MovieID     int64     `json:"id"`
	Title       string    `json:"title"`
	PosterPath  *string   `json:"poster_path"`
	ReleaseDate string    `json:"release_date"`
	Overview    string    `json:"overview"`
	Rating      int       `json:"rating"`
	Note        string    `json:"note"`
	SavedAt     time.Time `json:"savedAt"`
}

// SameEntity reports whether a and b describe the same favorite. Only the
// movie id participates in identity.
func SameEntity(a, b Favorite) bool {
	return a.MovieID == b.MovieID
}

// Fields returns the create-or-update payload for f.
func (f Favorite) Fields() Fields {
	release := optional(f.ReleaseDate)
	overview := optional(f.Overview)
	return Fields{
		MovieID:     f.MovieID,
		Title:       f.Title,
		PosterPath:  f.PosterPath,
		ReleaseDate: release,
		Overview:    overview,
		Rating:      f.Rating,
		Note:        f.Note,
	}
}

// FromRemote maps a wire item to the client shape. The server's update time
// becomes SavedAt, the instant compared during merge.
func FromRemote(item Item) Favorite {
	id := item.MovieID
	if id == 0 {
		id = item.ID
	}

	fav := Favorite{
		MovieID:    id,
		Title:      item.Title,
		PosterPath: item.PosterPath,
		Rating:     ClampRating(float64(item.Rating)),
	}
	if item.ReleaseDate != nil {
		fav.ReleaseDate = *item.ReleaseDate
	}
	if item.Overview != nil {
		fav.Overview = *item.Overview
	}
	if item.Note != nil {
		fav.Note = *item.Note
	}

	switch {
	case item.UpdatedAt != nil:
		fav.SavedAt = *item.UpdatedAt
	case item.CreatedAt != nil:
		fav.SavedAt = *item.CreatedAt
	}
	return fav
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
