package domain

import "time"

// Item is the JSON shape of a favorite on the wire.
type Item struct {
	ID          int64      `json:"id"`
	MovieID     int64      `json:"movieId"`
	Title       string     `json:"title"`
	PosterPath  *string    `json:"posterPath"`
	ReleaseDate *string    `json:"releaseDate"`
	Overview    *string    `json:"overview"`
	Rating      int        `json:"rating"`
	Note        *string    `json:"note"`
	SavedAt     *time.Time `json:"savedAt,omitempty"`
	CreatedAt   *time.Time `json:"createdAt,omitempty"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty"`
}

// Fields is the create-or-update payload for one favorite.
type Fields struct {
	MovieID     int64   `json:"movieId"`
	Title       string  `json:"title"`
	PosterPath  *string `json:"posterPath"`
	ReleaseDate *string `json:"releaseDate"`
	Overview    *string `json:"overview"`
	Rating      int     `json:"rating"`
	Note        string  `json:"note"`
}

// Patch is a partial update. At least one field must be set.
type Patch struct {
	Rating *int    `json:"rating,omitempty"`
	Note   *string `json:"note,omitempty"`
}

// Empty reports whether the patch carries no field.
func (p Patch) Empty() bool {
	return p.Rating == nil && p.Note == nil
}

// ListResponse is the body of GET /favorites.
type ListResponse struct {
	Items []Item `json:"items"`
}

// ItemResponse is the body of POST and PATCH /favorites.
type ItemResponse struct {
	Item Item `json:"item"`
}

// DeleteResponse is the body of DELETE /favorites.
type DeleteResponse struct {
	OK bool `json:"ok"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
}
