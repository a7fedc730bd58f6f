package domain

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestFromRemote_DefaultsNullableFields(t *testing.T) {
	fav := FromRemote(Item{ID: 7, MovieID: 7, Title: "Heat", Rating: 9})

	assert.Equal(t, int64(7), fav.MovieID)
	assert.Equal(t, "Heat", fav.Title)
	assert.Nil(t, fav.PosterPath)
	assert.Equal(t, "", fav.ReleaseDate)
	assert.Equal(t, "", fav.Overview)
	assert.Equal(t, "", fav.Note)
	assert.Equal(t, 5, fav.Rating)
	assert.True(t, fav.SavedAt.IsZero())
}

func TestFromRemote_UsesUpdatedAtAsSavedAt(t *testing.T) {
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	updated := created.Add(48 * time.Hour)

	fav := FromRemote(Item{
		MovieID:     42,
		Title:       "Alien",
		PosterPath:  strPtr("/alien.jpg"),
		ReleaseDate: strPtr("1979-05-25"),
		Overview:    strPtr("In space..."),
		Rating:      4,
		Note:        strPtr("classic"),
		CreatedAt:   &created,
		UpdatedAt:   &updated,
	})

	assert.Equal(t, updated, fav.SavedAt)
	assert.Equal(t, "/alien.jpg", *fav.PosterPath)
	assert.Equal(t, "1979-05-25", fav.ReleaseDate)
	assert.Equal(t, "In space...", fav.Overview)
	assert.Equal(t, "classic", fav.Note)
	assert.Equal(t, 4, fav.Rating)

	onlyCreated := FromRemote(Item{MovieID: 1, Title: "x", Rating: 3, CreatedAt: &created})
	assert.Equal(t, created, onlyCreated.SavedAt)
}

func TestFromRemote_FallsBackToID(t *testing.T) {
	fav := FromRemote(Item{ID: 11, Title: "x", Rating: 3})
	assert.Equal(t, int64(11), fav.MovieID)
}

func TestSameEntity(t *testing.T) {
	a := Favorite{MovieID: 1, Title: "a", Rating: 1}
	b := Favorite{MovieID: 1, Title: "b", Rating: 5, Note: "n"}
	c := Favorite{MovieID: 2, Title: "a", Rating: 1}

	assert.True(t, SameEntity(a, b))
	assert.False(t, SameEntity(a, c))
}

func TestFavoriteRow_Item(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	row := FavoriteRow{UserID: "u", MovieID: 5, Title: "t", Rating: 2, CreatedAt: now, UpdatedAt: now}

	item := row.Item()
	assert.Equal(t, int64(5), item.ID)
	assert.Equal(t, int64(5), item.MovieID)
	require.NotNil(t, item.Note)
	assert.Equal(t, "", *item.Note)
	assert.Equal(t, now, *item.UpdatedAt)
}

func TestFavorite_Fields(t *testing.T) {
	f := Favorite{MovieID: 3, Title: "t", ReleaseDate: "", Overview: "o", Rating: 4, Note: "n"}
	fields := f.Fields()

	assert.Nil(t, fields.ReleaseDate)
	require.NotNil(t, fields.Overview)
	assert.Equal(t, "o", *fields.Overview)
	assert.Equal(t, 4, fields.Rating)
}

func TestValidationError_Is(t *testing.T) {
	err := fmt.Errorf("save: %w", NewValidationError("title", "is required"))
	assert.True(t, errors.Is(err, ErrValidation))
	assert.False(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, "save: title: is required", err.Error())
}

func TestPatch_Empty(t *testing.T) {
	assert.True(t, Patch{}.Empty())
	r := 2
	assert.False(t, Patch{Rating: &r}.Empty())
	assert.False(t, Patch{Note: strPtr("")}.Empty())
}
