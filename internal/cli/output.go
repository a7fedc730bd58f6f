package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/tair/movie-favorites/internal/catalog"
	"github.com/tair/movie-favorites/internal/engine"
	"github.com/tair/movie-favorites/internal/favorite/domain"
	"github.com/tair/movie-favorites/internal/remote"
)

// StatusOutput is the JSON shape of the status command.
type StatusOutput struct {
	UserID    string `json:"userId"`
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`
	Loaded    bool   `json:"loaded"`
	Hydrated  bool   `json:"hydrated"`
	Favorites int    `json:"favorites"`

	API remote.Health `json:"api"`
}

// SearchResult is one search hit with its favorite flag.
type SearchResult struct {
	catalog.Movie
	Favorite  bool   `json:"favorite"`
	PosterURL string `json:"poster_url,omitempty"`
}

// FavoriteOutput is the JSON shape of one listed favorite.
type FavoriteOutput struct {
	domain.Favorite
	PosterURL string `json:"poster_url,omitempty"`
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeFavorites(w io.Writer, format string, favorites []domain.Favorite) error {
	if format == "json" {
		out := make([]FavoriteOutput, 0, len(favorites))
		for _, f := range favorites {
			out = append(out, FavoriteOutput{Favorite: f, PosterURL: catalog.PosterURL("", f.PosterPath)})
		}
		return writeJSON(w, out)
	}

	if len(favorites) == 0 {
		_, err := fmt.Fprintln(w, "No favorites yet.")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tRATING\tTITLE\tYEAR\tNOTE")
	for _, f := range favorites {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", f.MovieID, stars(f.Rating), f.Title, year(f.ReleaseDate), f.Note)
	}
	return tw.Flush()
}

func writeStatus(w io.Writer, format string, userID string, snap engine.Snapshot, count int, health remote.Health) error {
	out := StatusOutput{
		UserID:    userID,
		Status:    string(snap.Status),
		Error:     snap.Error,
		Loaded:    snap.Loaded,
		Hydrated:  snap.Hydrated,
		Favorites: count,
		API:       health,
	}
	if format == "json" {
		return writeJSON(w, out)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "User:\t%s\n", orDash(out.UserID))
	fmt.Fprintf(tw, "Sync:\t%s\n", out.Status)
	if out.Error != "" {
		fmt.Fprintf(tw, "Error:\t%s\n", out.Error)
	}
	fmt.Fprintf(tw, "Favorites:\t%d\n", out.Favorites)
	fmt.Fprintf(tw, "API:\t%s\n", describeHealth(health))
	return tw.Flush()
}

func writeSearch(w io.Writer, format string, results []SearchResult) error {
	if format == "json" {
		if results == nil {
			results = []SearchResult{}
		}
		for i := range results {
			results[i].PosterURL = catalog.PosterURL("", results[i].PosterPath)
		}
		return writeJSON(w, results)
	}

	if len(results) == 0 {
		_, err := fmt.Fprintln(w, "No movies found.")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "\tID\tTITLE\tYEAR\tVOTE")
	for _, r := range results {
		mark := ""
		if r.Favorite {
			mark = "*"
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%.1f\n", mark, r.ID, r.Title, year(r.ReleaseDate), r.VoteAverage)
	}
	return tw.Flush()
}

func writeEvent(w io.Writer, format string, event domain.FavoriteEvent) error {
	if format == "json" {
		return json.NewEncoder(w).Encode(event)
	}
	line := fmt.Sprintf("%s %s user=%s movie=%d",
		event.Timestamp.UTC().Format("2006-01-02T15:04:05Z"), event.EventType, event.UserID, event.MovieID)
	if event.Rating > 0 {
		line += " rating=" + strconv.Itoa(event.Rating)
	}
	if event.Note != nil {
		line += " note=" + strconv.Quote(*event.Note)
	}
	_, err := fmt.Fprintln(w, line)
	return err
}

func stars(rating int) string {
	if rating < 0 {
		rating = 0
	}
	if rating > domain.MaxRating {
		rating = domain.MaxRating
	}
	return strings.Repeat("★", rating) + strings.Repeat("☆", domain.MaxRating-rating)
}

func year(releaseDate string) string {
	if len(releaseDate) < 4 {
		return "-"
	}
	return releaseDate[:4]
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func describeHealth(h remote.Health) string {
	if h.Database == "" {
		return h.Status
	}
	return fmt.Sprintf("%s (database %s, cache %s, %dms)", h.Status, h.Database, h.Cache, h.LatencyMS)
}
