package engine

import (
	"slices"

	"github.com/tair/movie-favorites/internal/favorite/domain"
)

// Merge reconciles a local and a remote snapshot with last-write-wins on
// SavedAt. A local record replaces its remote counterpart only when it is
// strictly newer. The result is sorted newest first; ties keep remote order
// followed by local-only records in local order.
func Merge(local, remote []domain.Favorite) []domain.Favorite {
	merged := newCollection(remote)

	for _, l := range local {
		existing, ok := merged.get(l.MovieID)
		if !ok {
			merged.byID[l.MovieID] = l
			merged.order = append(merged.order, l.MovieID)
			continue
		}
		if l.SavedAt.After(existing.SavedAt) {
			merged.put(l)
		}
	}

	out := merged.list()
	slices.SortStableFunc(out, func(a, b domain.Favorite) int {
		return b.SavedAt.Compare(a.SavedAt)
	})
	return out
}

// LocalOnly returns the records of local whose movie id is absent from
// remote, in local order.
func LocalOnly(local, remote []domain.Favorite) []domain.Favorite {
	seen := make(map[int64]struct{}, len(remote))
	for _, r := range remote {
		seen[r.MovieID] = struct{}{}
	}
	var out []domain.Favorite
	for _, l := range local {
		if _, ok := seen[l.MovieID]; !ok {
			out = append(out, l)
		}
	}
	return out
}
