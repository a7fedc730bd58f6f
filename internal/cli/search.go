package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tair/movie-favorites/internal/catalog"
	"github.com/tair/movie-favorites/pkg/logger"
)

// NewSearchCommand creates the search command. Favorites are marked from
// the local state only; the favorites API is not contacted.
func NewSearchCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "search <query...>",
		Short: "Search TMDB for movies",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			query := strings.Join(args, " ")

			page, err := catalog.NewClient(opts.TMDBBaseURL, opts.TMDBKey).Search(ctx, query)
			if err != nil {
				return fmt.Errorf("search %q: %w", query, err)
			}

			favorite := map[int64]bool{}
			store, err := openStore(opts.StatePath)
			if err != nil {
				return err
			}
			defer store.Close()
			favs, err := store.LoadFavorites(ctx)
			if err != nil {
				logger.Warn(ctx).Err(err).Msg("Could not read local favorites")
			}
			for _, f := range favs {
				favorite[f.MovieID] = true
			}

			results := make([]SearchResult, 0, len(page.Results))
			for _, m := range page.Results {
				results = append(results, SearchResult{Movie: m, Favorite: favorite[m.ID]})
			}
			return writeSearch(cmd.OutOrStdout(), opts.Format, results)
		},
	}
}
