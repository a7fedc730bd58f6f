package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tair/movie-favorites/internal/catalog"
	"github.com/tair/movie-favorites/internal/engine"
)

// ErrNotFavorite is returned when a command targets a movie that is not in
// the collection.
var ErrNotFavorite = errors.New("not a favorite")

// NewListCommand creates the list command.
func NewListCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List favorites, most recent first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd.Context(), opts, cmd.ErrOrStderr(), func(s *session) error {
				return writeFavorites(cmd.OutOrStdout(), opts.Format, s.engine.Favorites())
			})
		},
	}
}

// AddOptions holds flags for the add command.
type AddOptions struct {
	*RootOptions
	Title string
}

// NewAddCommand creates the add command.
func NewAddCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AddOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "add <movie-id>",
		Short: "Add a movie to favorites",
		Long: `Add a movie to favorites with the default rating.

The movie details are looked up in TMDB unless --title is given.

Example:
  favorites add 603
  favorites add 603 --title "The Matrix"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseMovieID(args[0])
			if err != nil {
				return err
			}
			movie, err := lookupMovie(cmd.Context(), opts, id)
			if err != nil {
				return err
			}
			return withSession(cmd.Context(), opts.RootOptions, cmd.ErrOrStderr(), func(s *session) error {
				if s.engine.IsFavorite(id) {
					fmt.Fprintf(cmd.OutOrStdout(), "%s is already a favorite\n", movie.Title)
					return nil
				}
				if err := s.engine.Add(*movie); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added %s (%d)\n", movie.Title, movie.ID)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&opts.Title, "title", "", "title to store instead of looking the movie up")

	return cmd
}

func lookupMovie(ctx context.Context, opts *AddOptions, id int64) (*catalog.Movie, error) {
	if title := strings.TrimSpace(opts.Title); title != "" {
		return &catalog.Movie{ID: id, Title: title}, nil
	}
	movie, err := catalog.NewClient(opts.TMDBBaseURL, opts.TMDBKey).Movie(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("look up movie %d: %w", id, err)
	}
	return movie, nil
}

// NewRemoveCommand creates the remove command.
func NewRemoveCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "remove <movie-id>",
		Aliases: []string{"rm"},
		Short:   "Remove a movie from favorites",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseMovieID(args[0])
			if err != nil {
				return err
			}
			return withSession(cmd.Context(), opts, cmd.ErrOrStderr(), func(s *session) error {
				fav, ok := s.engine.Get(id)
				if !ok {
					return fmt.Errorf("movie %d: %w", id, ErrNotFavorite)
				}
				if err := s.engine.Remove(id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %s (%d)\n", fav.Title, id)
				return nil
			})
		},
	}
}

// NewRateCommand creates the rate command.
func NewRateCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "rate <movie-id> <rating>",
		Short: "Rate a favorite from 1 to 5",
		Long: `Rate a favorite. The rating is rounded and clamped to 1..5.

Example:
  favorites rate 603 4`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseMovieID(args[0])
			if err != nil {
				return err
			}
			rating, err := strconv.ParseFloat(strings.TrimSpace(args[1]), 64)
			if err != nil {
				return fmt.Errorf("invalid rating %q", args[1])
			}
			return updateFavorite(cmd, opts, id, engine.Patch{Rating: &rating})
		},
	}
}

// NewNoteCommand creates the note command.
func NewNoteCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "note <movie-id> [text...]",
		Short: "Set or clear the note on a favorite",
		Long: `Set the note on a favorite. Without text the note is cleared.

Example:
  favorites note 603 "watch with the director's commentary"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseMovieID(args[0])
			if err != nil {
				return err
			}
			note := strings.Join(args[1:], " ")
			return updateFavorite(cmd, opts, id, engine.Patch{Note: &note})
		},
	}
}

func updateFavorite(cmd *cobra.Command, opts *RootOptions, id int64, patch engine.Patch) error {
	return withSession(cmd.Context(), opts, cmd.ErrOrStderr(), func(s *session) error {
		if !s.engine.IsFavorite(id) {
			return fmt.Errorf("movie %d: %w", id, ErrNotFavorite)
		}
		if err := s.engine.Update(id, patch); err != nil {
			return err
		}
		fav, _ := s.engine.Get(id)
		fmt.Fprintf(cmd.OutOrStdout(), "%s  %s", stars(fav.Rating), fav.Title)
		if fav.Note != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "  %q", fav.Note)
		}
		fmt.Fprintln(cmd.OutOrStdout())
		return nil
	})
}

// NewStatusCommand creates the status command.
func NewStatusCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the guest identity and sync status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context(), opts)
			if err != nil {
				return err
			}
			snap := s.engine.Status()
			count := len(s.engine.Favorites())
			userID := s.engine.UserID()

			probeCtx, cancel := context.WithTimeout(cmd.Context(), opts.Timeout)
			health, _ := s.client.Health(probeCtx)
			cancel()

			if err := s.close(cmd.Context()); err != nil {
				return err
			}
			return writeStatus(cmd.OutOrStdout(), opts.Format, userID, snap, count, health)
		},
	}
}

func parseMovieID(arg string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(arg), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid movie id %q", arg)
	}
	return id, nil
}
