package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/tair/movie-favorites/internal/favorite/domain"
	"github.com/tair/movie-favorites/kafka"
)

// EventsOptions holds flags for the events command.
type EventsOptions struct {
	*RootOptions
	Brokers       []string
	Group         string
	FromBeginning bool
}

// NewEventsCommand creates the events command, which tails the favorite
// change events published by the API.
func NewEventsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &EventsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "events",
		Short: "Follow favorite change events from Kafka",
		Long: `Follow favorite change events from Kafka until interrupted.

Example:
  favorites events --brokers localhost:9092 --from-beginning`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(opts.Brokers) == 0 {
				return errors.New("at least one --brokers address is required")
			}
			consumer, err := kafka.NewConsumer(opts.Brokers, opts.Group, opts.FromBeginning)
			if err != nil {
				return err
			}
			defer consumer.Close()

			printEvent := func(ctx context.Context, event domain.FavoriteEvent) error {
				return writeEvent(cmd.OutOrStdout(), opts.Format, event)
			}
			for _, eventType := range []string{
				domain.EventTypeFavoriteSaved,
				domain.EventTypeFavoriteUpdated,
				domain.EventTypeFavoriteDeleted,
			} {
				consumer.RegisterHandler(eventType, printEvent)
			}
			return consumer.Run(cmd.Context())
		},
	}

	cmd.Flags().StringSliceVar(&opts.Brokers, "brokers", nil, "Kafka broker addresses")
	cmd.Flags().StringVar(&opts.Group, "group", "favorites-cli", "consumer group id")
	cmd.Flags().BoolVar(&opts.FromBeginning, "from-beginning", false, "start from the oldest retained event")

	return cmd
}
