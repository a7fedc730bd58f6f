// Package cli implements the favorites command-line client.
package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tair/movie-favorites/internal/catalog"
	"github.com/tair/movie-favorites/internal/localstore"
	"github.com/tair/movie-favorites/pkg/logger"
)

// Defaults for the global flags
const (
	DefaultStatePath = "~/.config/movie-favorites/state.json"
	DefaultLogFile   = "~/.config/movie-favorites/favorites.log"
	DefaultAPIURL    = "http://localhost:8080"
	DefaultTimeout   = 10 * time.Second
)

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// RootOptions holds global flags for all commands. Values are resolved
// through viper, so FAVORITES_* environment variables and the optional
// config file apply as well.
type RootOptions struct {
	ConfigFile  string
	StatePath   string
	APIURL      string
	TMDBBaseURL string
	TMDBKey     string
	LogFile     string
	LogLevel    string
	Format      string
	Timeout     time.Duration

	logWriter io.WriteCloser
}

// NewRootCommand creates the root command for the favorites CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "favorites",
		Short: "Manage your favorite movies",
		Long: `Manage your favorite movies.

Favorites are kept in a local state file and mirrored to the favorites API
when it is reachable. Every change is saved locally first.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.resolve(v); err != nil {
				return err
			}
			return opts.initLogging()
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if opts.logWriter != nil {
				return opts.logWriter.Close()
			}
			return nil
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.ConfigFile, "config", "", "config file (yaml, toml or json)")
	flags.String("state", DefaultStatePath, "local state file; .db or .sqlite selects SQLite, :memory: keeps nothing")
	flags.String("api-url", DefaultAPIURL, "favorites API base URL")
	flags.String("tmdb-url", catalog.DefaultBaseURL, "TMDB API base URL")
	flags.String("tmdb-key", "", "TMDB API key")
	flags.String("log-file", DefaultLogFile, "log file")
	flags.String("log-level", "info", "log level (debug|info|warn|error)")
	flags.String("format", "text", "output format (json|text)")
	flags.Duration("timeout", DefaultTimeout, "how long to wait for the favorites API")

	_ = v.BindPFlags(flags)
	v.SetEnvPrefix("FAVORITES")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("tmdb-key", "FAVORITES_TMDB_KEY", "TMDB_API_KEY")

	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewAddCommand(opts))
	cmd.AddCommand(NewRemoveCommand(opts))
	cmd.AddCommand(NewRateCommand(opts))
	cmd.AddCommand(NewNoteCommand(opts))
	cmd.AddCommand(NewStatusCommand(opts))
	cmd.AddCommand(NewSearchCommand(opts))
	cmd.AddCommand(NewEventsCommand(opts))

	return cmd
}

func (o *RootOptions) resolve(v *viper.Viper) error {
	if o.ConfigFile != "" {
		v.SetConfigFile(o.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config %s: %w", o.ConfigFile, err)
		}
	}

	o.StatePath = v.GetString("state")
	o.APIURL = v.GetString("api-url")
	o.TMDBBaseURL = v.GetString("tmdb-url")
	o.TMDBKey = v.GetString("tmdb-key")
	o.LogFile = v.GetString("log-file")
	o.LogLevel = v.GetString("log-level")
	o.Format = v.GetString("format")
	o.Timeout = v.GetDuration("timeout")

	if !isValidFormat(o.Format) {
		return fmt.Errorf("invalid format %q: must be one of %v", o.Format, ValidFormats)
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	return nil
}

// initLogging sends logs to a rotated file so they never mix with output.
func (o *RootOptions) initLogging() error {
	path, err := localstore.ExpandPath(o.LogFile)
	if err != nil {
		return fmt.Errorf("log file: %w", err)
	}
	o.logWriter = logger.NewFileWriter(path)
	logger.InitWithWriter("favorites-cli", o.logWriter)
	logger.SetLevel(o.LogLevel)
	return nil
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
