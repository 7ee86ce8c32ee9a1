package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/wesm/askvault/internal/config"
	"github.com/wesm/askvault/internal/logging"
	"github.com/wesm/askvault/internal/query"
	"github.com/wesm/askvault/internal/store"
)

var (
	cfgFile  string
	homeFlag string
	verbose  bool

	cfg    *config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "askvault",
	Short: "Ask questions about your email and calendar records",
	Long: `askvault answers free-text questions such as "emails from john.doe last week"
or "meetings about onboarding and hiring" over a local store of messages and
calendar events.

Records are read from JSON files (or a SQLite snapshot) in the data directory
configured in ~/.askvault/config.toml.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgFile, homeFlag)
		if err != nil {
			return err
		}
		level, err := logging.ParseLevel(cfg.Log.Level)
		if err != nil {
			return err
		}
		if verbose {
			level = slog.LevelDebug
		}
		logger = logging.New(os.Stderr, cfg.Log.Format, level)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: <home>/config.toml)")
	rootCmd.PersistentFlags().StringVar(&homeFlag, "home", "", "askvault home directory (default: $"+config.HomeEnv+" or ~/.askvault)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// source describes where the configured records load from.
func source() store.Source {
	return store.Source{
		Paths: store.Paths{
			Messages: cfg.MessagesPath(),
			Events:   cfg.EventsPath(),
			Metadata: cfg.MetadataPath(),
		},
		SQLitePath: cfg.Data.SQLitePath,
	}
}

// engineFactory loads the record store and builds engines over it.
type engineFactory struct {
	src store.Source
	now func() time.Time
}

func newEngineFactory() (*engineFactory, error) {
	now, err := cfg.Now()
	if err != nil {
		return nil, err
	}
	return &engineFactory{src: source(), now: now}, nil
}

func (f *engineFactory) load(ctx context.Context) (*query.Snapshot, error) {
	return f.src.Load(ctx, logger)
}

func (f *engineFactory) engine(snap *query.Snapshot) *query.Engine {
	return query.NewEngine(snap, query.Options{Now: f.now, Logger: logger})
}

// openEngine loads the record store once. Startup errors abort the command
// before any query is served.
func openEngine(ctx context.Context) (*query.Holder, *engineFactory, error) {
	f, err := newEngineFactory()
	if err != nil {
		return nil, nil, err
	}
	snap, err := f.load(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("open record store: %w", err)
	}
	return query.NewHolder(f.engine(snap)), f, nil
}
