package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/wesm/askvault/internal/config"
	"github.com/wesm/askvault/internal/logging"
	"github.com/wesm/askvault/internal/store"
)

var (
	homeFlag string
	verbose  bool

	cfg    *config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "devdata",
	Short: "Manage askvault development datasets",
	Long: `devdata creates, inspects and converts askvault datasets: synthetic JSON
records, DuckDB validation reports, SQLite snapshots and their subsets, and
imports from .eml files.

Defaults come from the askvault config in the home directory.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if envHome := os.Getenv(config.HomeEnv); envHome != "" && !cmd.Flags().Changed("home") {
			fmt.Fprintf(os.Stderr, "devdata: note: %s is set to %q; defaults are read from there.\n", config.HomeEnv, envHome)
		}
		var err error
		cfg, err = config.Load("", homeFlag)
		if err != nil {
			return err
		}
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		logger = logging.New(os.Stderr, cfg.Log.Format, level)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&homeFlag, "home", "", "askvault home directory (default: $"+config.HomeEnv+" or ~/.askvault)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// dataPaths returns the configured data file names inside dir, or inside
// the configured data directory when dir is empty.
func dataPaths(dir string) store.Paths {
	if dir == "" {
		dir = cfg.Data.Dir
	}
	metadata := cfg.Data.MetadataFile
	if metadata == "" {
		metadata = config.Default("").Data.MetadataFile
	}
	return store.DirPaths(dir, cfg.Data.MessagesFile, cfg.Data.EventsFile, metadata)
}

// snapshotPath returns the configured SQLite snapshot, or the default
// location in the home directory.
func snapshotPath() string {
	if cfg.Data.SQLitePath != "" {
		return cfg.Data.SQLitePath
	}
	return filepath.Join(cfg.HomeDir, "askvault.db")
}

// absPath resolves p against the working directory.
func absPath(p string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", p, err)
	}
	return abs, nil
}
