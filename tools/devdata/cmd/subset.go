package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/wesm/askvault/tools/devdata/dataset"
)

var (
	subsetSrc  string
	subsetOut  string
	subsetRows int
)

var subsetCmd = &cobra.Command{
	Use:   "subset",
	Short: "Copy the most recent records of a snapshot into a new dataset",
	Long: `Create a new dataset directory holding a SQLite snapshot with the --rows
most recent messages and events of the source snapshot, plus all metadata.
The home config.toml is copied alongside when present.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if subsetRows < 1 {
			return fmt.Errorf("--rows must be at least 1")
		}
		src := subsetSrc
		if src == "" {
			src = snapshotPath()
		}
		src, err := absPath(src)
		if err != nil {
			return err
		}
		dst, err := absPath(subsetOut)
		if err != nil {
			return err
		}
		if _, err := os.Lstat(dst); err == nil {
			return fmt.Errorf("destination %s already exists", dst)
		}

		result, err := dataset.CopySubset(cmd.Context(), src, dst, subsetRows)
		if err != nil {
			return err
		}
		home, err := absPath(cfg.HomeDir)
		if err != nil {
			return err
		}
		if err := dataset.CopyFileIfExists(filepath.Join(home, "config.toml"), filepath.Join(dst, "config.toml")); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Created %s in %s\n", dst, result.Elapsed.Round(time.Millisecond))
		fmt.Fprintf(out, "  messages:  %d\n", result.Messages)
		fmt.Fprintf(out, "  events:    %d (%d attendees)\n", result.Events, result.Attendees)
		fmt.Fprintf(out, "  metadata:  %d labels\n", result.Metadata)
		fmt.Fprintf(out, "  size:      %d bytes\n", result.DBSize)
		fmt.Fprintf(out, "\nUse it with: askvault --home %s (set data.sqlite_path = %q)\n",
			dst, filepath.Join(dst, dataset.SnapshotFile))
		return nil
	},
}

func init() {
	subsetCmd.Flags().StringVar(&subsetSrc, "src", "", "source snapshot (default: data.sqlite_path or <home>/askvault.db)")
	subsetCmd.Flags().StringVar(&subsetOut, "out", "", "destination directory (must not exist)")
	subsetCmd.Flags().IntVar(&subsetRows, "rows", 100, "number of most recent messages and events to copy")
	subsetCmd.MarkFlagRequired("out")
	rootCmd.AddCommand(subsetCmd)
}
