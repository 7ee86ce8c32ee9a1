package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wesm/askvault/internal/store"
)

var (
	exportDir string
	exportOut string
)

var exportSQLiteCmd = &cobra.Command{
	Use:   "export-sqlite",
	Short: "Write a JSON dataset to a SQLite snapshot",
	Long: `Load a JSON dataset and write it to a SQLite snapshot that askvault can
read through data.sqlite_path. An existing snapshot at --out is replaced.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := exportOut
		if out == "" {
			out = snapshotPath()
		}
		snap, err := store.Load(cmd.Context(), dataPaths(exportDir), logger)
		if err != nil {
			return err
		}
		if err := store.Export(cmd.Context(), out, snap); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Exported %d messages and %d events to %s\n",
			snap.Messages.Len(), snap.Events.Len(), out)
		return nil
	},
}

func init() {
	exportSQLiteCmd.Flags().StringVar(&exportDir, "dir", "", "dataset directory (default: configured data directory)")
	exportSQLiteCmd.Flags().StringVar(&exportOut, "out", "", "snapshot file (default: data.sqlite_path or <home>/askvault.db)")
	rootCmd.AddCommand(exportSQLiteCmd)
}
