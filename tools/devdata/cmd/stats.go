package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wesm/askvault/tools/devdata/dataset"
)

var (
	statsDir string
	statsTop int
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print a validation report for a JSON dataset",
	Long: `Print record counts, the top senders and topics, the team distribution of
messages and the meeting types of events. The JSON files are queried in
place with DuckDB.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if statsTop < 1 {
			return fmt.Errorf("--top must be at least 1")
		}
		s, err := dataset.ComputeStats(cmd.Context(), dataPaths(statsDir), statsTop)
		if err != nil {
			return err
		}
		s.Write(cmd.OutOrStdout())
		return nil
	},
}

func init() {
	statsCmd.Flags().StringVar(&statsDir, "dir", "", "dataset directory (default: configured data directory)")
	statsCmd.Flags().IntVar(&statsTop, "top", 3, "number of senders and topics to rank")
	rootCmd.AddCommand(statsCmd)
}
