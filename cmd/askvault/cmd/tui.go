package cmd

import (
	"github.com/spf13/cobra"

	"github.com/wesm/askvault/internal/tui"
)

var tuiWatch bool

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Browse answers in an interactive terminal UI",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		holder, factory, err := openEngine(ctx)
		if err != nil {
			return err
		}
		if tuiWatch {
			stop, err := startWatch(ctx, holder, factory)
			if err != nil {
				return err
			}
			defer stop()
		}
		return tui.Run(ctx, holder, logger)
	},
}

func init() {
	tuiCmd.Flags().BoolVar(&tuiWatch, "watch", false, "reload records when the data files change")
	rootCmd.AddCommand(tuiCmd)
}
