package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wesm/askvault/internal/render"
)

var askJSON bool

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Answer one question and print the matching records",
	Long: `Answer one free-text question and print the matching records along with
the intent, entities, dates and search path the engine chose.

Examples:
  askvault ask "emails from john.doe last week"
  askvault ask "meetings about onboarding or hiring"
  askvault ask --json "events in conference room a"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		holder, _, err := openEngine(cmd.Context())
		if err != nil {
			return err
		}
		out := holder.Engine().Ask(strings.Join(args, " "))

		if askJSON {
			data, err := json.MarshalIndent(out, "", "  ")
			if err != nil {
				return fmt.Errorf("marshal outcome: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		}
		fmt.Fprint(cmd.OutOrStdout(), render.Block(out))
		return appendQueryLog(cfg.Log.QueryLog, render.LogEntry(out))
	},
}

func init() {
	askCmd.Flags().BoolVar(&askJSON, "json", false, "print the outcome as JSON")
	rootCmd.AddCommand(askCmd)
}
