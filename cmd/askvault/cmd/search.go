package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wesm/askvault/internal/render"
	"github.com/wesm/askvault/internal/search"
)

var searchJSON bool

var searchCmd = &cobra.Command{
	Use:   "search <filter>",
	Short: "List records matching an operator filter",
	Long: `List records matching an operator-style filter instead of a free-text
question. Every operator and term must match.

Operators:
  kind:message|event   from:  to:  cc:   subject:  title:   team:  topic:
  has:attachment       after:YYYY-MM-DD  before:YYYY-MM-DD
  newer_than:7d        older_than:1m     (d, w, m, y)

Examples:
  askvault search "from:john.doe has:attachment newer_than:2w"
  askvault search 'kind:event to:maya.singh title:"onboarding sync"'`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		holder, _, err := openEngine(cmd.Context())
		if err != nil {
			return err
		}
		e := holder.Engine()
		text := strings.Join(args, " ")
		q := search.Parse(text, e.Now())
		if q.IsEmpty() {
			return fmt.Errorf("filter %q has no operators or terms", text)
		}
		out := e.List(q.Filter())
		out.Query = text

		if searchJSON {
			data, err := json.MarshalIndent(out, "", "  ")
			if err != nil {
				return fmt.Errorf("marshal outcome: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		}
		fmt.Fprint(cmd.OutOrStdout(), render.Block(out))
		return nil
	},
}

func init() {
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "print the outcome as JSON")
	rootCmd.AddCommand(searchCmd)
}
