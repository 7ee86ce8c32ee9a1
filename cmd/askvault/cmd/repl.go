package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wesm/askvault/internal/fileutil"
	"github.com/wesm/askvault/internal/query"
	"github.com/wesm/askvault/internal/render"
)

var replWatch bool

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Ask questions interactively",
	Long: `Read questions from stdin, one per line, and print each answer. An empty
line exits.

When log.query_log is set in the config, every answer is also appended to
that file, each terminated by a line of "=" characters.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		holder, factory, err := openEngine(ctx)
		if err != nil {
			return err
		}
		if replWatch {
			stop, err := startWatch(ctx, holder, factory)
			if err != nil {
				return err
			}
			defer stop()
		}
		return runREPL(ctx, cmd.InOrStdin(), cmd.OutOrStdout(), holder, cfg.Log.QueryLog)
	},
}

func init() {
	replCmd.Flags().BoolVar(&replWatch, "watch", false, "reload records when the data files change")
	rootCmd.AddCommand(replCmd)
}

// runREPL answers each line of in until a blank line, EOF or ctx ends.
func runREPL(ctx context.Context, in io.Reader, out io.Writer, holder *query.Holder, queryLog string) error {
	fmt.Fprintln(out, "askvault: type a question (empty input to exit)")
	scanner := bufio.NewScanner(in)
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			break
		}
		o := holder.Engine().Ask(line)
		fmt.Fprintln(out, render.Block(o))
		if err := appendQueryLog(queryLog, render.LogEntry(o)); err != nil {
			return err
		}
	}
	return scanner.Err()
}

// appendQueryLog appends entry to the query log at path. An empty path
// disables logging.
func appendQueryLog(path, entry string) error {
	if path == "" {
		return nil
	}
	if err := fileutil.AppendFile(path, []byte(entry)); err != nil {
		return fmt.Errorf("write query log: %w", err)
	}
	return nil
}
