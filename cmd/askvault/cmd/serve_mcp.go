package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wesm/askvault/internal/mcp"
)

var mcpWatch bool

var serveMCPCmd = &cobra.Command{
	Use:   "serve-mcp",
	Short: "Serve askvault tools over the Model Context Protocol (stdio)",
	Long: `Run an MCP server on stdin/stdout exposing the ask, get_record,
list_records and get_stats tools.

Add it to an MCP client configuration as:
  {"command": "askvault", "args": ["serve-mcp", "--watch"]}`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		holder, factory, err := openEngine(ctx)
		if err != nil {
			return err
		}
		if mcpWatch {
			stopWatch, err := startWatch(ctx, holder, factory)
			if err != nil {
				return err
			}
			defer stopWatch()
		}

		logger.Info("mcp server starting", "messages", holder.Engine().Snapshot().Messages.Len())
		if err := mcp.Serve(ctx, holder, logger); err != nil && ctx.Err() != context.Canceled {
			return err
		}
		return nil
	},
}

func init() {
	serveMCPCmd.Flags().BoolVar(&mcpWatch, "watch", false, "reload records when the data files change")
	rootCmd.AddCommand(serveMCPCmd)
}
