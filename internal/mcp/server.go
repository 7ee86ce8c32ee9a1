// Package mcp exposes the query engine as Model Context Protocol tools over
// stdio.
package mcp

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/wesm/askvault/internal/logging"
	"github.com/wesm/askvault/internal/query"
)

// Version is reported to MCP clients.
const Version = "1.0.0"

// EngineSource yields the engine to use for each tool call. A
// *query.Holder satisfies it, so reloads take effect between calls.
type EngineSource interface {
	Engine() *query.Engine
}

// NewServer registers the askvault tools on a new MCP server.
func NewServer(src EngineSource, logger *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer(
		"askvault",
		Version,
		server.WithToolCapabilities(false),
	)

	h := &handlers{src: src, logger: logging.Default(logger).With("component", "mcp")}

	s.AddTool(askTool(), h.ask)
	s.AddTool(getRecordTool(), h.getRecord)
	s.AddTool(listRecordsTool(), h.listRecords)
	s.AddTool(searchRecordsTool(), h.searchRecords)
	s.AddTool(getStatsTool(), h.getStats)
	return s
}

// Serve serves the askvault tools over stdio. It blocks until stdin is
// closed or the context is cancelled.
func Serve(ctx context.Context, src EngineSource, logger *slog.Logger) error {
	return ServeIO(ctx, src, logger, os.Stdin, os.Stdout)
}

// ServeIO is Serve over arbitrary streams.
func ServeIO(ctx context.Context, src EngineSource, logger *slog.Logger, in io.Reader, out io.Writer) error {
	stdio := server.NewStdioServer(NewServer(src, logger))
	return stdio.Listen(ctx, in, out)
}

func searchRecordsTool() mcp.Tool {
	return mcp.NewTool("search_records",
		mcp.WithDescription("Filter records with operators: kind:event, from:, to:, cc:, subject:, title:, team:, topic:, has:attachment, after:YYYY-MM-DD, before:YYYY-MM-DD, newer_than:7d, older_than:1m. Bare words and \"quoted phrases\" must all match."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Filter query, e.g. 'from:john.doe has:attachment newer_than:2w'"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum records to return (default 20)"),
		),
		mcp.WithNumber("offset",
			mcp.Description("Number of records to skip for pagination (default 0)"),
		),
	)
}

func askTool() mcp.Tool {
	return mcp.NewTool("ask",
		mcp.WithDescription("Answer a natural-language question about emails or meetings, e.g. 'emails from john.doe last week' or 'meetings about onboarding and hiring'. Supports AND/OR/NOT and parentheses."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Free-text question"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum records to return (default 20)"),
		),
		mcp.WithNumber("offset",
			mcp.Description("Number of records to skip for pagination (default 0)"),
		),
	)
}

func getRecordTool() mcp.Tool {
	return mcp.NewTool("get_record",
		mcp.WithDescription("Get one message or event by its ID."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithString("kind",
			mcp.Description("Record collection (default message)"),
			mcp.Enum("message", "event"),
		),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Record ID"),
		),
	)
}

func listRecordsTool() mcp.Tool {
	return mcp.NewTool("list_records",
		mcp.WithDescription("List messages or events with optional person and date filters. Returns records in store order."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithString("kind",
			mcp.Description("Record collection (default message)"),
			mcp.Enum("message", "event"),
		),
		mcp.WithString("from",
			mcp.Description("Sender (messages) or organizer (events)"),
		),
		mcp.WithString("to",
			mcp.Description("Recipient (messages) or attendee (events)"),
		),
		mcp.WithString("cc",
			mcp.Description("Cc recipient (messages only)"),
		),
		mcp.WithString("after",
			mcp.Description("Only records on or after this date (YYYY-MM-DD)"),
		),
		mcp.WithString("before",
			mcp.Description("Only records on or before this date (YYYY-MM-DD)"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum records to return (default 20)"),
		),
		mcp.WithNumber("offset",
			mcp.Description("Number of records to skip for pagination (default 0)"),
		),
	)
}

func getStatsTool() mcp.Tool {
	return mcp.NewTool("get_stats",
		mcp.WithDescription("Get record store overview: message and event counts and metadata sizes."),
		mcp.WithReadOnlyHintAnnotation(true),
	)
}
