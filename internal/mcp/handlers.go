package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/wesm/askvault/internal/daterange"
	"github.com/wesm/askvault/internal/query"
	"github.com/wesm/askvault/internal/record"
	"github.com/wesm/askvault/internal/search"
)

const maxLimit = 1000

type handlers struct {
	src    EngineSource
	logger *slog.Logger
}

// pageResult is an outcome trimmed to one page of records.
type pageResult struct {
	*query.Outcome
	Total  int `json:"total"`
	Offset int `json:"offset"`
}

func newPage(out *query.Outcome, offset, limit int) pageResult {
	page := *out
	page.Records = out.Page(offset, limit)
	start := offset
	if start > len(out.Indices) {
		start = len(out.Indices)
	}
	page.Indices = out.Indices[start : start+len(page.Records)]
	return pageResult{Outcome: &page, Total: out.Count(), Offset: offset}
}

func (h *handlers) ask(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()

	queryStr, _ := args["query"].(string)
	if queryStr == "" {
		return mcp.NewToolResultError("query parameter is required"), nil
	}

	limit := intArg(args, "limit", 20)
	offset := intArg(args, "offset", 0)

	out := h.src.Engine().Ask(queryStr)
	h.logger.Debug("ask", "query", queryStr, "path", out.Path, "results", out.Count())
	return jsonResult(newPage(out, offset, limit))
}

func (h *handlers) getRecord(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()

	kind, err := kindArg(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	id, _ := args["id"].(string)
	if id == "" {
		return mcp.NewToolResultError("id parameter is required"), nil
	}

	r, ok := h.src.Engine().Find(kind, id)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("%s not found: %s", kind, id)), nil
	}
	return jsonResult(r)
}

func (h *handlers) listRecords(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()

	kind, err := kindArg(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	filter := query.ListFilter{Kind: kind}
	if v, ok := args["from"].(string); ok {
		filter.From = v
	}
	if v, ok := args["to"].(string); ok {
		filter.To = v
	}
	if v, ok := args["cc"].(string); ok {
		filter.Cc = v
	}
	if filter.After, err = dateArg(args, "after"); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if filter.Before, err = dateArg(args, "before"); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	out := h.src.Engine().List(filter)
	return jsonResult(newPage(out, intArg(args, "offset", 0), intArg(args, "limit", 20)))
}

func (h *handlers) searchRecords(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()

	queryStr, _ := args["query"].(string)
	if queryStr == "" {
		return mcp.NewToolResultError("query parameter is required"), nil
	}

	e := h.src.Engine()
	q := search.Parse(queryStr, e.Now())
	if q.IsEmpty() {
		return mcp.NewToolResultError("query has no filters or terms: " + queryStr), nil
	}
	out := e.List(q.Filter())
	out.Query = queryStr
	h.logger.Debug("search_records", "query", queryStr, "kind", out.Kind, "results", out.Count())
	return jsonResult(newPage(out, intArg(args, "offset", 0), intArg(args, "limit", 20)))
}

func (h *handlers) getStats(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(h.src.Engine().Snapshot().Stats())
}

// kindArg reads the optional "kind" argument, defaulting to messages.
func kindArg(args map[string]any) (record.Kind, error) {
	v, _ := args["kind"].(string)
	if v == "" {
		return record.KindMessage, nil
	}
	kind, ok := record.ParseKind(v)
	if !ok {
		return 0, fmt.Errorf("invalid kind %q: expected message or event", v)
	}
	return kind, nil
}

// dateArg validates an optional YYYY-MM-DD argument.
func dateArg(args map[string]any, key string) (string, error) {
	v, ok := args[key].(string)
	if !ok || v == "" {
		return "", nil
	}
	if _, err := time.Parse(daterange.DateLayout, v); err != nil {
		return "", fmt.Errorf("invalid %s date %q: expected YYYY-MM-DD", key, v)
	}
	return v, nil
}

// intArg extracts a non-negative integer from a map, with a default value.
// JSON numbers arrive as float64. Negative values are clamped to 0,
// and values above maxLimit are clamped to maxLimit.
func intArg(args map[string]any, key string, def int) int {
	if v, ok := args[key].(float64); ok {
		n := int(v)
		if n < 0 {
			return 0
		}
		if n > maxLimit {
			return maxLimit
		}
		return n
	}
	return def
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("marshal error: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
