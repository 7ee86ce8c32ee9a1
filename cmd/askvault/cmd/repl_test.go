package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/wesm/askvault/internal/query"
	"github.com/wesm/askvault/internal/record"
	"github.com/wesm/askvault/internal/render"
	"github.com/wesm/askvault/internal/testutil"
)

func newTestHolder(t *testing.T) *query.Holder {
	t.Helper()
	snap := &query.Snapshot{
		Messages: record.Messages(testutil.Messages()),
		Events:   record.Events(testutil.Events()),
		Metadata: testutil.Metadata(),
	}
	now := func() time.Time { return time.Date(2025, 7, 20, 12, 0, 0, 0, time.UTC) }
	return query.NewHolder(query.NewEngine(snap, query.Options{Now: now}))
}

func TestRunREPL(t *testing.T) {
	dir := testutil.TempDir(t)
	logPath := filepath.Join(dir, "logs", "queries.log")

	in := strings.NewReader("emails from john.doe\nmeetings about onboarding\n\nnever asked\n")
	var out bytes.Buffer
	if err := runREPL(context.Background(), in, &out, newTestHolder(t), logPath); err != nil {
		t.Fatalf("runREPL: %v", err)
	}

	got := out.String()
	for _, want := range []string{
		"Query: emails from john.doe",
		"Query: meetings about onboarding",
		"Onboarding sync",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "never asked") {
		t.Errorf("REPL kept reading after a blank line:\n%s", got)
	}

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read query log: %v", err)
	}
	if n := strings.Count(string(data), render.Rule+"\n"); n != 2 {
		t.Errorf("query log has %d entries, want 2:\n%s", n, data)
	}
}

func TestRunREPL_EOFWithoutLog(t *testing.T) {
	var out bytes.Buffer
	if err := runREPL(context.Background(), strings.NewReader("onboarding"), &out, newTestHolder(t), ""); err != nil {
		t.Fatalf("runREPL: %v", err)
	}
	if !strings.Contains(out.String(), "2 result(s) found.") {
		t.Errorf("output missing result count:\n%s", out.String())
	}
}

func TestRunREPL_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var out bytes.Buffer
	if err := runREPL(ctx, strings.NewReader("onboarding\n"), &out, newTestHolder(t), ""); err != nil {
		t.Fatalf("runREPL: %v", err)
	}
	if strings.Contains(out.String(), "Query:") {
		t.Errorf("answered a query after cancellation:\n%s", out.String())
	}
}

func TestRunREPL_QueryLogFailureStopsSession(t *testing.T) {
	dir := testutil.TempDir(t)
	blocker := testutil.WriteFile(t, dir, "logs", []byte("not a dir"))

	in := strings.NewReader("emails from john.doe\nonboarding\n")
	var out bytes.Buffer
	err := runREPL(context.Background(), in, &out, newTestHolder(t), filepath.Join(blocker, "queries.log"))
	if err == nil || !strings.Contains(err.Error(), "write query log") {
		t.Fatalf("runREPL error = %v, want query log failure", err)
	}
	if strings.Contains(out.String(), "Query: onboarding") {
		t.Errorf("REPL kept answering after the log failed:\n%s", out.String())
	}
}

func TestAppendQueryLog(t *testing.T) {
	if err := appendQueryLog("", "Query: x\n"); err != nil {
		t.Errorf("empty path: %v", err)
	}

	dir := testutil.TempDir(t)
	path := filepath.Join(dir, "queries.log")
	if err := appendQueryLog(path, "Query: x\n"); err != nil {
		t.Fatalf("appendQueryLog: %v", err)
	}
	testutil.AssertFileContent(t, path, "Query: x\n")

	blocker := testutil.WriteFile(t, dir, "blocker", []byte("file"))
	if err := appendQueryLog(filepath.Join(blocker, "q.log"), "Query: x\n"); err == nil {
		t.Error("expected error when the log directory is a file")
	}
}
