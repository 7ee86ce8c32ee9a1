package cmd

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wesm/askvault/internal/config"
	"github.com/wesm/askvault/internal/testutil"
	"github.com/wesm/askvault/tools/devdata/dataset"
)

// run executes devdata with args against an isolated home directory.
// Tests using this helper must NOT use t.Parallel(): flags are globals.
func run(t *testing.T, home string, args ...string) string {
	t.Helper()
	t.Setenv(config.HomeEnv, "")
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append([]string{"--home", home}, args...))
	t.Cleanup(func() { rootCmd.SetArgs(nil) })
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("devdata %s: %v\n%s", strings.Join(args, " "), err, out.String())
	}
	return out.String()
}

func TestGenerateExportSubset(t *testing.T) {
	home := t.TempDir()

	out := run(t, home, "generate", "--messages", "20", "--events", "10", "--seed", "5", "--now", "2025-07-20")
	if !strings.Contains(out, "Generated 20 messages and 10 events (seed 5)") {
		t.Errorf("generate output:\n%s", out)
	}
	testutil.MustExist(t, filepath.Join(home, "data", "emails.json"))
	testutil.MustExist(t, filepath.Join(home, "data", "metadata.json"))

	out = run(t, home, "export-sqlite")
	snapshot := filepath.Join(home, "askvault.db")
	if !strings.Contains(out, "Exported 20 messages and 10 events to "+snapshot) {
		t.Errorf("export-sqlite output:\n%s", out)
	}
	testutil.MustExist(t, snapshot)

	testutil.WriteFile(t, home, "config.toml", []byte("[log]\nlevel = \"warn\"\n"))
	dst := filepath.Join(t.TempDir(), "small")
	out = run(t, home, "subset", "--out", dst, "--rows", "4")
	if !strings.Contains(out, "messages:  4") || !strings.Contains(out, "events:    4") {
		t.Errorf("subset output:\n%s", out)
	}
	testutil.MustExist(t, filepath.Join(dst, dataset.SnapshotFile))
	testutil.AssertFileContent(t, filepath.Join(dst, "config.toml"), "[log]\nlevel = \"warn\"\n")
}

func TestSubset_RefusesExistingDestination(t *testing.T) {
	home := t.TempDir()
	dst := t.TempDir()

	rootCmd.SetArgs([]string{"--home", home, "subset", "--out", dst})
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	t.Cleanup(func() { rootCmd.SetArgs(nil) })
	err := rootCmd.Execute()
	if err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Fatalf("err = %v, want destination exists error", err)
	}
}

func TestImportEMLCommand(t *testing.T) {
	home := t.TempDir()
	src := t.TempDir()
	testutil.WriteFile(t, src, "one.eml", []byte("From: john.doe@example.com\r\nTo: sarah.chen@example.com\r\nSubject: Hiring update\r\n\r\nNew candidates.\r\n"))

	out := run(t, home, "import-eml", "--src", src)
	if !strings.Contains(out, "Imported 1 messages") {
		t.Errorf("import-eml output:\n%s", out)
	}
	testutil.MustExist(t, filepath.Join(home, "data", "emails.json"))
}
