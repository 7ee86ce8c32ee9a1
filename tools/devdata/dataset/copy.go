package dataset

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/wesm/askvault/internal/fileutil"
	"github.com/wesm/askvault/internal/store"
)

// SnapshotFile is the snapshot file name inside a dataset directory.
const SnapshotFile = "askvault.db"

// CopyResult holds the summary of a dataset copy operation.
type CopyResult struct {
	Messages  int64
	Events    int64
	Attendees int64
	Metadata  int64
	DBSize    int64
	Elapsed   time.Duration
}

// CopySubset copies the rowCount most recent messages and the rowCount most
// recent events (with their list values) plus all metadata from the SQLite
// snapshot at srcDBPath into a new snapshot in dstDir. The destination
// schema is initialized from the embedded store schema. On failure dstDir
// is removed.
func CopySubset(ctx context.Context, srcDBPath, dstDir string, rowCount int) (*CopyResult, error) {
	start := time.Now()

	if err := fileutil.SecureMkdirAll(dstDir, 0700); err != nil {
		return nil, fmt.Errorf("create destination directory: %w", err)
	}
	dstDBPath := filepath.Join(dstDir, SnapshotFile)

	result, err := copySubset(ctx, srcDBPath, dstDBPath, rowCount)
	if err != nil {
		os.RemoveAll(dstDir)
		return nil, err
	}
	if err := fileutil.SecureChmod(dstDBPath, 0600); err != nil {
		os.RemoveAll(dstDir)
		return nil, err
	}
	if info, err := os.Stat(dstDBPath); err == nil {
		result.DBSize = info.Size()
	}
	result.Elapsed = time.Since(start)
	return result, nil
}

func copySubset(ctx context.Context, srcDBPath, dstDBPath string, rowCount int) (*CopyResult, error) {
	// Foreign keys stay off for the bulk copy and are verified afterwards.
	db, err := sql.Open("sqlite3", dstDBPath+"?_busy_timeout=5000&_foreign_keys=OFF")
	if err != nil {
		return nil, fmt.Errorf("create destination database: %w", err)
	}
	defer db.Close()
	// ATTACH is per connection.
	db.SetMaxOpenConns(1)

	if err := store.InitSchema(ctx, db); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	// Sanitize source path for ATTACH: reject null bytes, escape single quotes
	if strings.ContainsRune(srcDBPath, 0) {
		return nil, fmt.Errorf("source database path contains null byte")
	}
	if _, err := os.Stat(srcDBPath); err != nil {
		return nil, fmt.Errorf("source database: %w", err)
	}
	escapedSrcPath := strings.ReplaceAll(srcDBPath, "'", "''")
	if _, err := db.ExecContext(ctx, fmt.Sprintf("ATTACH DATABASE '%s' AS src", escapedSrcPath)); err != nil {
		return nil, fmt.Errorf("attach source database: %w", err)
	}
	defer db.Exec("DETACH DATABASE src")

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	result, err := copyData(ctx, tx, rowCount)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	if err := checkForeignKeys(ctx, db); err != nil {
		return nil, err
	}
	return result, nil
}

// copyData executes the INSERT INTO ... SELECT statements in dependency order.
func copyData(ctx context.Context, tx *sql.Tx, rowCount int) (*CopyResult, error) {
	result := &CopyResult{}

	selections := []struct {
		name  string
		table string
		count *int64
	}{
		{"selected_messages", "messages", &result.Messages},
		{"selected_events", "events", &result.Events},
	}
	for _, s := range selections {
		if _, err := tx.ExecContext(ctx, fmt.Sprintf(`
			CREATE TEMP TABLE %s AS
			SELECT seq FROM src.%s ORDER BY timestamp DESC, seq LIMIT ?`, s.name, s.table), rowCount); err != nil {
			return nil, fmt.Errorf("select %s: %w", s.table, err)
		}
		if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+s.name).Scan(s.count); err != nil {
			return nil, fmt.Errorf("count %s: %w", s.name, err)
		}
	}

	steps := []struct {
		what  string
		stmt  string
		count *int64
	}{
		{"messages", `
			INSERT INTO messages SELECT * FROM src.messages
			WHERE seq IN (SELECT seq FROM selected_messages)`, nil},
		{"message values", `
			INSERT INTO message_values SELECT * FROM src.message_values
			WHERE message_seq IN (SELECT seq FROM selected_messages)`, nil},
		{"events", `
			INSERT INTO events SELECT * FROM src.events
			WHERE seq IN (SELECT seq FROM selected_events)`, nil},
		{"event attendees", `
			INSERT INTO event_attendees SELECT * FROM src.event_attendees
			WHERE event_seq IN (SELECT seq FROM selected_events)`, &result.Attendees},
		// Metadata describes the whole company, not the selected records.
		{"metadata", `INSERT INTO metadata SELECT * FROM src.metadata`, &result.Metadata},
	}
	for _, s := range steps {
		res, err := tx.ExecContext(ctx, s.stmt)
		if err != nil {
			return nil, fmt.Errorf("copy %s: %w", s.what, err)
		}
		if s.count != nil {
			*s.count, _ = res.RowsAffected()
		}
	}

	tx.ExecContext(ctx, "DROP TABLE IF EXISTS selected_messages")
	tx.ExecContext(ctx, "DROP TABLE IF EXISTS selected_events")
	return result, nil
}

func checkForeignKeys(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		return fmt.Errorf("enable foreign keys: %w", err)
	}
	rows, err := db.QueryContext(ctx, "PRAGMA main.foreign_key_check")
	if err != nil {
		return fmt.Errorf("foreign key check: %w", err)
	}
	defer rows.Close()

	var violations []string
	for rows.Next() {
		var (
			table, parent string
			rowid, fkid   sql.NullInt64
		)
		if err := rows.Scan(&table, &rowid, &parent, &fkid); err == nil {
			violations = append(violations, fmt.Sprintf("%s(rowid=%d) -> %s", table, rowid.Int64, parent))
		}
	}
	if len(violations) > 0 {
		return fmt.Errorf("foreign key violations: %s", strings.Join(violations, "; "))
	}
	return rows.Err()
}

// CopyFileIfExists copies a single file from src to dst.
// Returns nil if the source file does not exist.
// Both paths must be validated by the caller to prevent path traversal.
func CopyFileIfExists(src, dst string) error {
	if !filepath.IsAbs(src) || !filepath.IsAbs(dst) {
		return fmt.Errorf("paths must be absolute: src=%q, dst=%q", src, dst)
	}

	srcFile, err := os.Open(src)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("open source file %s: %w", src, err)
	}
	defer srcFile.Close()

	dstFile, err := fileutil.SecureOpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("create destination file %s: %w", dst, err)
	}
	defer dstFile.Close()

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		return fmt.Errorf("copy %s to %s: %w", src, dst, err)
	}
	return nil
}
