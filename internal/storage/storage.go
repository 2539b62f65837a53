// Package storage opens the SQLite database shared by the preference store
// and the response cache.
package storage

import (
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	_ "modernc.org/sqlite"
)

const appDir = "ua-popup-control"

var schema = []string{
	`CREATE TABLE IF NOT EXISTS kv (
		key        TEXT PRIMARY KEY,
		value      TEXT NOT NULL,
		revision   INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS kv_revision ON kv(revision)`,
	`CREATE TABLE IF NOT EXISTS tombstones (
		key      TEXT PRIMARY KEY,
		revision INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS responses (
		url          TEXT PRIMARY KEY,
		body         BLOB NOT NULL,
		content_type TEXT NOT NULL,
		fetched_at   INTEGER NOT NULL
	)`,
}

// DefaultPath returns the state database location under the XDG state dir.
func DefaultPath() string {
	path, err := xdg.StateFile(filepath.Join(appDir, "state.db"))
	if err != nil {
		return filepath.Join(os.TempDir(), appDir, "state.db")
	}
	return path
}

// Open opens (creating when needed) the database at path and applies the
// schema. The special path ":memory:" opens a private in-memory database.
func Open(path string) (*sql.DB, error) {
	dsn, err := dataSource(path)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open state db: %w", err)
	}
	if path == ":memory:" {
		// every pooled connection would otherwise get its own empty database
		db.SetMaxOpenConns(1)
	}
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("migrate state db: %w", err)
		}
	}
	return db, nil
}

func dataSource(path string) (string, error) {
	if path == ":memory:" {
		return "file::memory:?_pragma=foreign_keys(1)", nil
	}
	if strings.TrimSpace(path) == "" {
		path = DefaultPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create state dir: %w", err)
	}
	q := url.Values{}
	q.Add("_pragma", "busy_timeout(5000)")
	q.Add("_pragma", "journal_mode(WAL)")
	return "file:" + path + "?" + q.Encode(), nil
}
