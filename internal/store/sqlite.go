package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// SQLite is the Store backed by an embedded SQLite file.
type SQLite struct {
	sqlStore
	path string
}

var sqlitePragmas = []string{
	"foreign_keys(1)",
	"journal_mode(WAL)",
	"synchronous(NORMAL)",
	"busy_timeout(5000)",
}

// NewSQLite opens (creating if needed) the database at path. Pragmas go in
// the DSN so every pooled connection gets them.
func NewSQLite(ctx context.Context, path string) (*SQLite, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}
	q := url.Values{}
	for _, p := range sqlitePragmas {
		q.Add("_pragma", p)
	}
	slog.Info("opening sqlite database", "path", path)
	db, err := sql.Open("sqlite", "file:"+path+"?"+q.Encode())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("open database: %w", err)
	}
	return &SQLite{sqlStore: sqlStore{db: db, d: dialectSQLite}, path: path}, nil
}

func (s *SQLite) Path() string { return s.path }

// Migrate creates or upgrades the schema.
func (s *SQLite) Migrate(ctx context.Context) error { return s.migrate(ctx) }
