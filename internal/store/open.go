package store

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
)

// Open selects a backend: Postgres when databaseURL is set, else SQLite when
// sqlitePath is set, else Memory. SQL backends are migrated before return.
func Open(ctx context.Context, databaseURL, sqlitePath string) (Store, error) {
	switch {
	case strings.TrimSpace(databaseURL) != "":
		p, err := NewPostgres(ctx, databaseURL)
		if err != nil {
			return nil, fmt.Errorf("postgres: %w", err)
		}
		if err := p.Migrate(ctx); err != nil {
			p.Close()
			return nil, fmt.Errorf("postgres: %w", err)
		}
		slog.Info("store ready", "backend", "postgres")
		return p, nil
	case strings.TrimSpace(sqlitePath) != "":
		s, err := NewSQLite(ctx, sqlitePath)
		if err != nil {
			return nil, fmt.Errorf("sqlite: %w", err)
		}
		if err := s.Migrate(ctx); err != nil {
			s.Close()
			return nil, fmt.Errorf("sqlite: %w", err)
		}
		slog.Info("store ready", "backend", "sqlite", "path", sqlitePath)
		return s, nil
	}
	slog.Info("store ready", "backend", "memory")
	return NewMemory(), nil
}

// SeedFromFile applies Seed with the YAML file at path.
func SeedFromFile(ctx context.Context, s Store, path string) (SeedReport, error) {
	f, err := os.Open(path)
	if err != nil {
		return SeedReport{}, err
	}
	defer f.Close()
	return Seed(ctx, s, f)
}

// Backend names the implementation behind s.
func Backend(s Store) string {
	switch v := s.(type) {
	case *Postgres:
		return v.d.String()
	case *SQLite:
		return v.d.String()
	case *Memory:
		return "memory"
	}
	return fmt.Sprintf("%T", s)
}
