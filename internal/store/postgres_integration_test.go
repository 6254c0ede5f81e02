//go:build postgres_integration

package store

import (
	"os"
	"testing"
)

func TestPostgresConnectivityAndMigrate(t *testing.T) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" { t.Skip("DATABASE_URL not set; skipping integration test") }
	p, err := NewPostgres(t.Context(), dsn)
	if err != nil { t.Fatalf("NewPostgres: %v", err) }
	defer p.Close()
	if err := p.Migrate(t.Context()); err != nil { t.Fatalf("Migrate: %v", err) }
	for _, table := range []string{"vehicles", "routes", "nodes"} {
		if _, err := p.db.ExecContext(t.Context(), "TRUNCATE "+table+" RESTART IDENTITY CASCADE"); err != nil {
			t.Fatalf("truncate %s: %v", table, err)
		}
	}
	exerciseStore(t, p)
}
