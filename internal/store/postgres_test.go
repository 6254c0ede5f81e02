package store

import (
	"testing"
	"time"
)

func TestRebind(t *testing.T) {
	q := `SELECT a FROM t WHERE x=? AND y=? LIMIT ?`
	if got := rebind(dialectSQLite, q); got != q {
		t.Fatalf("sqlite should keep placeholders, got %s", got)
	}
	want := `SELECT a FROM t WHERE x=$1 AND y=$2 LIMIT $3`
	if got := rebind(dialectPostgres, q); got != want {
		t.Fatalf("want %s, got %s", want, got)
	}
}

func TestMigrationVersion(t *testing.T) {
	v, err := migrationVersion("0002_add_index.sql")
	if err != nil || v != 2 {
		t.Fatalf("want 2, got %d (%v)", v, err)
	}
	if _, err := migrationVersion("init.sql"); err == nil {
		t.Fatalf("expected error for missing prefix")
	}
}

func TestSplitStatements(t *testing.T) {
	got := splitStatements("CREATE TABLE a (x INT);\n\n  CREATE INDEX i ON a (x);\n")
	if len(got) != 2 || got[1] != "CREATE INDEX i ON a (x)" {
		t.Fatalf("unexpected statements %q", got)
	}
}

func TestScanTimeFormats(t *testing.T) {
	want := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	for _, src := range []any{want, want.Format(sqlTimeLayout), []byte(want.Format(time.RFC3339))} {
		var st scanTime
		if err := st.Scan(src); err != nil {
			t.Fatalf("scan %T: %v", src, err)
		}
		if !st.t.Equal(want) {
			t.Fatalf("scan %T: want %v, got %v", src, want, st.t)
		}
	}
	var st scanTime
	if err := st.Scan(42); err == nil {
		t.Fatalf("expected error for int")
	}
}
