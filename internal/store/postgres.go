package store

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// Postgres is the Store backed by PostgreSQL through pgx's database/sql driver.
type Postgres struct {
	sqlStore
}

func NewPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(20)
	db.SetConnMaxIdleTime(5 * time.Minute)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return &Postgres{sqlStore{db: db, d: dialectPostgres}}, nil
}

// Migrate creates or upgrades the schema.
func (p *Postgres) Migrate(ctx context.Context) error { return p.migrate(ctx) }
