// Package sqlite implements a SQLite-backed storage.Repository on
// modernc.org/sqlite. SQLite has no bulk-load API like Postgres COPY, so rows
// go through one prepared INSERT inside a transaction.
package sqlite

import (
	"context"
	"fmt"

	_ "modernc.org/sqlite"

	"purchaseanalytics/internal/ddl"
	"purchaseanalytics/internal/storage/sqldb"
)

// Config holds SQLite repository configuration.
type Config struct {
	// DSN is passed to database/sql unchanged, e.g. "file:report.db" or
	// "file::memory:?cache=shared".
	DSN   string
	Table string
}

// Repository is a SQLite-backed implementation of storage.Repository.
type Repository struct {
	*sqldb.DB
	cfg Config
}

// NewRepository opens a SQLite database and returns a Repository plus a close
// function for cleanup.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	db, err := sqldb.Open(ctx, "sqlite", cfg.DSN, ddl.SQLite, cfg.Table)
	if err != nil {
		return nil, nil, err
	}
	if _, err := db.SQL().ExecContext(ctx, "PRAGMA foreign_keys = ON;"); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("sqlite: pragma: %w", err)
	}
	return &Repository{DB: db, cfg: cfg}, db.Close, nil
}
