// Package sqldb holds the database/sql plumbing shared by the backends that
// have no native bulk-load path: open with a bounded ping, run statements and
// insert batches through one prepared statement inside a transaction.
package sqldb

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"purchaseanalytics/internal/ddl"
)

// PingTimeout bounds the connectivity check in Open.
const PingTimeout = 5 * time.Second

// DB is a database/sql handle bound to one target table and dialect.
type DB struct {
	db      *sql.DB
	dialect ddl.Dialect
	table   string
}

// Open opens driver with dsn and pings it so that a bad DSN fails here rather
// than on the first write.
func Open(ctx context.Context, driver, dsn string, d ddl.Dialect, table string) (*DB, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("%s: DSN must not be empty", d.Name)
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("%s: open: %w", d.Name, err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, PingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: ping: %w", d.Name, err)
	}
	return &DB{db: db, dialect: d, table: table}, nil
}

// SQL exposes the underlying handle.
func (d *DB) SQL() *sql.DB { return d.db }

// Table is the configured target table.
func (d *DB) Table() string { return d.table }

// Exec runs one statement. Blank statements are ignored.
func (d *DB) Exec(ctx context.Context, stmt string) error {
	if strings.TrimSpace(stmt) == "" {
		return nil
	}
	if _, err := d.db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("%s: exec: %w", d.dialect.Name, err)
	}
	return nil
}

// CopyFrom inserts rows into the target table in a single transaction. Either
// every row is committed or none is.
func (d *DB) CopyFrom(ctx context.Context, columns []string, rows [][]any) (int64, error) {
	if len(columns) == 0 {
		return 0, fmt.Errorf("%s: CopyFrom: columns must not be empty", d.dialect.Name)
	}
	if len(rows) == 0 {
		return 0, nil
	}
	insert, err := ddl.BuildInsertSQL(d.dialect, d.table, columns)
	if err != nil {
		return 0, err
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("%s: begin tx: %w", d.dialect.Name, err)
	}
	stmt, err := tx.PrepareContext(ctx, insert)
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("%s: prepare insert: %w", d.dialect.Name, err)
	}
	defer stmt.Close()

	for i, row := range rows {
		if len(row) != len(columns) {
			_ = tx.Rollback()
			return 0, fmt.Errorf("%s: CopyFrom: row %d has %d values, want %d", d.dialect.Name, i, len(row), len(columns))
		}
		if _, err := stmt.ExecContext(ctx, row...); err != nil {
			_ = tx.Rollback()
			return 0, fmt.Errorf("%s: insert row %d: %w", d.dialect.Name, i, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("%s: commit: %w", d.dialect.Name, err)
	}
	return int64(len(rows)), nil
}

// Close releases the pool.
func (d *DB) Close() {
	if d != nil && d.db != nil {
		_ = d.db.Close()
	}
}
