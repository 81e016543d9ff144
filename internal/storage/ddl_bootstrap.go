package storage

import (
	"context"
	"fmt"
	"sync"

	"purchaseanalytics/internal/ddl"
)

var (
	dialectMu sync.RWMutex
	dialects  = map[string]ddl.Dialect{}
)

// RegisterDialect records the SQL dialect of a storage kind. Backends call it
// from init next to Register.
func RegisterDialect(kind string, d ddl.Dialect) {
	dialectMu.Lock()
	defer dialectMu.Unlock()
	dialects[kind] = d
}

// DialectFor returns the dialect registered for kind.
func DialectFor(kind string) (ddl.Dialect, error) {
	dialectMu.RLock()
	d, ok := dialects[kind]
	dialectMu.RUnlock()
	if !ok {
		return ddl.Dialect{}, fmt.Errorf("no SQL dialect registered for storage.kind=%q", kind)
	}
	return d, nil
}

// EnsureTable renders an idempotent CREATE TABLE for td in the dialect of kind
// and applies it through repo.
func EnsureTable(ctx context.Context, kind string, repo Repository, td ddl.TableDef) error {
	d, err := DialectFor(kind)
	if err != nil {
		return err
	}
	stmt, err := ddl.BuildCreateTableSQL(d, td)
	if err != nil {
		return err
	}
	if err := repo.Exec(ctx, stmt); err != nil {
		return fmt.Errorf("apply DDL: %w", err)
	}
	return nil
}
