// Package mysql implements a MySQL-backed storage.Repository on
// go-sql-driver/mysql.
package mysql

import (
	"context"
	"fmt"

	drv "github.com/go-sql-driver/mysql"

	"purchaseanalytics/internal/ddl"
	"purchaseanalytics/internal/storage/sqldb"
)

// Config holds MySQL repository configuration.
type Config struct {
	DSN   string // e.g. "user:pass@tcp(localhost:3306)/shop"
	Table string
}

// Repository is a MySQL-backed implementation of storage.Repository.
type Repository struct {
	*sqldb.DB
	cfg Config
}

// NewRepository validates the DSN, opens the pool and returns a Repository
// plus a close function for cleanup.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	if _, err := ParseDSN(cfg.DSN); err != nil {
		return nil, nil, err
	}
	db, err := sqldb.Open(ctx, "mysql", cfg.DSN, ddl.MySQL, cfg.Table)
	if err != nil {
		return nil, nil, err
	}
	return &Repository{DB: db, cfg: cfg}, db.Close, nil
}

// ParseDSN checks dsn with the driver's own parser.
func ParseDSN(dsn string) (*drv.Config, error) {
	c, err := drv.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("mysql dsn: %w", err)
	}
	return c, nil
}
