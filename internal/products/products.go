// Package products loads the product table into a product → department
// lookup.
package products

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"purchaseanalytics/internal/datasource"
	"purchaseanalytics/internal/logger"
	"purchaseanalytics/internal/parser/csv"
	"purchaseanalytics/internal/schema"
	"purchaseanalytics/internal/transformer"
)

// Lookup maps product ids to department ids. It is built once by Load and
// only read afterwards.
type Lookup struct {
	dept       map[int64]int64
	overwrites int
}

// NewLookup returns an empty lookup.
func NewLookup() *Lookup {
	return &Lookup{dept: make(map[int64]int64)}
}

// Set records productID → departmentID. A later Set for the same product
// replaces the earlier department.
func (l *Lookup) Set(productID, departmentID int64) {
	if _, ok := l.dept[productID]; ok {
		l.overwrites++
	}
	l.dept[productID] = departmentID
}

// Department returns the department of productID.
func (l *Lookup) Department(productID int64) (int64, bool) {
	d, ok := l.dept[productID]
	return d, ok
}

// Len is the number of distinct products.
func (l *Lookup) Len() int { return len(l.dept) }

// Overwrites is the number of rows that replaced an earlier product id.
func (l *Lookup) Overwrites() int { return l.overwrites }

// Departments returns the distinct department ids, ascending.
func (l *Lookup) Departments() []int64 {
	seen := make(map[int64]struct{})
	for _, d := range l.dept {
		seen[d] = struct{}{}
	}
	out := make([]int64, 0, len(seen))
	for d := range seen {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Config describes one load.
type Config struct {
	Schema  schema.Schema
	Options csv.Options
	// OnReject receives skipped rows; may be nil.
	OnReject func(transformer.Reject)
	Log      *slog.Logger
}

// Load reads the product file once and builds the lookup. The schema must
// declare product_id and department_id as integers. Malformed rows are
// skipped and reported; duplicate product ids keep the last department seen.
func Load(ctx context.Context, src datasource.Source, cfg Config) (*Lookup, transformer.Counts, error) {
	log := cfg.Log
	if log == nil {
		log = logger.Discard()
	}

	dec, err := transformer.NewDecoder(cfg.Schema)
	if err != nil {
		return nil, transformer.Counts{}, err
	}
	pIx, err := cfg.Schema.Require(schema.ProductID, schema.Integer)
	if err != nil {
		return nil, transformer.Counts{}, err
	}
	dIx, err := cfg.Schema.Require(schema.DepartmentID, schema.Integer)
	if err != nil {
		return nil, transformer.Counts{}, err
	}

	lookup := NewLookup()
	counts, err := transformer.DecodeStream(ctx, src, cfg.Options, dec,
		func(line int, row transformer.Row) error {
			lookup.Set(row.Int(pIx), row.Int(dIx))
			return nil
		},
		cfg.OnReject,
	)
	if err != nil {
		return nil, counts, fmt.Errorf("load products: %w", err)
	}
	if lookup.Overwrites() > 0 {
		log.Debug("duplicate product ids, last row wins",
			"source", src.Name(), "overwrites", lookup.Overwrites())
	}
	return lookup, counts, nil
}
