// Package aggregate joins order-product rows to the product lookup and counts
// orders and first orders per department in a single pass.
package aggregate

import (
	"context"
	"fmt"
	"sort"

	"purchaseanalytics/internal/datasource"
	"purchaseanalytics/internal/parser/csv"
	"purchaseanalytics/internal/products"
	"purchaseanalytics/internal/schema"
	"purchaseanalytics/internal/transformer"
)

// Counts is the tally of one department. FirstOrders never exceeds Orders.
type Counts struct {
	Orders      int64
	FirstOrders int64
}

// Stats holds per-department counts. Departments are created on first use.
type Stats struct {
	byDept map[int64]*Counts
	total  int64
}

// NewStats returns empty statistics.
func NewStats() *Stats {
	return &Stats{byDept: make(map[int64]*Counts)}
}

// Add counts one order for dept; firstOrder also counts it as a first order.
func (s *Stats) Add(dept int64, firstOrder bool) {
	c, ok := s.byDept[dept]
	if !ok {
		c = &Counts{}
		s.byDept[dept] = c
	}
	c.Orders++
	if firstOrder {
		c.FirstOrders++
	}
	s.total++
}

// Get returns the counts of dept.
func (s *Stats) Get(dept int64) (Counts, bool) {
	c, ok := s.byDept[dept]
	if !ok {
		return Counts{}, false
	}
	return *c, true
}

// Departments returns department ids in ascending numeric order.
func (s *Stats) Departments() []int64 {
	out := make([]int64, 0, len(s.byDept))
	for d := range s.byDept {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Len is the number of departments.
func (s *Stats) Len() int { return len(s.byDept) }

// TotalOrders is the sum of Orders over all departments.
func (s *Stats) TotalOrders() int64 { return s.total }

// Reject kinds added by the aggregator.
const (
	KindReorderedFlag  = "reordered_flag"
	KindUnknownProduct = "unknown_product"
)

// Config describes one aggregation pass.
type Config struct {
	Schema   schema.Schema
	Options  csv.Options
	OnReject func(transformer.Reject)
}

// Run reads the order-product file once and aggregates it against lookup.
//
// Beyond generic decoding, a row is rejected when its reordered flag is not
// exactly 0 or 1, or when its product id is missing from lookup. A row with
// reordered = 0 is a first order.
func Run(ctx context.Context, src datasource.Source, cfg Config, lookup *products.Lookup) (*Stats, transformer.Counts, error) {
	dec, err := transformer.NewDecoder(cfg.Schema)
	if err != nil {
		return nil, transformer.Counts{}, err
	}
	pIx, err := cfg.Schema.Require(schema.ProductID, schema.Integer)
	if err != nil {
		return nil, transformer.Counts{}, err
	}
	rIx, err := cfg.Schema.Require(schema.Reordered, schema.Integer)
	if err != nil {
		return nil, transformer.Counts{}, err
	}

	stats := NewStats()
	counts, err := transformer.DecodeStream(ctx, src, cfg.Options, dec,
		func(line int, row transformer.Row) error {
			flag := row.Int(rIx)
			if flag != 0 && flag != 1 {
				return transformer.Rejectf(KindReorderedFlag, "unexpected reordered flag %d", flag)
			}
			pid := row.Int(pIx)
			dept, ok := lookup.Department(pid)
			if !ok {
				return transformer.Rejectf(KindUnknownProduct, "product id %d not found in product table", pid)
			}
			stats.Add(dept, flag == 0)
			return nil
		},
		cfg.OnReject,
	)
	if err != nil {
		return nil, counts, fmt.Errorf("aggregate orders: %w", err)
	}
	return stats, counts, nil
}
