// Package report turns department statistics into the sorted CSV report.
package report

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"

	"github.com/zeebo/xxh3"

	"purchaseanalytics/internal/aggregate"
	"purchaseanalytics/internal/schema"
)

// ErrZeroOrders means a department has no orders, so its first-order ratio is
// undefined. The aggregator never creates such a department; seeing it is a
// bug, and the run must stop.
var ErrZeroOrders = errors.New("department with zero orders")

// Line is one report row.
type Line struct {
	DepartmentID int64
	Orders       int64
	FirstOrders  int64
	Percentage   float64 // FirstOrders / Orders, unrounded
}

// Tallies is the read side of aggregate.Stats.
type Tallies interface {
	Departments() []int64
	Get(dept int64) (aggregate.Counts, bool)
}

// Build produces one Line per department, ascending by department id.
func Build(stats Tallies) ([]Line, error) {
	depts := stats.Departments()
	sort.Slice(depts, func(i, j int) bool { return depts[i] < depts[j] })
	lines := make([]Line, 0, len(depts))
	for _, d := range depts {
		c, _ := stats.Get(d)
		if c.Orders == 0 {
			return nil, fmt.Errorf("department %d: %w", d, ErrZeroOrders)
		}
		lines = append(lines, Line{
			DepartmentID: d,
			Orders:       c.Orders,
			FirstOrders:  c.FirstOrders,
			Percentage:   float64(c.FirstOrders) / float64(c.Orders),
		})
	}
	return lines, nil
}

// FormatPercentage renders p with exactly two decimals.
func FormatPercentage(p float64) string {
	return strconv.FormatFloat(p, 'f', 2, 64)
}

// Record returns the CSV cells of l.
func (l Line) Record() []string {
	return []string{
		strconv.FormatInt(l.DepartmentID, 10),
		strconv.FormatInt(l.Orders, 10),
		strconv.FormatInt(l.FirstOrders, 10),
		FormatPercentage(l.Percentage),
	}
}

// Options controls output formatting.
type Options struct {
	// CRLF ends lines with \r\n instead of \n. LF is the default; Python's
	// csv module writes \r\n, so set CRLF to match reports it produced.
	CRLF bool
}

// Digest is the xxh3-64 hash of the bytes written. Identical inputs yield
// identical digests.
type Digest uint64

func (d Digest) String() string { return fmt.Sprintf("%016x", uint64(d)) }

// Write emits the header and lines to w.
func Write(w io.Writer, lines []Line, opt Options) (Digest, error) {
	h := xxh3.New()
	cw := csv.NewWriter(io.MultiWriter(w, h))
	cw.UseCRLF = opt.CRLF

	if err := cw.Write(schema.ReportHeader()); err != nil {
		return 0, fmt.Errorf("write header: %w", err)
	}
	for _, l := range lines {
		if err := cw.Write(l.Record()); err != nil {
			return 0, fmt.Errorf("write department %d: %w", l.DepartmentID, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return 0, fmt.Errorf("flush report: %w", err)
	}
	return Digest(h.Sum64()), nil
}

// WriteFile creates or truncates path and writes the report to it.
func WriteFile(path string, lines []Line, opt Options) (d Digest, err error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("create report: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close report %s: %w", path, cerr)
		}
	}()

	d, err = Write(f, lines, opt)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}
