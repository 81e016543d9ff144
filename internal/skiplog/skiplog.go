// Package skiplog records rows skipped by the pipeline into a CSV file and
// keeps per-kind counters for the end-of-run summary.
package skiplog

import (
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"purchaseanalytics/internal/transformer"
)

// Header is the first row of every reject log.
var Header = []string{"source", "line", "kind", "reason", "raw"}

// Log counts rejects per source and kind and, when backed by a file, appends
// them as CSV rows. A nil *Log is a no-op, so callers can pass it around
// unconditionally.
type Log struct {
	f       *os.File
	w       *csv.Writer
	reasons map[string]int
	err     error
}

// New creates (or truncates) path and writes the header. The parent directory
// must already exist.
func New(path string) (*Log, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create reject log: %w", err)
	}
	w := csv.NewWriter(f)
	if err := w.Write(Header); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("write reject log header: %w", err)
	}
	return &Log{f: f, w: w, reasons: make(map[string]int)}, nil
}

// NewCounter returns a Log that only counts; nothing is written.
func NewCounter() *Log {
	return &Log{reasons: make(map[string]int)}
}

// Add records one skipped row. The raw cells are re-joined with commas; the
// first write error is kept and returned by Close.
func (l *Log) Add(r transformer.Reject) {
	if l == nil {
		return
	}
	l.reasons[r.Source+": "+r.Kind]++
	if l.w == nil || l.err != nil {
		return
	}
	rec := []string{r.Source, strconv.Itoa(r.Line), r.Kind, r.Reason, strings.Join(r.Raw, ",")}
	if err := l.w.Write(rec); err != nil {
		l.err = err
	}
}

// Count is one entry of Summary.
type Count struct {
	Key string // "<source>: <kind>"
	N   int
}

// Summary returns the per-source, per-kind counts sorted by key.
func (l *Log) Summary() []Count {
	if l == nil {
		return nil
	}
	out := make([]Count, 0, len(l.reasons))
	for k, n := range l.reasons {
		out = append(out, Count{Key: k, N: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// Total is the number of rows added.
func (l *Log) Total() int {
	if l == nil {
		return 0
	}
	n := 0
	for _, c := range l.reasons {
		n += c
	}
	return n
}

// Close flushes and closes the file.
func (l *Log) Close() error {
	if l == nil || l.f == nil {
		return nil
	}
	l.w.Flush()
	if l.err == nil {
		l.err = l.w.Error()
	}
	if err := l.f.Close(); err != nil && l.err == nil {
		l.err = err
	}
	if l.err != nil {
		return fmt.Errorf("reject log %s: %w", l.f.Name(), l.err)
	}
	return nil
}
