// Package transformer turns raw CSV cells into typed rows according to a
// schema.Schema.
//
// A Decoder compiles a per-column plan once and then decodes each record
// without map lookups. Bad data never raises: Decode returns a *RejectError
// describing why the row was dropped, and DecodeStream reports it and moves
// on. A schema with an unsupported type fails in NewDecoder, before any row
// is read.
package transformer

import (
	"fmt"
	"strings"

	"purchaseanalytics/internal/parser/ints"
	"purchaseanalytics/internal/schema"
)

// Reject kinds produced by this package. Callers add their own for domain
// checks done in DecodeStream's onRow.
const (
	KindParse = "parse"   // malformed quoting
	KindWidth = "width"   // cell count differs from the schema
	KindInt   = "integer" // integer cell is not a digit string
)

// RejectError is a row-level data error. The row is skipped; processing
// continues. Kind is a short stable label used for counters; Reason is the
// human-readable detail.
type RejectError struct {
	Kind   string
	Reason string
}

func (e *RejectError) Error() string { return e.Reason }

// Rejectf builds a *RejectError with a formatted reason.
func Rejectf(kind, format string, args ...any) *RejectError {
	return &RejectError{Kind: kind, Reason: fmt.Sprintf(format, args...)}
}

// Row is one decoded record. Integer columns are read with Int and text
// columns with Text, both by schema position.
//
// The Row returned by Decoder.Decode is reused by the next call; callers keep
// the values they need, not the Row.
type Row struct {
	ints  []int64
	texts []string
}

// Int returns the integer value of column i. It is zero for text columns.
func (r Row) Int(i int) int64 { return r.ints[i] }

// Text returns the trimmed value of column i. It is empty for integer columns.
func (r Row) Text(i int) string { return r.texts[i] }

// Len is the number of columns.
func (r Row) Len() int { return len(r.ints) }

// kind enumerates the coercion operation for a column.
type kind uint8

const (
	kindText kind = iota
	kindInt
)

type colPlan struct {
	name string
	k    kind
}

// Decoder decodes records of one schema. It is not safe for concurrent use.
type Decoder struct {
	schema schema.Schema
	cols   []colPlan
	row    Row
}

// NewDecoder validates s and compiles its column plan. An unsupported field
// type yields a *schema.UnsupportedTypeError.
func NewDecoder(s schema.Schema) (*Decoder, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	cols := make([]colPlan, len(s.Fields))
	for i, f := range s.Fields {
		t, _ := schema.NormalizeType(f.Type)
		cols[i] = colPlan{name: f.Name, k: kindText}
		if t == schema.Integer {
			cols[i].k = kindInt
		}
	}
	return &Decoder{
		schema: s,
		cols:   cols,
		row: Row{
			ints:  make([]int64, len(cols)),
			texts: make([]string, len(cols)),
		},
	}, nil
}

// Schema returns the schema the decoder was built for.
func (d *Decoder) Schema() schema.Schema { return d.schema }

// Decode converts cells into a Row. Every cell is trimmed of surrounding
// whitespace; integer cells must then be non-empty ASCII digits.
func (d *Decoder) Decode(cells []string) (Row, error) {
	if len(cells) != len(d.cols) {
		return Row{}, Rejectf(KindWidth, "expected %d fields, got %d", len(d.cols), len(cells))
	}
	for i, c := range d.cols {
		s := strings.TrimSpace(cells[i])
		switch c.k {
		case kindInt:
			n, err := ints.ParseDigits(s)
			if err != nil {
				return Row{}, Rejectf(KindInt, "field %s: %v", c.name, err)
			}
			d.row.ints[i] = n
			d.row.texts[i] = ""
		default:
			d.row.ints[i] = 0
			d.row.texts[i] = s
		}
	}
	return d.row, nil
}
