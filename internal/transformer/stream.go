package transformer

import (
	"context"
	"errors"
	"fmt"

	"purchaseanalytics/internal/datasource"
	"purchaseanalytics/internal/parser/csv"
)

// Counts summarizes one decoding pass.
type Counts struct {
	Read     int // data records seen, header excluded
	Accepted int
	Rejected int

	// HeaderMismatches lists header columns that differ from the schema. The
	// header is always discarded; this is informational.
	HeaderMismatches []string
}

// Reject describes a skipped row.
type Reject struct {
	Source string
	Line   int
	Kind   string
	Reason string
	Raw    []string // copy of the raw cells; nil for unparseable records
}

// DecodeStream opens src, discards its header and decodes every data record
// with dec.
//
// Accepted rows are passed to onRow together with their starting line. onRow
// may return a *RejectError to drop the row for a domain reason; any other
// error aborts the pass and is returned. Rejected rows (width, digits,
// malformed quoting or onRow rejects) are reported to onReject, which may be
// nil.
//
// The source is closed before DecodeStream returns.
func DecodeStream(
	ctx context.Context,
	src datasource.Source,
	opt csv.Options,
	dec *Decoder,
	onRow func(line int, row Row) error,
	onReject func(Reject),
) (Counts, error) {
	var c Counts

	rc, err := src.Open(ctx)
	if err != nil {
		return c, err
	}
	defer rc.Close()

	reject := func(line int, re *RejectError, raw []string) {
		c.Rejected++
		if onReject == nil {
			return
		}
		var cp []string
		if raw != nil {
			cp = append([]string(nil), raw...)
		}
		onReject(Reject{Source: src.Name(), Line: line, Kind: re.Kind, Reason: re.Reason, Raw: cp})
	}

	err = csv.Stream(ctx, rc, opt,
		func(header []string) {
			c.HeaderMismatches = dec.Schema().HeaderMismatches(header)
		},
		func(line int, cells []string) error {
			c.Read++
			row, err := dec.Decode(cells)
			if err != nil {
				var re *RejectError
				if !errors.As(err, &re) {
					return err
				}
				reject(line, re, cells)
				return nil
			}
			if err := onRow(line, row); err != nil {
				var re *RejectError
				if errors.As(err, &re) {
					reject(line, re, cells)
					return nil
				}
				return fmt.Errorf("%s line %d: %w", src.Name(), line, err)
			}
			c.Accepted++
			return nil
		},
		func(line int, err error) {
			c.Read++
			reject(line, &RejectError{Kind: KindParse, Reason: err.Error()}, nil)
		},
	)
	if err != nil {
		return c, fmt.Errorf("decode %s: %w", src.Name(), err)
	}
	return c, nil
}
