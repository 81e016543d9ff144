// Package csv streams delimited text one record at a time.
//
// Stream never buffers the whole input: each record is handed to a callback
// and the reader's buffer is reused for the next one. The first record is
// the header; it is passed to onHeader and never treated as data.
//
// Malformed quoting is a soft error: it is reported via onErr(line, err) and
// the stream continues with the next record. Width is not enforced here;
// callers compare the cell count against their schema.
package csv

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"purchaseanalytics/internal/config"
)

// Options tunes the underlying encoding/csv reader.
type Options struct {
	Comma      rune
	LazyQuotes bool
}

// OptionsFrom reads "comma" and "lazy_quotes" from parser options.
func OptionsFrom(o config.Options) Options {
	return Options{
		Comma:      o.Rune("comma", ','),
		LazyQuotes: o.Bool("lazy_quotes", false),
	}
}

// Stream reads the header and then every data record from r.
//
// Callbacks:
//   - onHeader receives the header (BOM stripped); it is not called for an
//     empty input.
//   - onRecord receives the 1-based line on which the record starts and its
//     cells. The cells slice is reused; copy it to retain it. A non-nil
//     error from onRecord stops the stream and is returned as-is.
//   - onErr receives recoverable parse errors. It may be nil.
//
// Returns nil at EOF, ctx.Err() on cancellation, or the first I/O error.
func Stream(
	ctx context.Context,
	r io.Reader,
	opt Options,
	onHeader func(header []string),
	onRecord func(line int, cells []string) error,
	onErr func(line int, err error),
) error {
	cr := csv.NewReader(r)
	if opt.Comma != 0 {
		cr.Comma = opt.Comma
	}
	cr.LazyQuotes = opt.LazyQuotes
	cr.FieldsPerRecord = -1 // width is enforced by the caller's schema
	cr.ReuseRecord = true

	headerDone := false
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		rec, err := cr.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			var pe *csv.ParseError
			if !errors.As(err, &pe) {
				return fmt.Errorf("csv read: %w", err)
			}
			if onErr != nil {
				onErr(pe.StartLine, fmt.Errorf("parse: %w", err))
			}
			// A broken header still counts as the header.
			headerDone = true
			continue
		}

		line, _ := cr.FieldPos(0)
		if !headerDone {
			headerDone = true
			if onHeader != nil {
				onHeader(StripHeaderBOM(rec))
			}
			continue
		}

		if err := onRecord(line, rec); err != nil {
			return err
		}
	}
}
