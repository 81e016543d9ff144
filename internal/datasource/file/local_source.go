// Package file implements a local filesystem-backed data source.
//
// A Local source is opened once per pass over an input file. Callers own the
// returned ReadCloser and must close it when the pass ends, including on
// error paths.
package file

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Local is a filesystem data source that opens files from the local disk.
type Local struct{ path string }

// NewLocal returns a new Local data source bound to the provided filesystem
// path.
func NewLocal(path string) *Local { return &Local{path: path} }

// Path returns the configured path.
func (l *Local) Path() string { return l.path }

// Name returns the base name of the file, used to label diagnostics.
func (l *Local) Name() string { return filepath.Base(l.path) }

// Size returns the current file size in bytes.
func (l *Local) Size() (int64, error) {
	fi, err := os.Stat(l.path)
	if err != nil {
		return 0, fmt.Errorf("stat %s: %w", l.path, err)
	}
	return fi.Size(), nil
}

// Open opens the configured path for reading.
//
// Behavior:
//   - A canceled or expired context short-circuits before touching the
//     filesystem.
//   - Filesystem errors are wrapped with the path while still permitting
//     errors.Is(err, os.ErrNotExist).
//   - The kernel is advised that the file will be read sequentially once.
//     The advice is best effort and never fails the open.
func (l *Local) Open(ctx context.Context) (io.ReadCloser, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	f, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", l.path, err)
	}
	adviseSequential(f)
	return f, nil
}
