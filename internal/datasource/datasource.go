// Package datasource defines the input abstraction shared by the loaders.
package datasource

import (
	"context"
	"io"
)

// Source is a named, re-openable byte stream. Each Open starts a fresh pass.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
	// Name identifies the source in diagnostics (typically the file name).
	Name() string
}
