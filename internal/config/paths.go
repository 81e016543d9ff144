package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// PathError reports a configured path that cannot be used. It wraps the
// underlying filesystem error, so errors.Is(err, os.ErrNotExist) works.
type PathError struct {
	Role string // "products", "order_products", "report directory", ...
	Path string
	Err  error
}

func (e *PathError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Role, e.Path, e.Err)
}

func (e *PathError) Unwrap() error { return e.Err }

// CheckPaths verifies the filesystem preconditions of a run: both inputs
// exist as regular files and the directories that will receive the report
// (and the reject log, when enabled) exist. It must pass before any input is
// read.
func CheckPaths(p Pipeline) error {
	inputs := []struct{ role, path string }{
		{"order_products", p.OrderProducts.Path},
		{"products", p.Products.Path},
	}
	for _, in := range inputs {
		fi, err := os.Stat(in.path)
		if err != nil {
			return &PathError{Role: in.role, Path: in.path, Err: err}
		}
		if fi.IsDir() {
			return &PathError{Role: in.role, Path: in.path, Err: fmt.Errorf("is a directory")}
		}
	}

	if err := checkDir("report directory", p.Report.Path); err != nil {
		return err
	}
	if p.Rejects.Path != "" {
		if err := checkDir("rejects directory", p.Rejects.Path); err != nil {
			return err
		}
	}
	return nil
}

func checkDir(role, file string) error {
	dir := filepath.Dir(file)
	fi, err := os.Stat(dir)
	if err != nil {
		return &PathError{Role: role, Path: dir, Err: err}
	}
	if !fi.IsDir() {
		return &PathError{Role: role, Path: dir, Err: fmt.Errorf("not a directory")}
	}
	return nil
}
