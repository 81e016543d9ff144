// This file adds a lightweight linter for Pipeline values. It performs
// static checks over a resolved Pipeline and returns a list of issues
// (errors and warnings) that the CLI surfaces before any file is read.

package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"purchaseanalytics/internal/schema"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError indicates a configuration error that should block execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning indicates a finding that is surfaced but does not block.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation/lint finding for a Pipeline.
//
// Path is a dotted path into the config (e.g. "storage.kind",
// "products.fields"). Message is human-readable.
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface so an Issue can be treated as a single
// error in contexts that expect error.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// HasErrors reports whether any issue has SeverityError.
func HasErrors(issues []Issue) bool {
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			return true
		}
	}
	return false
}

// ValidatePipeline performs static validation of a Pipeline. It does not
// touch the filesystem; see CheckPaths for that.
func ValidatePipeline(p Pipeline) []Issue {
	var issues []Issue

	if strings.TrimSpace(p.Job) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "job",
			Message:  "job must not be empty; it labels logs and metrics",
		})
	}

	products, orders := p.Schemas()
	issues = append(issues, validateInput("products", p.Products, products,
		schema.ProductID, schema.DepartmentID)...)
	issues = append(issues, validateInput("order_products", p.OrderProducts, orders,
		schema.ProductID, schema.Reordered)...)
	issues = append(issues, validateParser(p.Parser)...)
	issues = append(issues, validateOutputs(p)...)
	issues = append(issues, validateStorage(p.Storage)...)
	issues = append(issues, validateMetrics(p.Metrics)...)

	return issues
}

// validateInput checks the path and the effective schema of one input. The
// join columns must be declared as integers.
func validateInput(name string, in Input, s schema.Schema, joinFields ...string) []Issue {
	var issues []Issue

	if strings.TrimSpace(in.Path) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     name + ".path",
			Message:  "input path must not be empty",
		})
	}

	if err := s.Validate(); err != nil {
		var ute *schema.UnsupportedTypeError
		msg := err.Error()
		if errors.As(err, &ute) {
			msg = fmt.Sprintf("field %q has unsupported type %q; only integer and text are allowed", ute.Field, ute.Type)
		}
		return append(issues, Issue{Severity: SeverityError, Path: name + ".fields", Message: msg})
	}

	for _, f := range joinFields {
		if _, err := s.Require(f, schema.Integer); err != nil {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     name + ".fields",
				Message:  err.Error(),
			})
		}
	}
	return issues
}

// validateParser validates reader options.
func validateParser(p Parser) []Issue {
	var issues []Issue

	comma := p.Options.Rune("comma", ',')
	switch comma {
	case '\r', '\n', '"', 0xFFFD:
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "parser.options.comma",
			Message:  fmt.Sprintf("invalid delimiter %q", comma),
		})
	}
	if s := p.Options.String("comma", ","); len([]rune(s)) > 1 {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "parser.options.comma",
			Message:  fmt.Sprintf("delimiter %q has more than one character; only the first is used", s),
		})
	}
	return issues
}

// validateOutputs checks the report and reject log destinations.
func validateOutputs(p Pipeline) []Issue {
	var issues []Issue

	if strings.TrimSpace(p.Report.Path) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "report.path",
			Message:  "report path must not be empty",
		})
		return issues
	}

	report := filepath.Clean(p.Report.Path)
	for _, other := range []struct{ path, key string }{
		{p.Products.Path, "products.path"},
		{p.OrderProducts.Path, "order_products.path"},
		{p.Rejects.Path, "rejects.path"},
	} {
		if other.path != "" && filepath.Clean(other.path) == report {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "report.path",
				Message:  fmt.Sprintf("report path must differ from %s", other.key),
			})
		}
	}
	return issues
}

// validateStorage validates the optional report sink.
func validateStorage(s Storage) []Issue {
	var issues []Issue

	if strings.TrimSpace(s.Kind) == "" {
		return nil
	}

	known := map[string]struct{}{
		"postgres": {},
		"mysql":    {},
		"mssql":    {},
		"sqlite":   {},
	}
	if _, ok := known[s.Kind]; !ok {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "storage.kind",
			Message:  fmt.Sprintf("unknown storage kind %q", s.Kind),
		})
	}
	if strings.TrimSpace(s.DSN) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "storage.dsn",
			Message:  "storage.dsn must not be empty when storage.kind is set",
		})
	}
	if strings.TrimSpace(s.Table) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "storage.table",
			Message:  "storage.table must not be empty when storage.kind is set",
		})
	}
	return issues
}

// validateMetrics validates the metrics backend selection.
func validateMetrics(m Metrics) []Issue {
	var issues []Issue

	switch m.Backend {
	case "", "none":
	case "pushgateway":
		if strings.TrimSpace(m.PushgatewayURL) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "metrics.pushgateway_url",
				Message:  "pushgateway backend requires a URL",
			})
		}
	case "datadog":
		if strings.TrimSpace(m.StatsdAddr) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "metrics.statsd_addr",
				Message:  "datadog backend requires a DogStatsD address",
			})
		}
	default:
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "metrics.backend",
			Message:  fmt.Sprintf("unknown metrics backend %q; metrics disabled", m.Backend),
		})
	}
	return issues
}
