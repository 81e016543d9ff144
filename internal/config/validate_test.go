package config

import (
	"strings"
	"testing"

	"purchaseanalytics/internal/schema"
)

// hasIssue reports whether issues contains an Issue with the given severity,
// path, and a Message containing msgSubstr.
func hasIssue(t *testing.T, issues []Issue, sev IssueSeverity, path, msgSubstr string) bool {
	t.Helper()
	for _, iss := range issues {
		if iss.Severity == sev && iss.Path == path && strings.Contains(iss.Message, msgSubstr) {
			return true
		}
	}
	return false
}

func validPipeline() Pipeline {
	p := Default()
	p.Products.Path = "in/products.csv"
	p.OrderProducts.Path = "in/order_products.csv"
	p.Report.Path = "out/report.csv"
	return p
}

/*
TestValidatePipeline_ValidMinimal verifies that a well-formed pipeline produces
no issues (errors or warnings).
*/
func TestValidatePipeline_ValidMinimal(t *testing.T) {
	t.Parallel()

	if issues := ValidatePipeline(validPipeline()); len(issues) != 0 {
		t.Fatalf("expected no issues, got %+v", issues)
	}
}

func TestValidatePipeline_Cases(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(p *Pipeline)
		sev    IssueSeverity
		path   string
		msg    string
	}{
		{
			name:   "empty job",
			mutate: func(p *Pipeline) { p.Job = " " },
			sev:    SeverityError, path: "job", msg: "job must not be empty",
		},
		{
			name:   "missing products path",
			mutate: func(p *Pipeline) { p.Products.Path = "" },
			sev:    SeverityError, path: "products.path", msg: "must not be empty",
		},
		{
			name:   "missing report path",
			mutate: func(p *Pipeline) { p.Report.Path = "" },
			sev:    SeverityError, path: "report.path", msg: "must not be empty",
		},
		{
			name:   "report overwrites input",
			mutate: func(p *Pipeline) { p.Report.Path = "in/./products.csv" },
			sev:    SeverityError, path: "report.path", msg: "must differ from products.path",
		},
		{
			name: "unsupported field type",
			mutate: func(p *Pipeline) {
				p.OrderProducts.Fields = []schema.Field{
					{Name: "product_id", Type: schema.Integer},
					{Name: "reordered", Type: "bool"},
				}
			},
			sev: SeverityError, path: "order_products.fields", msg: `unsupported type "bool"`,
		},
		{
			name: "join field missing",
			mutate: func(p *Pipeline) {
				p.Products.Fields = []schema.Field{{Name: "product_id", Type: schema.Integer}}
			},
			sev: SeverityError, path: "products.fields", msg: `missing field "department_id"`,
		},
		{
			name: "join field is text",
			mutate: func(p *Pipeline) {
				p.Products.Fields = []schema.Field{
					{Name: "product_id", Type: schema.Text},
					{Name: "department_id", Type: schema.Integer},
				}
			},
			sev: SeverityError, path: "products.fields", msg: "must be integer",
		},
		{
			name:   "quote delimiter",
			mutate: func(p *Pipeline) { p.Parser.Options["comma"] = `"` },
			sev:    SeverityError, path: "parser.options.comma", msg: "invalid delimiter",
		},
		{
			name:   "multi-char delimiter",
			mutate: func(p *Pipeline) { p.Parser.Options["comma"] = ";;" },
			sev:    SeverityWarning, path: "parser.options.comma", msg: "only the first is used",
		},
		{
			name:   "unknown storage",
			mutate: func(p *Pipeline) { p.Storage = Storage{Kind: "oracle", DSN: "x", Table: "t"} },
			sev:    SeverityError, path: "storage.kind", msg: "unknown storage kind",
		},
		{
			name:   "storage without dsn",
			mutate: func(p *Pipeline) { p.Storage = Storage{Kind: "sqlite", Table: "t"} },
			sev:    SeverityError, path: "storage.dsn", msg: "must not be empty",
		},
		{
			name:   "storage without table",
			mutate: func(p *Pipeline) { p.Storage = Storage{Kind: "postgres", DSN: "postgres://x"} },
			sev:    SeverityError, path: "storage.table", msg: "must not be empty",
		},
		{
			name:   "pushgateway without url",
			mutate: func(p *Pipeline) { p.Metrics = Metrics{Backend: "pushgateway"} },
			sev:    SeverityError, path: "metrics.pushgateway_url", msg: "requires a URL",
		},
		{
			name:   "datadog without addr",
			mutate: func(p *Pipeline) { p.Metrics = Metrics{Backend: "datadog"} },
			sev:    SeverityError, path: "metrics.statsd_addr", msg: "DogStatsD",
		},
		{
			name:   "unknown metrics backend",
			mutate: func(p *Pipeline) { p.Metrics.Backend = "graphite" },
			sev:    SeverityWarning, path: "metrics.backend", msg: "unknown metrics backend",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p := validPipeline()
			tt.mutate(&p)
			issues := ValidatePipeline(p)
			if !hasIssue(t, issues, tt.sev, tt.path, tt.msg) {
				t.Fatalf("expected %s at %s containing %q; got %+v", tt.sev, tt.path, tt.msg, issues)
			}
		})
	}
}

func TestHasErrors(t *testing.T) {
	t.Parallel()

	if HasErrors(nil) {
		t.Fatalf("HasErrors(nil) = true")
	}
	if HasErrors([]Issue{{Severity: SeverityWarning}}) {
		t.Fatalf("HasErrors(warning only) = true")
	}
	if !HasErrors([]Issue{{Severity: SeverityWarning}, {Severity: SeverityError}}) {
		t.Fatalf("HasErrors(with error) = false")
	}
}
