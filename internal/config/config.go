// Package config defines the configuration model of the purchase analytics
// pipeline and the helpers that load, lint and resolve it.
//
// A Pipeline can be built three ways, in increasing precedence:
//
//  1. Default() supplies the built-in schemas and sane knobs.
//  2. Load(path) overlays an optional JSON/YAML file and PURCHASE_* env vars.
//  3. The CLI overlays its positional arguments and flags.
//
// Example (trimmed, YAML):
//
//	job: purchase_analytics
//	parser:
//	  options: { comma: ",", lazy_quotes: false, check_header: true }
//	report:  { path: output/report.csv, crlf: false }
//	storage: { kind: sqlite, dsn: "file:report.db", table: department_report }
//	metrics: { backend: pushgateway, pushgateway_url: "http://localhost:9091" }
package config

import (
	"strconv"

	"purchaseanalytics/internal/schema"
)

// Pipeline is the top-level configuration of one report run.
type Pipeline struct {
	// Job labels logs and metrics for this run.
	Job string `json:"job" mapstructure:"job"`

	Products      Input `json:"products" mapstructure:"products"`
	OrderProducts Input `json:"order_products" mapstructure:"order_products"`

	Parser  Parser  `json:"parser" mapstructure:"parser"`
	Report  Report  `json:"report" mapstructure:"report"`
	Rejects Rejects `json:"rejects" mapstructure:"rejects"`
	Storage Storage `json:"storage" mapstructure:"storage"`
	Metrics Metrics `json:"metrics" mapstructure:"metrics"`
}

// Input describes one delimited input file.
type Input struct {
	// Path is the local filesystem path to the file.
	Path string `json:"path" mapstructure:"path"`

	// Fields optionally overrides the built-in column layout for this input.
	// The fields the pipeline joins on must still be present.
	Fields []schema.Field `json:"fields,omitempty" mapstructure:"fields"`
}

// Parser carries reader options shared by both inputs. Recognized keys:
//
//	comma (string; first rune used; default ",")
//	lazy_quotes (bool; default false)
//	check_header (bool; default true) warn when a header differs from the schema
type Parser struct {
	Options Options `json:"options" mapstructure:"options"`
}

// Report configures the CSV report output.
type Report struct {
	Path string `json:"path" mapstructure:"path"`
	// CRLF terminates lines with \r\n instead of \n.
	CRLF bool `json:"crlf" mapstructure:"crlf"`
}

// Rejects configures the optional CSV log of skipped rows. Empty Path
// disables it.
type Rejects struct {
	Path string `json:"path" mapstructure:"path"`
}

// Storage optionally persists the report into a SQL table. Empty Kind
// disables it.
type Storage struct {
	// Kind selects the backend: "sqlite", "postgres", "mysql" or "mssql".
	Kind string `json:"kind" mapstructure:"kind"`
	// DSN is passed to the backend driver unchanged.
	DSN string `json:"dsn" mapstructure:"dsn"`
	// Table receives one row per department per run.
	Table string `json:"table" mapstructure:"table"`
}

// Metrics selects the metrics backend.
type Metrics struct {
	// Backend is "none", "pushgateway" or "datadog".
	Backend        string `json:"backend" mapstructure:"backend"`
	PushgatewayURL string `json:"pushgateway_url" mapstructure:"pushgateway_url"`
	StatsdAddr     string `json:"statsd_addr" mapstructure:"statsd_addr"`
	Namespace      string `json:"namespace" mapstructure:"namespace"`
}

const (
	DefaultJob            = "purchase_analytics"
	DefaultTable          = "department_report"
	DefaultPushgatewayURL = "http://localhost:9091"
	DefaultStatsdAddr     = "127.0.0.1:8125"
)

// Default returns a pipeline with no paths set and every knob at its default.
func Default() Pipeline {
	return Pipeline{
		Job: DefaultJob,
		Parser: Parser{Options: Options{
			"comma":        ",",
			"lazy_quotes":  false,
			"check_header": true,
		}},
		Storage: Storage{Table: DefaultTable},
		Metrics: Metrics{
			Backend:        "none",
			PushgatewayURL: DefaultPushgatewayURL,
			StatsdAddr:     DefaultStatsdAddr,
		},
	}
}

// Schemas resolves the effective product and order-product schemas: the
// configured field override when present, otherwise the built-in layout.
func (p Pipeline) Schemas() (products, orderProducts schema.Schema) {
	products = schema.Products()
	if len(p.Products.Fields) > 0 {
		products.Fields = append([]schema.Field(nil), p.Products.Fields...)
	}
	orderProducts = schema.OrderProducts()
	if len(p.OrderProducts.Fields) > 0 {
		orderProducts.Fields = append([]schema.Field(nil), p.OrderProducts.Fields...)
	}
	return products, orderProducts
}

// Options is a small helper to fetch typed values from a free-form map. It
// performs only minimal type coercion and returns the provided default when a
// key is absent or of an unexpected type.
type Options map[string]any

// String returns the string value for key or def if key is missing or not a string.
func (o Options) String(key, def string) string {
	if v, ok := o[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return def
}

// Bool returns the bool value for key or def. Values set through the
// environment arrive as strings and are parsed with strconv.ParseBool.
func (o Options) Bool(key string, def bool) bool {
	if v, ok := o[key]; ok {
		switch b := v.(type) {
		case bool:
			return b
		case string:
			if parsed, err := strconv.ParseBool(b); err == nil {
				return parsed
			}
		}
	}
	return def
}

// Int returns the int value for key or def. JSON numbers arrive as float64,
// YAML numbers as int.
func (o Options) Int(key string, def int) int {
	if v, ok := o[key]; ok {
		switch n := v.(type) {
		case float64:
			return int(n)
		case int:
			return n
		case int64:
			return int(n)
		}
	}
	return def
}

// Rune returns the first rune of a string value for key, or def if key is
// missing or empty.
func (o Options) Rune(key string, def rune) rune {
	if v, ok := o[key]; ok {
		if s, ok := v.(string); ok && len(s) > 0 {
			return []rune(s)[0]
		}
	}
	return def
}
