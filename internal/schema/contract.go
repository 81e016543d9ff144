// Package schema declares the typed column layouts of the pipeline's input
// files and the fixed header of the department report.
//
// A Schema is an ordered list of fields. Each field is either an integer or a
// text column; nothing else is supported. Schemas are plain values: callers
// receive copies and cannot mutate the built-in declarations.
package schema

import (
	"fmt"
	"strings"
)

// FieldType is the declared type of a column.
type FieldType string

const (
	Integer FieldType = "integer"
	Text    FieldType = "text"
)

// Field describes one column of a delimited file.
type Field struct {
	Name string    `json:"name" mapstructure:"name"`
	Type FieldType `json:"type" mapstructure:"type"`
}

// Schema is the ordered column layout of one file kind.
type Schema struct {
	Name   string  `json:"name" mapstructure:"name"`
	Fields []Field `json:"fields" mapstructure:"fields"`
}

// Well-known column names.
const (
	ProductID       = "product_id"
	ProductName     = "product_name"
	AisleID         = "aisle_id"
	DepartmentID    = "department_id"
	OrderID         = "order_id"
	AddToCartOrder  = "add_to_cart_order"
	Reordered       = "reordered"
	NumberOfOrders  = "number_of_orders"
	NumberOfFirsts  = "number_of_first_orders"
	PercentageField = "percentage"
)

// ReportHeader is the fixed header line of the department report.
var reportHeader = []string{DepartmentID, NumberOfOrders, NumberOfFirsts, PercentageField}

// ReportHeader returns a fresh copy of the report header.
func ReportHeader() []string {
	return append([]string(nil), reportHeader...)
}

// Products returns the layout of the product file.
func Products() Schema {
	return Schema{
		Name: "products",
		Fields: []Field{
			{Name: ProductID, Type: Integer},
			{Name: ProductName, Type: Text},
			{Name: AisleID, Type: Integer},
			{Name: DepartmentID, Type: Integer},
		},
	}
}

// OrderProducts returns the layout of the order-product file.
func OrderProducts() Schema {
	return Schema{
		Name: "order_products",
		Fields: []Field{
			{Name: OrderID, Type: Integer},
			{Name: ProductID, Type: Integer},
			{Name: AddToCartOrder, Type: Integer},
			{Name: Reordered, Type: Integer},
		},
	}
}

// UnsupportedTypeError reports a schema field whose type is outside the
// integer/text allow-list. It signals a broken schema declaration, not bad
// input data, and must halt the run.
type UnsupportedTypeError struct {
	Schema string
	Field  string
	Type   FieldType
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("schema %s: field %q has unsupported type %q", e.Schema, e.Field, e.Type)
}

// NormalizeType maps accepted spellings onto the canonical FieldType.
// The second result is false for anything outside the allow-list.
func NormalizeType(t FieldType) (FieldType, bool) {
	switch strings.ToLower(strings.TrimSpace(string(t))) {
	case "integer", "int":
		return Integer, true
	case "text", "string":
		return Text, true
	default:
		return t, false
	}
}

// Validate checks that the schema is non-empty, that field names are unique,
// and that every field type is supported. A bad type yields an
// *UnsupportedTypeError.
func (s Schema) Validate() error {
	if len(s.Fields) == 0 {
		return fmt.Errorf("schema %s: no fields declared", s.Name)
	}
	seen := make(map[string]struct{}, len(s.Fields))
	for _, f := range s.Fields {
		if strings.TrimSpace(f.Name) == "" {
			return fmt.Errorf("schema %s: field with empty name", s.Name)
		}
		if _, dup := seen[f.Name]; dup {
			return fmt.Errorf("schema %s: duplicate field %q", s.Name, f.Name)
		}
		seen[f.Name] = struct{}{}
		if _, ok := NormalizeType(f.Type); !ok {
			return &UnsupportedTypeError{Schema: s.Name, Field: f.Name, Type: f.Type}
		}
	}
	return nil
}

// Index returns the position of the named field, or -1.
func (s Schema) Index(name string) int {
	for i, f := range s.Fields {
		if f.Name == name {
			return i
		}
	}
	return -1
}

// Require returns the position of the named field and checks its type.
func (s Schema) Require(name string, t FieldType) (int, error) {
	ix := s.Index(name)
	if ix < 0 {
		return -1, fmt.Errorf("schema %s: missing field %q", s.Name, name)
	}
	if got, _ := NormalizeType(s.Fields[ix].Type); got != t {
		return -1, fmt.Errorf("schema %s: field %q must be %s, got %s", s.Name, name, t, s.Fields[ix].Type)
	}
	return ix, nil
}

// Names returns the field names in order.
func (s Schema) Names() []string {
	out := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		out[i] = f.Name
	}
	return out
}
