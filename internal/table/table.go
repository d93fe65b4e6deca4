// Package table provides a small in-memory tabular container with an
// explicit per-column typed schema. Rows that violate the schema are
// rejected at append time rather than coerced implicitly.
package table

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
)

// Type is the semantic type of a column.
type Type int

const (
	Int Type = iota
	Float
	String
)

// String returns the human-readable type name.
func (t Type) String() string {
	switch t {
	case Int:
		return "int"
	case Float:
		return "float"
	case String:
		return "string"
	default:
		return "unknown"
	}
}

// Column declares one schema column.
type Column struct {
	Name string
	Type Type
}

// Schema is an ordered list of column declarations.
type Schema []Column

// Index returns the position of the named column, or -1.
func (s Schema) Index(name string) int {
	for i, c := range s {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// Names returns the column names in schema order.
func (s Schema) Names() []string {
	names := make([]string, len(s))
	for i, c := range s {
		names[i] = c.Name
	}
	return names
}

// ErrNull is returned by Coerce for null or blank values.
var ErrNull = eris.New("table: null value")

// Coerce converts a raw value to the given type. A nil value, a blank
// string, or a failed conversion returns an error; the caller is expected
// to drop the offending row.
func Coerce(v any, typ Type) (any, error) {
	if v == nil {
		return nil, ErrNull
	}
	switch typ {
	case Int:
		return coerceInt(v)
	case Float:
		return coerceFloat(v)
	case String:
		return coerceString(v)
	default:
		return nil, eris.Errorf("table: unknown type %d", typ)
	}
}

func coerceInt(v any) (any, error) {
	switch x := v.(type) {
	case int64:
		return x, nil
	case int:
		return int64(x), nil
	case float64:
		if x != math.Trunc(x) {
			return nil, eris.Errorf("table: non-integral value %v", x)
		}
		return int64(x), nil
	case json.Number:
		n, err := x.Int64()
		if err != nil {
			return nil, eris.Wrapf(err, "table: coerce %q to int", x.String())
		}
		return n, nil
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return nil, ErrNull
		}
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, eris.Wrapf(err, "table: coerce %q to int", s)
		}
		return n, nil
	default:
		return nil, eris.Errorf("table: cannot coerce %T to int", v)
	}
}

func coerceFloat(v any) (any, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case int64:
		return float64(x), nil
	case int:
		return float64(x), nil
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return nil, eris.Wrapf(err, "table: coerce %q to float", x.String())
		}
		return f, nil
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return nil, ErrNull
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, eris.Wrapf(err, "table: coerce %q to float", s)
		}
		return f, nil
	default:
		return nil, eris.Errorf("table: cannot coerce %T to float", v)
	}
}

func coerceString(v any) (any, error) {
	switch x := v.(type) {
	case string:
		if x == "" {
			return nil, ErrNull
		}
		return x, nil
	case json.Number:
		return x.String(), nil
	case int64:
		return strconv.FormatInt(x, 10), nil
	case int:
		return strconv.Itoa(x), nil
	case float64:
		// Integral floats (e.g. JSON-decoded ids) must not grow a ".0" suffix.
		if x == math.Trunc(x) && math.Abs(x) < 1e15 {
			return strconv.FormatInt(int64(x), 10), nil
		}
		return strconv.FormatFloat(x, 'f', -1, 64), nil
	default:
		return nil, eris.Errorf("table: cannot coerce %T to string", v)
	}
}

// Table holds rows conforming to a fixed schema.
type Table struct {
	schema Schema
	rows   [][]any
}

// New creates an empty table with the given schema.
func New(schema Schema) *Table {
	return &Table{schema: schema}
}

// Schema returns the table schema.
func (t *Table) Schema() Schema { return t.schema }

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.rows) }

// Row returns the i-th row. The returned slice must not be mutated.
func (t *Table) Row(i int) []any { return t.rows[i] }

// Append coerces vals against the schema and appends the row. A null
// value or a failed coercion returns an error and the row is not added.
func (t *Table) Append(vals []any) error {
	if len(vals) != len(t.schema) {
		return eris.Errorf("table: expected %d values, got %d", len(t.schema), len(vals))
	}
	row := make([]any, len(vals))
	for i, v := range vals {
		cv, err := Coerce(v, t.schema[i].Type)
		if err != nil {
			return eris.Wrapf(err, "table: column %q", t.schema[i].Name)
		}
		row[i] = cv
	}
	t.rows = append(t.rows, row)
	return nil
}

// AppendStrings coerces a record of raw string fields and appends it.
func (t *Table) AppendStrings(fields []string) error {
	vals := make([]any, len(fields))
	for i, f := range fields {
		vals[i] = f
	}
	return t.Append(vals)
}

// Select returns a new table containing only the named columns, in the
// given order. Naming an absent column is a structural error.
func (t *Table) Select(names ...string) (*Table, error) {
	idx := make([]int, len(names))
	schema := make(Schema, len(names))
	for i, name := range names {
		j := t.schema.Index(name)
		if j < 0 {
			return nil, eris.Errorf("table: no such column %q", name)
		}
		idx[i] = j
		schema[i] = t.schema[j]
	}
	out := New(schema)
	out.rows = make([][]any, len(t.rows))
	for r, row := range t.rows {
		proj := make([]any, len(idx))
		for i, j := range idx {
			proj[i] = row[j]
		}
		out.rows[r] = proj
	}
	return out, nil
}

// Filter returns a new table containing the rows for which pred is true.
// The result has its own schema, so a later Convert on either table does
// not retype the other.
func (t *Table) Filter(pred func(row []any) bool) *Table {
	out := New(append(Schema(nil), t.schema...))
	for _, row := range t.rows {
		if pred(row) {
			out.rows = append(out.rows, row)
		}
	}
	return out
}

// Concat appends all rows of other to t. The schemas must be identical.
func (t *Table) Concat(other *Table) error {
	if len(t.schema) != len(other.schema) {
		return eris.Errorf("table: concat schema mismatch: %d vs %d columns",
			len(t.schema), len(other.schema))
	}
	for i := range t.schema {
		if t.schema[i] != other.schema[i] {
			return eris.Errorf("table: concat schema mismatch at column %q", t.schema[i].Name)
		}
	}
	t.rows = append(t.rows, other.rows...)
	return nil
}

// ConvertFunc rewrites one cell value during a column conversion.
type ConvertFunc func(v any) (any, error)

// Convert rewrites the named column with fn and retypes it to typ. Rows
// where fn fails are dropped; the number of dropped rows is returned.
// A missing column is a structural error.
func (t *Table) Convert(name string, typ Type, fn ConvertFunc) (int, error) {
	j := t.schema.Index(name)
	if j < 0 {
		return 0, eris.Errorf("table: no such column %q", name)
	}
	kept := make([][]any, 0, len(t.rows))
	dropped := 0
	for _, row := range t.rows {
		nv, err := fn(row[j])
		if err != nil {
			dropped++
			continue
		}
		cv, err := Coerce(nv, typ)
		if err != nil {
			dropped++
			continue
		}
		// Rows may be shared with a table this one was filtered from, so
		// rewrite into a fresh row rather than in place.
		nr := make([]any, len(row))
		copy(nr, row)
		nr[j] = cv
		kept = append(kept, nr)
	}
	t.rows = kept
	schema := append(Schema(nil), t.schema...)
	schema[j].Type = typ
	t.schema = schema
	return dropped, nil
}

// CellString formats a cell for delimited-text output.
func CellString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}
