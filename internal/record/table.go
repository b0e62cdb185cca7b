package record

import "fmt"

// Table is the canonical columnar representation of a data frame. Every
// column holds the same number of scalar cells.
type Table struct {
	columns []string
	cells   map[string][]Value
	rows    int
}

// NewTable builds a table from named columns of equal length.
func NewTable(columns []string, cells map[string][]Value) (*Table, error) {
	t := &Table{cells: make(map[string][]Value, len(columns))}
	for i, name := range columns {
		values, ok := cells[name]
		if !ok {
			return nil, fmt.Errorf("column %q has no values", name)
		}
		if i == 0 {
			t.rows = len(values)
		} else if len(values) != t.rows {
			return nil, fmt.Errorf("column %q has %d rows, expected %d", name, len(values), t.rows)
		}
		if _, dup := t.cells[name]; dup {
			return nil, fmt.Errorf("duplicate column %q", name)
		}
		t.columns = append(t.columns, name)
		t.cells[name] = values
	}
	return t, nil
}

// TableFromRows builds a table from row records. Columns appear in first-seen
// order; a row missing a column contributes a null cell.
func TableFromRows(rows []*Mapping) *Table {
	t := &Table{cells: make(map[string][]Value), rows: len(rows)}
	for _, row := range rows {
		for _, key := range row.Keys() {
			if _, ok := t.cells[key]; !ok {
				t.columns = append(t.columns, key)
				t.cells[key] = make([]Value, len(rows))
			}
		}
	}
	for i, row := range rows {
		for _, key := range row.Keys() {
			v, _ := row.Get(key)
			t.cells[key][i] = v
		}
	}
	return t
}

// Columns returns the column names in order.
func (t *Table) Columns() []string {
	out := make([]string, len(t.columns))
	copy(out, t.columns)
	return out
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return t.rows
}

func (t *Table) Column(name string) ([]Value, bool) {
	if t == nil {
		return nil, false
	}
	values, ok := t.cells[name]
	return values, ok
}

// Strings returns a column as strings. Every cell must be a string scalar.
func (t *Table) Strings(name string) ([]string, error) {
	values, ok := t.Column(name)
	if !ok {
		return nil, fmt.Errorf("missing column %q", name)
	}
	out := make([]string, len(values))
	for i, v := range values {
		s, ok := v.Text()
		if !ok {
			return nil, fmt.Errorf("column %q row %d: expected string, got %s", name, i, describe(v))
		}
		out[i] = s
	}
	return out, nil
}

// Floats returns a column as float64. Null cells are rejected.
func (t *Table) Floats(name string) ([]float64, error) {
	values, ok := t.Column(name)
	if !ok {
		return nil, fmt.Errorf("missing column %q", name)
	}
	out := make([]float64, len(values))
	for i, v := range values {
		f, ok := v.Float()
		if !ok {
			return nil, fmt.Errorf("column %q row %d: expected number, got %s", name, i, describe(v))
		}
		out[i] = f
	}
	return out, nil
}

// Equal compares column order and cell values.
func (t *Table) Equal(other *Table) bool {
	if t == nil || other == nil {
		return t == other
	}
	if t.rows != other.rows || len(t.columns) != len(other.columns) {
		return false
	}
	for i, name := range t.columns {
		if other.columns[i] != name {
			return false
		}
		a, b := t.cells[name], other.cells[name]
		for row := range a {
			if !a[row].Equal(b[row]) {
				return false
			}
		}
	}
	return true
}

func describe(v Value) string {
	if v.Kind() == KindScalar {
		if v.IsNull() {
			return "null"
		}
		return fmt.Sprintf("%T", v.Scalar())
	}
	return v.Kind().String()
}
