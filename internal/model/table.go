// Package model defines the core domain models used throughout the application.
package model

// Value is a raw spreadsheet cell. A Value with Present unset is an explicit missing cell.
type Value struct {
	Text    string
	Present bool
}

// Text returns a present cell holding s.
func Text(s string) Value {
	return Value{Text: s, Present: true}
}

// Missing returns an explicit missing cell.
func Missing() Value {
	return Value{}
}

// Row maps a column name to its raw value for one transaction row.
type Row map[string]Value

// Get returns the value for field, or a missing value when the field is absent.
func (r Row) Get(field string) Value {
	if r == nil {
		return Value{}
	}
	return r[field]
}

// Clone returns a shallow copy of the row. Values are immutable so this is sufficient.
func (r Row) Clone() Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Table is an ordered sequence of rows parsed from a tabular source.
// Columns keeps the source column order so that exports can preserve it.
type Table struct {
	Columns []string
	Rows    []Row
}

// Clone deep-copies the table so callers can modify the result without aliasing the source.
func (t Table) Clone() Table {
	out := Table{
		Columns: append([]string(nil), t.Columns...),
		Rows:    make([]Row, len(t.Rows)),
	}
	for i, row := range t.Rows {
		out.Rows[i] = row.Clone()
	}
	return out
}

// HasColumn reports whether name is one of the table columns.
func (t Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// AddColumn appends name to the column list if it is not already present.
func (t *Table) AddColumn(name string) {
	if !t.HasColumn(name) {
		t.Columns = append(t.Columns, name)
	}
}
