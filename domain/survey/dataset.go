package survey

import (
	"hfcheck/domain/core"
)

// Schema is the ordered set of fields of a dataset
type Schema struct {
	Fields []Field `json:"fields"`
	index  map[string]int
}

// NewSchema builds a schema, assigning positions in the given order
func NewSchema(fields []Field) Schema {
	s := Schema{Fields: make([]Field, len(fields)), index: make(map[string]int, len(fields))}
	for i, f := range fields {
		f.Position = i
		s.Fields[i] = f
		s.index[f.Name] = i
	}
	return s
}

// Columns returns the column names in schema order
func (s Schema) Columns() []string {
	cols := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		cols[i] = f.Name
	}
	return cols
}

// Field looks up a field by name
func (s Schema) Field(name string) (Field, bool) {
	if s.index == nil {
		for _, f := range s.Fields {
			if f.Name == name {
				return f, true
			}
		}
		return Field{}, false
	}
	i, ok := s.index[name]
	if !ok {
		return Field{}, false
	}
	return s.Fields[i], true
}

// Has reports whether the schema contains a column
func (s Schema) Has(name string) bool {
	_, ok := s.Field(name)
	return ok
}

// Dataset is the unified, typed, read-only record set
type Dataset struct {
	Schema      Schema                 `json:"schema"`
	Records     []Record               `json:"-"`
	Sources     []SourceSummary        `json:"sources"`
	ParseIssues []core.FieldParseError `json:"parse_issues,omitempty"`
}

// Len returns the number of records
func (d *Dataset) Len() int {
	return len(d.Records)
}

// Columns returns the schema column names
func (d *Dataset) Columns() []string {
	return d.Schema.Columns()
}

// Column returns every value of a column in record order
func (d *Dataset) Column(name string) ([]Value, error) {
	if !d.Schema.Has(name) {
		return nil, core.NewUnknownFieldError(name)
	}
	values := make([]Value, len(d.Records))
	for i, r := range d.Records {
		values[i] = r.Get(name)
	}
	return values, nil
}

// Kind returns the kind of a column; unknown columns report text
func (d *Dataset) Kind(name string) FieldKind {
	if f, ok := d.Schema.Field(name); ok {
		return f.Kind
	}
	return KindText
}

// Project renders records onto the given columns. Columns absent from the
// schema render empty; overrides replace a column's value per record index.
func (d *Dataset) Project(records []Record, columns []string, overrides map[string][]string) Table {
	table := Table{Columns: append([]string(nil), columns...), Rows: make([]TableRow, len(records))}
	for i, r := range records {
		row := TableRow{Source: r.Source, Line: r.Line, Values: make([]string, len(columns))}
		for j, col := range columns {
			if o, ok := overrides[col]; ok && i < len(o) {
				row.Values[j] = o[i]
				continue
			}
			row.Values[j] = r.Get(col).String()
		}
		table.Rows[i] = row
	}
	return table
}
