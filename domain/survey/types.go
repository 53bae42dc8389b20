package survey

import (
	"hfcheck/domain/core"
)

// FieldKind is the per-column classification assigned once at schema derivation
type FieldKind string

const (
	KindNumeric     FieldKind = "numeric"
	KindCategorical FieldKind = "categorical"
	KindText        FieldKind = "text"
	KindTimestamp   FieldKind = "timestamp"
)

// IsNumeric reports whether fields of this kind are stored as numbers.
// Coded categorical answers are numeric-typed too.
func (k FieldKind) IsNumeric() bool {
	return k == KindNumeric || k == KindCategorical
}

// Field describes one column of the unified dataset
type Field struct {
	Name     string    `json:"name"`
	Kind     FieldKind `json:"kind"`
	Position int       `json:"position"`
}

// Source locates one tabular input
type Source struct {
	Name     string `json:"name" yaml:"name"`
	Location string `json:"location" yaml:"location" validate:"required"`
}

// SourceFormat is the tabular encoding of a fetched source
type SourceFormat string

const (
	FormatCSV  SourceFormat = "csv"
	FormatXLSX SourceFormat = "xlsx"
)

// SourceSummary records what was loaded from one source
type SourceSummary struct {
	Name     string       `json:"name"`
	Location string       `json:"location"`
	Format   SourceFormat `json:"format"`
	Rows     int          `json:"rows"`
	Columns  int          `json:"columns"`
	Hash     core.Hash    `json:"hash"`
}

// RawCell is an untyped cell as read from a source
type RawCell struct {
	Text    string `json:"text"`
	Missing bool   `json:"missing"`
}

// RawRow is one data line of a source, aligned to the table headers
type RawRow struct {
	Line  int       `json:"line"`
	Cells []RawCell `json:"cells"`
}

// RawTable is a parsed but untyped source
type RawTable struct {
	Summary SourceSummary `json:"summary"`
	Headers []string      `json:"headers"`
	Rows    []RawRow      `json:"rows"`
}

// MergedRow is a raw row keyed by column after the union merge
type MergedRow struct {
	Source string             `json:"source"`
	Line   int                `json:"line"`
	Cells  map[string]RawCell `json:"cells"`
}

// RawDataset is the row-wise union of several raw tables
type RawDataset struct {
	Columns []string        `json:"columns"`
	Rows    []MergedRow     `json:"rows"`
	Sources []SourceSummary `json:"sources"`
}

// Record is one interview submission with typed values
type Record struct {
	Index  int              `json:"index"` // position in the merged dataset
	Source string           `json:"source"`
	Line   int              `json:"line"`
	Values map[string]Value `json:"values"`
}

// Get returns the value of a column, or the missing marker when absent
func (r Record) Get(column string) Value {
	if v, ok := r.Values[column]; ok {
		return v
	}
	return NewMissingValue()
}

// Table is a projection of records onto display columns
type Table struct {
	Columns []string   `json:"columns"`
	Rows    []TableRow `json:"rows"`
}

// TableRow is one projected record
type TableRow struct {
	Source string   `json:"source"`
	Line   int      `json:"line"`
	Values []string `json:"values"`
}
