package testkit

import (
	"strconv"
	"strings"
	"time"

	"hfcheck/domain/survey"
)

// TimestampLayout is the submission timestamp format used by fixtures
const TimestampLayout = "02/01/2006, 15:04:05"

// parseLayout also accepts unpadded day, month and hour
const parseLayout = "2/1/2006, 15:04:05"

// RawTable builds an untyped source table; empty strings are missing cells
func RawTable(name string, headers []string, rows ...[]string) survey.RawTable {
	table := survey.RawTable{
		Summary: survey.SourceSummary{
			Name:     name,
			Location: name + ".csv",
			Format:   survey.FormatCSV,
			Rows:     len(rows),
			Columns:  len(headers),
		},
		Headers: append([]string(nil), headers...),
		Rows:    make([]survey.RawRow, len(rows)),
	}
	for i, r := range rows {
		cells := make([]survey.RawCell, len(headers))
		for j := range headers {
			if j < len(r) && r[j] != "" {
				cells[j] = survey.RawCell{Text: r[j]}
			} else {
				cells[j] = survey.RawCell{Missing: true}
			}
		}
		table.Rows[i] = survey.RawRow{Line: i + 1, Cells: cells}
	}
	return table
}

// DatasetBuilder assembles a typed dataset with explicit field kinds
type DatasetBuilder struct {
	fields  []survey.Field
	rows    [][]string
	sources []string
}

// NewDatasetBuilder creates an empty builder
func NewDatasetBuilder() *DatasetBuilder {
	return &DatasetBuilder{}
}

// Field appends a column of the given kind
func (b *DatasetBuilder) Field(name string, kind survey.FieldKind) *DatasetBuilder {
	b.fields = append(b.fields, survey.Field{Name: name, Kind: kind})
	return b
}

// Numeric appends numeric columns
func (b *DatasetBuilder) Numeric(names ...string) *DatasetBuilder {
	for _, n := range names {
		b.Field(n, survey.KindNumeric)
	}
	return b
}

// Categorical appends categorical columns
func (b *DatasetBuilder) Categorical(names ...string) *DatasetBuilder {
	for _, n := range names {
		b.Field(n, survey.KindCategorical)
	}
	return b
}

// Text appends text columns
func (b *DatasetBuilder) Text(names ...string) *DatasetBuilder {
	for _, n := range names {
		b.Field(n, survey.KindText)
	}
	return b
}

// Row appends a record from source "A"; values follow field order
func (b *DatasetBuilder) Row(values ...string) *DatasetBuilder {
	return b.SourceRow("A", values...)
}

// SourceRow appends a record attributed to a named source
func (b *DatasetBuilder) SourceRow(source string, values ...string) *DatasetBuilder {
	b.rows = append(b.rows, values)
	b.sources = append(b.sources, source)
	return b
}

// Build returns the dataset. Values that do not parse for their kind panic,
// since fixtures are expected to be well-formed.
func (b *DatasetBuilder) Build() *survey.Dataset {
	ds := &survey.Dataset{
		Schema:  survey.NewSchema(b.fields),
		Records: make([]survey.Record, len(b.rows)),
	}

	lines := make(map[string]int)
	for i, r := range b.rows {
		src := b.sources[i]
		lines[src]++
		values := make(map[string]survey.Value, len(b.fields))
		for j, f := range b.fields {
			raw := ""
			if j < len(r) {
				raw = r[j]
			}
			values[f.Name] = typedValue(raw, f.Kind)
		}
		ds.Records[i] = survey.Record{Index: i, Source: src, Line: lines[src], Values: values}
	}

	seen := make(map[string]bool)
	for _, src := range b.sources {
		if !seen[src] {
			seen[src] = true
			ds.Sources = append(ds.Sources, survey.SourceSummary{Name: src, Rows: lines[src], Columns: len(b.fields)})
		}
	}
	return ds
}

func typedValue(raw string, kind survey.FieldKind) survey.Value {
	if raw == "" {
		return survey.NewMissingValue()
	}
	switch kind {
	case survey.KindNumeric, survey.KindCategorical:
		n, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			panic("testkit: " + raw + " is not a number")
		}
		return survey.NewNumericValue(raw, n)
	case survey.KindTimestamp:
		t, err := time.Parse(parseLayout, raw)
		if err != nil {
			panic("testkit: " + raw + " is not a timestamp")
		}
		return survey.NewTimestampValue(raw, t)
	default:
		return survey.NewTextValue(raw)
	}
}

// Stamp formats an offset in minutes from a fixed base as a fixture timestamp
func Stamp(minutes float64) string {
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	return base.Add(time.Duration(minutes * float64(time.Minute))).Format(TimestampLayout)
}
