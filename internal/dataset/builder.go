package dataset

import (
	"hfcheck/adapters/datareadiness/coercer"
	"hfcheck/domain/core"
	"hfcheck/domain/survey"
	"hfcheck/internal"
)

// SchemaBuilder derives field kinds and coerces the merged rows into records
type SchemaBuilder struct {
	coercer *coercer.TypeCoercer
	logger  *internal.Logger
}

// NewSchemaBuilder creates a builder around the given coercer
func NewSchemaBuilder(c *coercer.TypeCoercer, logger *internal.Logger) *SchemaBuilder {
	if c == nil {
		c = coercer.NewTypeCoercer(coercer.DefaultCoercionConfig())
	}
	if logger == nil {
		logger = internal.NewNopLogger()
	}
	return &SchemaBuilder{coercer: c, logger: logger}
}

// Build assigns one kind per column and produces the typed dataset. Cells
// that do not fit their column kind become missing and are listed in
// ParseIssues.
func (b *SchemaBuilder) Build(raw survey.RawDataset) *survey.Dataset {
	fields := make([]survey.Field, len(raw.Columns))
	for i, col := range raw.Columns {
		fields[i] = survey.Field{Name: col, Kind: b.InferKind(raw, col)}
	}
	schema := survey.NewSchema(fields)

	ds := &survey.Dataset{
		Schema:  schema,
		Records: make([]survey.Record, len(raw.Rows)),
		Sources: append([]survey.SourceSummary(nil), raw.Sources...),
	}

	for i, row := range raw.Rows {
		values := make(map[string]survey.Value, len(fields))
		for _, f := range schema.Fields {
			cell, ok := row.Cells[f.Name]
			if !ok {
				cell = survey.RawCell{Missing: true}
			}
			v, ok := b.coercer.CoerceValue(cell, f.Kind)
			if !ok {
				issue := core.FieldParseError{
					Source: row.Source,
					Line:   row.Line,
					Field:  f.Name,
					Raw:    cell.Text,
					Kind:   string(f.Kind),
				}
				b.logger.Debug("%v", issue)
				ds.ParseIssues = append(ds.ParseIssues, issue)
			}
			values[f.Name] = v
		}
		ds.Records[i] = survey.Record{Index: i, Source: row.Source, Line: row.Line, Values: values}
	}

	if n := len(ds.ParseIssues); n > 0 {
		b.logger.Warn("%d cells did not match their column kind and were treated as missing", n)
	}
	return ds
}

// InferKind classifies one column of the merged rows
func (b *SchemaBuilder) InferKind(raw survey.RawDataset, column string) survey.FieldKind {
	cells := make([]survey.RawCell, len(raw.Rows))
	for i, row := range raw.Rows {
		cell, ok := row.Cells[column]
		if !ok {
			cell = survey.RawCell{Missing: true}
		}
		cells[i] = cell
	}
	return b.coercer.AnalyzeTypeDistribution(cells).RecommendedKind
}
