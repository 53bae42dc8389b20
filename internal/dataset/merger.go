// Package dataset turns parsed source tables into the unified, typed dataset
// the quality checks read.
//
// Merging is a row-wise union: every row of every source is kept, in source
// order, and the schema is the union of all source columns in first-seen
// order. Rows lacking a column are padded with the missing marker.
package dataset

import (
	"fmt"
	"strings"
	"time"

	"hfcheck/domain/survey"
	"hfcheck/internal"
)

// MergeConfig holds configuration for merge operations
type MergeConfig struct {
	ValidateSchema   bool                                   // Report column drift between sources as warnings
	ProgressCallback func(progress float64, message string) // Progress reporting
}

// MergeResult contains the result of a merge operation
type MergeResult struct {
	Dataset       survey.RawDataset `json:"dataset"`
	RowCount      int               `json:"row_count"`
	ColumnCount   int               `json:"column_count"`
	ExecutionTime time.Duration     `json:"execution_time"`
	Warnings      []string          `json:"warnings,omitempty"`
}

// Merger handles dataset merging operations
type Merger struct {
	config *MergeConfig
	logger *internal.Logger
}

// NewMerger creates a new dataset merger
func NewMerger(config *MergeConfig, logger *internal.Logger) *Merger {
	if config == nil {
		config = &MergeConfig{ValidateSchema: true}
	}
	if logger == nil {
		logger = internal.NewNopLogger()
	}
	return &Merger{config: config, logger: logger}
}

// Merge unions the tables row-wise
func (m *Merger) Merge(tables ...survey.RawTable) (*MergeResult, error) {
	startTime := time.Now()
	reportProgress(m.config, 0, "Starting merge")

	if len(tables) == 0 {
		return nil, fmt.Errorf("no tables provided")
	}

	var warnings []string
	columns := make([]string, 0, len(tables[0].Headers))
	seen := make(map[string]bool)
	for i, table := range tables {
		if i > 0 && m.config.ValidateSchema {
			warnings = append(warnings, m.validateSchemaCompatibility(tables[0], table)...)
		}
		for _, h := range table.Headers {
			if !seen[h] {
				seen[h] = true
				columns = append(columns, h)
			}
		}
	}
	reportProgress(m.config, 10, "Schema union built")

	total := 0
	for _, table := range tables {
		total += len(table.Rows)
	}

	merged := survey.RawDataset{
		Columns: columns,
		Rows:    make([]survey.MergedRow, 0, total),
		Sources: make([]survey.SourceSummary, 0, len(tables)),
	}

	for i, table := range tables {
		for _, row := range table.Rows {
			cells := make(map[string]survey.RawCell, len(columns))
			for j, h := range table.Headers {
				if j < len(row.Cells) {
					cells[h] = row.Cells[j]
				} else {
					cells[h] = survey.RawCell{Missing: true}
				}
			}
			for _, c := range columns {
				if _, ok := cells[c]; !ok {
					cells[c] = survey.RawCell{Missing: true}
				}
			}
			merged.Rows = append(merged.Rows, survey.MergedRow{
				Source: table.Summary.Name,
				Line:   row.Line,
				Cells:  cells,
			})
		}
		merged.Sources = append(merged.Sources, table.Summary)
		reportProgress(m.config, 10+90*float64(i+1)/float64(len(tables)),
			fmt.Sprintf("Merged source %s", table.Summary.Name))
	}

	for _, w := range warnings {
		m.logger.Warn("%s", w)
	}
	m.logger.Debug("Merged %d sources into %d rows x %d columns", len(tables), len(merged.Rows), len(columns))

	return &MergeResult{
		Dataset:       merged,
		RowCount:      len(merged.Rows),
		ColumnCount:   len(columns),
		ExecutionTime: time.Since(startTime),
		Warnings:      warnings,
	}, nil
}

// validateSchemaCompatibility lists columns present in only one of two tables
func (m *Merger) validateSchemaCompatibility(expected, actual survey.RawTable) []string {
	exp := make(map[string]bool, len(expected.Headers))
	for _, h := range expected.Headers {
		exp[h] = true
	}
	act := make(map[string]bool, len(actual.Headers))
	for _, h := range actual.Headers {
		act[h] = true
	}

	var onlyExpected, onlyActual []string
	for _, h := range expected.Headers {
		if !act[h] {
			onlyExpected = append(onlyExpected, h)
		}
	}
	for _, h := range actual.Headers {
		if !exp[h] {
			onlyActual = append(onlyActual, h)
		}
	}

	var warnings []string
	if len(onlyExpected) > 0 {
		warnings = append(warnings, fmt.Sprintf("source %s lacks %d columns of %s: %s",
			actual.Summary.Name, len(onlyExpected), expected.Summary.Name, summarizeColumns(onlyExpected)))
	}
	if len(onlyActual) > 0 {
		warnings = append(warnings, fmt.Sprintf("source %s adds %d columns not in %s: %s",
			actual.Summary.Name, len(onlyActual), expected.Summary.Name, summarizeColumns(onlyActual)))
	}
	return warnings
}

func summarizeColumns(cols []string) string {
	const limit = 5
	if len(cols) <= limit {
		return strings.Join(cols, ", ")
	}
	return fmt.Sprintf("%s and %d more", strings.Join(cols[:limit], ", "), len(cols)-limit)
}

func reportProgress(config *MergeConfig, progress float64, message string) {
	if config != nil && config.ProgressCallback != nil {
		config.ProgressCallback(progress, message)
	}
}
