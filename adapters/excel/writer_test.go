package excel

import (
	"bytes"
	"testing"

	"hfcheck/domain/quality"
	"hfcheck/domain/survey"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleReport() *quality.AuditReport {
	overview := survey.Table{
		Columns: []string{"docente", "duration"},
		Rows: []survey.TableRow{
			{Source: "A", Line: 1, Values: []string{"D1", "1.5"}},
			{Source: "A", Line: 2, Values: []string{"D2", "10"}},
		},
	}
	flagged := survey.Record{Source: "A", Line: 1}

	return &quality.AuditReport{
		TotalRows: 2,
		Overview:  overview,
		Duration: quality.DurationCheck{
			MinMinutes: 2,
			MaxMinutes: 60,
			Flagged: []quality.FlaggedDuration{
				{Record: flagged, Duration: quality.DurationResult{Source: "A", Line: 1, Minutes: 1.5}, Reason: quality.FlagTooShort},
			},
		},
		DurationTable: survey.Table{
			Columns: overview.Columns,
			Rows:    overview.Rows[:1],
		},
		DuplicateTable: survey.Table{Columns: overview.Columns},
		Missing: quality.MissingValueReport{
			Scope:     "all",
			TotalRows: 2,
			Entries: []quality.MissingEntry{
				{Field: "docente", MissingCount: 0, MissingPct: 0},
				{Field: "duration", MissingCount: 1, MissingPct: 50},
			},
		},
		Modules: []quality.ModuleReport{
			{
				Module: quality.Module{Label: "Modulo A", Prefix: "ma_", Fields: []string{"ma_q1"}},
				Missing: quality.MissingValueReport{
					Scope:     "Modulo A",
					TotalRows: 2,
					Entries:   []quality.MissingEntry{{Field: "ma_q1"}},
				},
				Categories: quality.CategoryTable{
					Categories: []float64{1, 2},
					Distributions: []quality.CategoryDistribution{
						{Field: "ma_q1", NonMissing: 2, Percentages: map[float64]float64{1: 50, 2: 50}},
					},
				},
				Descriptive: []quality.DescriptiveStats{
					{
						Field: "ma_q1", Count: 2,
						Mean: quality.Computed(1.5), Std: quality.Computed(0.7071),
						Min: quality.Computed(1), P25: quality.Computed(1.25), P50: quality.Computed(1.5),
						P75: quality.Computed(1.75), Max: quality.Computed(2),
					},
				},
			},
			{
				Module: quality.Module{Label: "Modulo B", Prefix: "mb_"},
			},
		},
	}
}

func TestReportWriterSheets(t *testing.T) {
	report := sampleReport()
	writer := NewReportWriter(4)

	var buf bytes.Buffer
	require.NoError(t, writer.Write(report, &buf))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	expected := []string{"General", "Duration", "Duplicates", "Missing Values", "Modulo A", "Modulo B"}
	assert.Equal(t, expected, f.GetSheetList())
	assert.Equal(t, expected, writer.SheetNames(report))

	v, err := f.GetCellValue(SheetGeneral, "C2")
	require.NoError(t, err)
	assert.Equal(t, "D1", v)

	v, err = f.GetCellValue(SheetDuration, "E2")
	require.NoError(t, err)
	assert.Equal(t, "too_short", v)

	v, err = f.GetCellValue(SheetMissing, "C3")
	require.NoError(t, err)
	assert.Equal(t, "50", v)

	rows, err := f.GetRows("Modulo A")
	require.NoError(t, err)
	// missing table (2 rows), gap, category table (2 rows), gap, descriptive table (2 rows)
	require.Len(t, rows, 8)
	assert.Equal(t, []string{"field", "1", "2"}, rows[3])
	assert.Equal(t, "field", rows[6][0])
	assert.Equal(t, "1.5", rows[7][2])
}

func TestSheetNameSanitized(t *testing.T) {
	assert.Equal(t, "Mod_A", sheetName("Mod/A"))
	assert.Len(t, []rune(sheetName("a very long module label that exceeds the limit")), 31)
	assert.Equal(t, "Module", sheetName(""))
}

func TestModuleSheetNamesUnique(t *testing.T) {
	long := "a very long module label that exceeds the limit"
	module := func(label, field string) quality.ModuleReport {
		return quality.ModuleReport{
			Module: quality.Module{Label: label},
			Missing: quality.MissingValueReport{
				Scope:   label,
				Entries: []quality.MissingEntry{{Field: field}},
			},
		}
	}

	tests := []struct {
		name     string
		labels   []string
		expected []string
	}{
		{
			name:     "distinct labels unchanged",
			labels:   []string{"Modulo A", "Modulo B"},
			expected: []string{"Modulo A", "Modulo B"},
		},
		{
			name:     "fixed sheet names are reserved",
			labels:   []string{"general", "Missing Values"},
			expected: []string{"general (2)", "Missing Values (2)"},
		},
		{
			name:     "repeated labels",
			labels:   []string{"Modulo A", "modulo a", "Modulo A"},
			expected: []string{"Modulo A", "modulo a (2)", "Modulo A (3)"},
		},
		{
			name:     "labels equal after truncation",
			labels:   []string{long, long + " too"},
			expected: []string{"a very long module label that e", "a very long module label th (2)"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			modules := make([]quality.ModuleReport, len(tt.labels))
			for i, l := range tt.labels {
				modules[i] = module(l, "q"+string(rune('1'+i)))
			}
			got := moduleSheetNames(modules)
			assert.Equal(t, tt.expected, got)
			for _, name := range got {
				assert.LessOrEqual(t, len([]rune(name)), 31)
			}
		})
	}

	report := sampleReport()
	report.Modules = []quality.ModuleReport{module("Modulo A", "q1"), module("Modulo A", "q2")}

	var buf bytes.Buffer
	require.NoError(t, NewReportWriter(4).Write(report, &buf))
	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"General", "Duration", "Duplicates", "Missing Values", "Modulo A", "Modulo A (2)"}, f.GetSheetList())
	v, err := f.GetCellValue("Modulo A", "A2")
	require.NoError(t, err)
	assert.Equal(t, "q1", v)
	v, err = f.GetCellValue("Modulo A (2)", "A2")
	require.NoError(t, err)
	assert.Equal(t, "q2", v)
}
