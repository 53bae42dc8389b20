package dataset

import (
	"testing"

	"hfcheck/adapters/datareadiness/coercer"
	"hfcheck/domain/survey"
	"hfcheck/internal/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeDisjointColumns(t *testing.T) {
	a := testkit.RawTable("A", []string{"x", "y"}, []string{"1", "2"}, []string{"3", "4"})
	b := testkit.RawTable("B", []string{"z"}, []string{"9"})

	var progress []float64
	merger := NewMerger(&MergeConfig{
		ValidateSchema:   true,
		ProgressCallback: func(p float64, _ string) { progress = append(progress, p) },
	}, nil)

	result, err := merger.Merge(a, b)
	require.NoError(t, err)

	ds := result.Dataset
	assert.Equal(t, []string{"x", "y", "z"}, ds.Columns)
	require.Len(t, ds.Rows, 3)
	assert.Equal(t, 3, result.RowCount)
	assert.Equal(t, 3, result.ColumnCount)

	// rows of A are padded on z, the row of B on x and y
	assert.True(t, ds.Rows[0].Cells["z"].Missing)
	assert.Equal(t, "3", ds.Rows[1].Cells["x"].Text)
	assert.True(t, ds.Rows[2].Cells["x"].Missing)
	assert.True(t, ds.Rows[2].Cells["y"].Missing)
	assert.Equal(t, "9", ds.Rows[2].Cells["z"].Text)
	assert.Equal(t, "B", ds.Rows[2].Source)
	assert.Equal(t, 1, ds.Rows[2].Line)

	assert.Len(t, result.Warnings, 2)
	assert.Equal(t, 100.0, progress[len(progress)-1])
}

func TestMergeSharedColumnsKeepsFirstSeenOrder(t *testing.T) {
	a := testkit.RawTable("A", []string{"docente", "ma_q1"}, []string{"D1", "1"})
	b := testkit.RawTable("B", []string{"mb_q1", "docente"}, []string{"2", "D2"})

	result, err := NewMerger(nil, nil).Merge(a, b)
	require.NoError(t, err)
	assert.Equal(t, []string{"docente", "ma_q1", "mb_q1"}, result.Dataset.Columns)
	assert.Equal(t, "D2", result.Dataset.Rows[1].Cells["docente"].Text)
	assert.Len(t, result.Dataset.Sources, 2)
}

func TestMergeNoTables(t *testing.T) {
	_, err := NewMerger(nil, nil).Merge()
	assert.Error(t, err)
}

func TestSchemaBuilder(t *testing.T) {
	a := testkit.RawTable("A",
		[]string{"docente", "ma_q1", "ma_q2", "starttime", "notes", "empty"},
		[]string{"D1", "1", "2.5", testkit.Stamp(0), "ok"},
		[]string{"D2", "2", "3.5", testkit.Stamp(10), ""},
		[]string{"D3", "1", "4", testkit.Stamp(20), "3"},
		[]string{"D4", "", "7", "yesterday", ""},
		[]string{"D5", "2", "1", testkit.Stamp(40), ""},
	)

	merged, err := NewMerger(nil, nil).Merge(a)
	require.NoError(t, err)

	ds := NewSchemaBuilder(coercer.NewTypeCoercer(coercer.DefaultCoercionConfig()), nil).Build(merged.Dataset)
	require.Equal(t, 5, ds.Len())

	kinds := map[string]survey.FieldKind{}
	for _, f := range ds.Schema.Fields {
		kinds[f.Name] = f.Kind
	}
	assert.Equal(t, survey.KindText, kinds["docente"])
	assert.Equal(t, survey.KindCategorical, kinds["ma_q1"])
	assert.Equal(t, survey.KindNumeric, kinds["ma_q2"])
	assert.Equal(t, survey.KindTimestamp, kinds["starttime"])
	assert.Equal(t, survey.KindText, kinds["notes"])
	assert.Equal(t, survey.KindNumeric, kinds["empty"])

	// "yesterday" does not parse as a timestamp: it becomes missing and is reported
	require.Len(t, ds.ParseIssues, 1)
	issue := ds.ParseIssues[0]
	assert.Equal(t, "starttime", issue.Field)
	assert.Equal(t, 4, issue.Line)
	assert.Equal(t, "yesterday", issue.Raw)
	assert.True(t, ds.Records[3].Get("starttime").IsMissing)

	assert.Equal(t, 2.5, ds.Records[0].Get("ma_q2").AsFloat64())
	assert.Equal(t, "3", ds.Records[2].Get("notes").String())
}
