package quality

import (
	"testing"

	"hfcheck/domain/quality"
	"hfcheck/domain/survey"
	"hfcheck/internal/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescribeKnownSample(t *testing.T) {
	s := Describe("x", survey.KindNumeric, []float64{4, 1, 3, 2})

	assert.Equal(t, 4, s.Count)
	assert.InDelta(t, 2.5, s.Mean.Value, 1e-9)
	assert.InDelta(t, 1.2910, s.Std.Value, 1e-4)
	assert.InDelta(t, 1, s.Min.Value, 1e-9)
	assert.InDelta(t, 1.75, s.P25.Value, 1e-9)
	assert.InDelta(t, 2.5, s.P50.Value, 1e-9)
	assert.InDelta(t, 3.25, s.P75.Value, 1e-9)
	assert.InDelta(t, 4, s.Max.Value, 1e-9)
	for _, c := range []quality.Cell{s.Mean, s.Std, s.Min, s.P25, s.P50, s.P75, s.Max} {
		assert.Equal(t, quality.CellComputed, c.State)
	}
}

func TestQuantile(t *testing.T) {
	tests := []struct {
		name   string
		sorted []float64
		q      float64
		want   float64
	}{
		{"single value", []float64{7}, 0.75, 7},
		{"lower bound", []float64{1, 2, 3}, 0, 1},
		{"upper bound", []float64{1, 2, 3}, 1, 3},
		{"exact rank", []float64{1, 2, 3}, 0.5, 2},
		{"interpolated", []float64{10, 20}, 0.25, 12.5},
		{"five values p75", []float64{1, 2, 3, 4, 10}, 0.75, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Quantile(tt.sorted, tt.q), 1e-9)
		})
	}
}

func TestDescriptiveSummarizerCellStates(t *testing.T) {
	ds := testkit.NewDatasetBuilder().
		Numeric("ma_one", "ma_none").
		Categorical("ma_code").
		Text("ma_text").
		Row("5", "", "1", "a").
		Row("", "", "2", "").
		Row("", "", "2", "c").
		Build()

	out := NewDescriptiveSummarizer().Summarize(ds, ds.Columns())
	require.Len(t, out, 4)

	one := out[0]
	assert.Equal(t, 1, one.Count)
	assert.True(t, one.Mean.Ok())
	assert.Equal(t, 5.0, one.P50.Value)
	assert.Equal(t, quality.CellUndefined, one.Std.State)

	none := out[1]
	assert.Equal(t, 0, none.Count)
	for _, c := range []quality.Cell{none.Mean, none.Std, none.Min, none.P25, none.P50, none.P75, none.Max} {
		assert.Equal(t, quality.CellUndefined, c.State)
	}

	code := out[2]
	assert.Equal(t, 3, code.Count)
	assert.InDelta(t, 5.0/3.0, code.Mean.Value, 1e-9)
	assert.Equal(t, "1.6667", code.Mean.Format(4))

	text := out[3]
	assert.Equal(t, 2, text.Count)
	assert.Equal(t, quality.CellNotApplicable, text.Mean.State)
	assert.Equal(t, "n/a", text.Max.Format(2))
}
