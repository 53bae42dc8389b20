package quality

import (
	"testing"

	"hfcheck/internal/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
)

func TestCategoricalSummarizer(t *testing.T) {
	ds := testkit.NewDatasetBuilder().
		Categorical("ma_q1", "ma_q2", "ma_q3").
		Numeric("ma_score").
		Text("ma_notes").
		Row("1", "2", "", "1.5", "x").
		Row("2", "2", "", "2.5", "y").
		Row("1", "3", "", "", "").
		Row("1", "", "", "1.5", "").
		Build()
	fields := ds.Columns()

	t.Run("numeric-typed fields", func(t *testing.T) {
		table := NewCategoricalSummarizer(false).Summarize(ds, fields)

		require.Len(t, table.Distributions, 4)
		assert.Equal(t, []float64{1, 1.5, 2, 2.5, 3}, table.Categories)

		q1 := table.Distributions[0]
		assert.Equal(t, "ma_q1", q1.Field)
		assert.Equal(t, 4, q1.NonMissing)
		assert.InDelta(t, 75, q1.Percent(1), 1e-9)
		assert.InDelta(t, 25, q1.Percent(2), 1e-9)
		assert.Equal(t, 0.0, q1.Percent(3))

		row, ok := table.Row("ma_q2")
		require.True(t, ok)
		assert.InDeltaSlice(t, []float64{0, 0, 100.0 * 2 / 3, 0, 100.0 / 3}, row, 1e-9)

		for _, d := range table.Distributions {
			row, _ := table.Row(d.Field)
			sum := floats.Sum(row)
			if d.NonMissing > 0 {
				assert.InDelta(t, 100, sum, 1e-9, d.Field)
			} else {
				assert.Equal(t, 0.0, sum, d.Field)
			}
		}

		_, ok = table.Row("ma_notes")
		assert.False(t, ok)
	})

	t.Run("strict kinds", func(t *testing.T) {
		table := NewCategoricalSummarizer(true).Summarize(ds, fields)
		require.Len(t, table.Distributions, 3)
		_, ok := table.Row("ma_score")
		assert.False(t, ok)
	})

	t.Run("no eligible fields", func(t *testing.T) {
		table := NewCategoricalSummarizer(false).Summarize(ds, []string{"ma_notes"})
		assert.Empty(t, table.Distributions)
		assert.Empty(t, table.Categories)
	})
}
