package quality

import (
	"testing"

	"hfcheck/adapters/datareadiness/coercer"
	"hfcheck/domain/quality"
	"hfcheck/domain/survey"
	"hfcheck/internal/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func durationDataset() *survey.Dataset {
	return testkit.NewDatasetBuilder().
		Text("docente").
		Field("starttime", survey.KindTimestamp).
		Field("endtime", survey.KindTimestamp).
		Row("D1", testkit.Stamp(0), testkit.Stamp(1.5)).
		Row("D2", testkit.Stamp(0), testkit.Stamp(10)).
		Row("D3", testkit.Stamp(0), testkit.Stamp(61)).
		Row("D4", testkit.Stamp(0), "").
		Build()
}

func TestDurationValidator(t *testing.T) {
	ds := durationDataset()

	tests := []struct {
		name        string
		policy      quality.MissingDurationPolicy
		wantFlagged []string
		wantReasons []quality.FlagReason
	}{
		{
			name:        "missing durations excluded",
			policy:      quality.MissingDurationExclude,
			wantFlagged: []string{"D1", "D3"},
			wantReasons: []quality.FlagReason{quality.FlagTooShort, quality.FlagTooLong},
		},
		{
			name:        "missing durations flagged",
			policy:      quality.MissingDurationFlag,
			wantFlagged: []string{"D1", "D3", "D4"},
			wantReasons: []quality.FlagReason{quality.FlagTooShort, quality.FlagTooLong, quality.FlagMissing},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultDurationOptions()
			opts.MissingPolicy = tt.policy
			check := NewDurationValidator(opts, nil).Validate(ds)

			require.Len(t, check.Durations, 4)
			assert.InDelta(t, 1.5, check.Durations[0].Minutes, 1e-9)
			assert.InDelta(t, 10, check.Durations[1].Minutes, 1e-9)
			assert.InDelta(t, 61, check.Durations[2].Minutes, 1e-9)
			assert.True(t, check.Durations[3].Missing)
			assert.Equal(t, 1, check.MissingCount)

			var ids []string
			var reasons []quality.FlagReason
			for _, f := range check.Flagged {
				ids = append(ids, f.Record.Get("docente").String())
				reasons = append(reasons, f.Reason)
			}
			assert.Equal(t, tt.wantFlagged, ids)
			assert.Equal(t, tt.wantReasons, reasons)
		})
	}
}

func TestDurationBoundsAreStrict(t *testing.T) {
	ds := testkit.NewDatasetBuilder().
		Field("starttime", survey.KindTimestamp).
		Field("endtime", survey.KindTimestamp).
		Row(testkit.Stamp(0), testkit.Stamp(2)).
		Row(testkit.Stamp(0), testkit.Stamp(60)).
		Row(testkit.Stamp(10), testkit.Stamp(5)).
		Build()

	check := NewDurationValidator(DefaultDurationOptions(), nil).Validate(ds)
	require.Len(t, check.Flagged, 1)
	assert.InDelta(t, -5, check.Flagged[0].Duration.Minutes, 1e-9)
	assert.Equal(t, quality.FlagTooShort, check.Flagged[0].Reason)
}

func TestDurationParsesTextTimestamps(t *testing.T) {
	ds := testkit.NewDatasetBuilder().
		Text("starttime", "endtime").
		Row("2024-03-01T09:00:00", "2024-03-01T09:45:30").
		Row("garbage", "2024-03-01T09:45:30").
		Build()

	v := NewDurationValidator(DefaultDurationOptions(), coercer.NewTypeCoercer(coercer.DefaultCoercionConfig()))
	check := v.Validate(ds)

	assert.InDelta(t, 45.5, check.Durations[0].Minutes, 1e-9)
	assert.True(t, check.Durations[1].Missing)
	assert.Empty(t, check.Flagged)
	assert.Equal(t, []string{"45.5", ""}, v.Column(check))
}

func TestDurationAcceptsUnpaddedExportTimestamps(t *testing.T) {
	ds := testkit.NewDatasetBuilder().
		Text("docente", "starttime", "endtime").
		Row("D1", "5/3/2024, 9:05:03", "5/3/2024, 9:47:03").
		Row("D2", "05/03/2024, 09:00:00", "5/3/2024, 9:01:00").
		Build()

	v := NewDurationValidator(DefaultDurationOptions(), coercer.NewTypeCoercer(coercer.DefaultCoercionConfig()))
	check := v.Validate(ds)

	require.Len(t, check.Durations, 2)
	assert.False(t, check.Durations[0].Missing)
	assert.InDelta(t, 42, check.Durations[0].Minutes, 1e-9)
	assert.InDelta(t, 1, check.Durations[1].Minutes, 1e-9)
	assert.Zero(t, check.MissingCount)
	require.Len(t, check.Flagged, 1)
	assert.Equal(t, "D2", check.Flagged[0].Record.Get("docente").String())
	assert.Equal(t, quality.FlagTooShort, check.Flagged[0].Reason)
}

func TestDurationWithoutTimestampColumns(t *testing.T) {
	ds := testkit.NewDatasetBuilder().Text("docente").Row("D1").Build()

	check := NewDurationValidator(DefaultDurationOptions(), nil).Validate(ds)
	assert.Equal(t, 1, check.MissingCount)
	assert.Empty(t, check.Flagged)
}

func TestDurationMissingMasks(t *testing.T) {
	ds := testkit.NewDatasetBuilder().
		Text("starttime", "endtime", "duration").
		Row("2024-03-01T09:00:00", "garbage", "300").
		Row("2024-03-01T09:00:00", "2024-03-01T09:20:00", "").
		Row("", "2024-03-01T09:20:00", "60").
		Build()

	v := NewDurationValidator(DefaultDurationOptions(), coercer.NewTypeCoercer(coercer.DefaultCoercionConfig()))
	check := v.Validate(ds)

	tests := []struct {
		name           string
		durationColumn string
		expected       map[string][]bool
	}{
		{
			name:           "timestamps and duration",
			durationColumn: "duration",
			expected: map[string][]bool{
				"starttime": {false, false, true},
				"endtime":   {true, false, false},
				"duration":  {true, false, true},
			},
		},
		{
			name:           "duration column not in schema",
			durationColumn: "minutes",
			expected: map[string][]bool{
				"starttime": {false, false, true},
				"endtime":   {true, false, false},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, v.MissingMasks(ds, check, tt.durationColumn))
		})
	}
}
