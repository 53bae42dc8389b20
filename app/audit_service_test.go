package app

import (
	"context"
	"fmt"
	"testing"

	"hfcheck/domain/core"
	"hfcheck/domain/quality"
	"hfcheck/domain/survey"
	"hfcheck/internal/errors"
	"hfcheck/internal/metrics"
	"hfcheck/internal/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLoader struct {
	tables []survey.RawTable
	err    error
	calls  int
}

func (f *fakeLoader) Load(ctx context.Context, sources []survey.Source) ([]survey.RawTable, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.tables, nil
}

var headersA = []string{"SubmissionDate", "starttime", "endtime", "duration", "docente", "ma_q1", "ma_q2", "mb_q1"}
var headersB = []string{"SubmissionDate", "starttime", "endtime", "duration", "docente", "ma_q1", "mc_q1", "extra"}

func surveyTables() []survey.RawTable {
	a := testkit.RawTable("Docentes", headersA,
		[]string{testkit.Stamp(20), testkit.Stamp(0), testkit.Stamp(1.5), "90", "101", "1", "2", "1"},
		[]string{testkit.Stamp(20), testkit.Stamp(0), testkit.Stamp(10), "600", "102", "2", "", "1"},
		[]string{testkit.Stamp(90), testkit.Stamp(0), testkit.Stamp(61), "3660", "103", "1", "2", ""},
	)
	b := testkit.RawTable("Autoadministrada", headersB,
		[]string{testkit.Stamp(30), testkit.Stamp(5), testkit.Stamp(25), "1200", "101", "2", "1", "x"},
		[]string{testkit.Stamp(30), testkit.Stamp(5), "", "", "104", "", "2", ""},
	)
	return []survey.RawTable{a, b}
}

var sources = []survey.Source{
	{Name: "Docentes", Location: "a.csv"},
	{Name: "Autoadministrada", Location: "b.csv"},
}

func TestAuditServiceRun(t *testing.T) {
	loader := &fakeLoader{tables: surveyTables()}
	recorder := metrics.NewRecorder()
	opts := DefaultAuditOptions()
	opts.Sources = sources
	svc := NewAuditService(loader, nil, opts, recorder, nil)

	report, err := svc.Run(context.Background(), AuditRequest{})
	require.NoError(t, err)
	assert.Equal(t, 1, loader.calls)

	_, err = core.ParseRunID(report.RunID.String())
	assert.NoError(t, err)
	assert.Equal(t, 5, report.TotalRows)
	assert.Len(t, report.Sources, 2)
	assert.Len(t, report.Schema, 10)

	// durations: 1.5 (short), 10, 61 (long), 20, missing (excluded)
	require.Len(t, report.Duration.Flagged, 2)
	assert.Equal(t, quality.FlagTooShort, report.Duration.Flagged[0].Reason)
	assert.Equal(t, quality.FlagTooLong, report.Duration.Flagged[1].Reason)
	assert.Equal(t, 1, report.Duration.MissingCount)

	// overview uses the computed duration, not the exported seconds
	assert.Equal(t, []string{"SubmissionDate", "starttime", "endtime", "duration", "docente"}, report.Overview.Columns)
	require.Len(t, report.Overview.Rows, 5)
	assert.Equal(t, "1.5", report.Overview.Rows[0].Values[3])
	assert.Equal(t, "", report.Overview.Rows[4].Values[3])
	require.Len(t, report.DurationTable.Rows, 2)
	assert.Equal(t, "61", report.DurationTable.Rows[1].Values[3])

	// docente 101 appears in both sources
	require.Len(t, report.Duplicates.Records, 2)
	assert.Equal(t, "Docentes", report.DuplicateTable.Rows[0].Source)
	assert.Equal(t, "Autoadministrada", report.DuplicateTable.Rows[1].Source)
	assert.Equal(t, "20", report.DuplicateTable.Rows[1].Values[3])

	require.Len(t, report.Missing.Entries, 10)
	assert.Equal(t, report.Missing.Entries[0].Field, report.MissingChart.Labels[0])

	require.Len(t, report.Modules, 7)
	modA, ok := report.Module("Modulo A")
	require.True(t, ok)
	assert.Equal(t, []string{"ma_q1", "ma_q2"}, modA.Module.Fields)
	assert.Len(t, modA.Missing.Entries, 2)
	row, ok := modA.Categories.Row("ma_q1")
	require.True(t, ok)
	assert.InDeltaSlice(t, []float64{50, 50}, row, 1e-9)
	require.Len(t, modA.Descriptive, 2)
	assert.Equal(t, 4, modA.Descriptive[0].Count)

	modC, _ := report.Module("Modulo C")
	assert.Equal(t, []string{"mc_q1"}, modC.Module.Fields)
	modG, _ := report.Module("Modulo G")
	assert.Empty(t, modG.Module.Fields)

	// schema drift between the two sources is surfaced
	assert.NotEmpty(t, report.Warnings)
	assert.NotEmpty(t, report.Stages)
	assert.Equal(t, string(StageLoad), report.Stages[0].Name)

	families, err := recorder.Registry().Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestAuditServiceSourceUnavailable(t *testing.T) {
	loader := &fakeLoader{err: core.NewSourceUnavailableError("Docentes", fmt.Errorf("HTTP 500"))}
	svc := NewAuditService(loader, nil, DefaultAuditOptions(), nil, nil)

	_, err := svc.Run(context.Background(), AuditRequest{Sources: sources})
	require.Error(t, err)
	assert.True(t, core.IsSourceUnavailable(err))
	assert.Equal(t, errors.CodeSourceUnavailable, errors.GetCode(err))
}

func TestAuditServiceEmptyDataset(t *testing.T) {
	loader := &fakeLoader{tables: []survey.RawTable{
		testkit.RawTable("Docentes", headersA),
		testkit.RawTable("Autoadministrada", headersA),
	}}
	svc := NewAuditService(loader, nil, DefaultAuditOptions(), nil, nil)

	report, err := svc.Run(context.Background(), AuditRequest{Sources: sources})
	require.NoError(t, err)
	assert.Equal(t, 0, report.TotalRows)
	assert.Contains(t, report.Warnings, core.ErrEmptyDataset.Error())
	for _, e := range report.Missing.Entries {
		assert.Equal(t, 0.0, e.MissingPct)
	}
	assert.Empty(t, report.Duration.Flagged)
	assert.Empty(t, report.Duplicates.Records)
}

func TestAuditServiceNoSources(t *testing.T) {
	svc := NewAuditService(&fakeLoader{}, nil, DefaultAuditOptions(), nil, nil)

	_, err := svc.Run(context.Background(), AuditRequest{})
	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))

	_, err = svc.Sources(AuditRequest{Sources: []survey.Source{{Name: "x"}}})
	assert.Error(t, err)

	resolved, err := svc.Sources(AuditRequest{Sources: []survey.Source{{Location: "a.csv"}}})
	require.NoError(t, err)
	assert.Equal(t, "source_1", resolved[0].Name)
}

func TestAuditServiceCancelled(t *testing.T) {
	svc := NewAuditService(&fakeLoader{tables: surveyTables()}, nil, DefaultAuditOptions(), nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Run(ctx, AuditRequest{Sources: sources})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAuditServiceLoadDatasetAndClassify(t *testing.T) {
	svc := NewAuditService(&fakeLoader{tables: surveyTables()}, nil, DefaultAuditOptions(), nil, nil)

	ds, warnings, err := svc.LoadDataset(context.Background(), AuditRequest{Sources: sources})
	require.NoError(t, err)
	assert.Equal(t, 5, ds.Len())
	assert.Len(t, warnings, 2)
	assert.Equal(t, survey.KindTimestamp, ds.Kind("starttime"))
	assert.Equal(t, survey.KindCategorical, ds.Kind("ma_q1"))
	assert.Equal(t, survey.KindText, ds.Kind("extra"))

	modules := svc.Classify(ds)
	assert.Equal(t, []string{"mb_q1"}, modules.AsMap()["Modulo B"])
}

func missingCount(t *testing.T, report quality.MissingValueReport, field string) int {
	t.Helper()
	for _, e := range report.Entries {
		if e.Field == field {
			return e.MissingCount
		}
	}
	require.Failf(t, "field not reported", "%s", field)
	return 0
}

func TestAuditServiceSameSourceNames(t *testing.T) {
	loader := &fakeLoader{tables: []survey.RawTable{
		testkit.RawTable("S", headersA,
			[]string{testkit.Stamp(0), testkit.Stamp(0), testkit.Stamp(1), "60", "d1", "1", "2", "1"},
		),
		testkit.RawTable("S", headersA,
			[]string{testkit.Stamp(0), testkit.Stamp(0), testkit.Stamp(30), "1800", "d1", "2", "1", "2"},
		),
	}}
	svc := NewAuditService(loader, nil, DefaultAuditOptions(), nil, nil)

	report, err := svc.Run(context.Background(), AuditRequest{Sources: []survey.Source{
		{Name: "S", Location: "a.csv"},
		{Name: "S", Location: "b.csv"},
	}})
	require.NoError(t, err)
	require.Equal(t, 2, report.TotalRows)

	require.Len(t, report.DurationTable.Rows, 1)
	assert.Equal(t, "1", report.DurationTable.Rows[0].Values[3])
	assert.Equal(t, "d1", report.DurationTable.Rows[0].Values[4])

	require.Len(t, report.DuplicateTable.Rows, 2)
	assert.Equal(t, "1", report.DuplicateTable.Rows[0].Values[3])
	assert.Equal(t, "30", report.DuplicateTable.Rows[1].Values[3])
}

func TestAuditServiceMissingUsesComputedDuration(t *testing.T) {
	loader := &fakeLoader{tables: []survey.RawTable{
		testkit.RawTable("Docentes", headersA,
			[]string{testkit.Stamp(20), testkit.Stamp(0), "garbage", "600", "101", "1", "2", "1"},
			[]string{testkit.Stamp(20), testkit.Stamp(0), testkit.Stamp(10), "", "102", "2", "1", "1"},
		),
	}}
	svc := NewAuditService(loader, nil, DefaultAuditOptions(), nil, nil)

	report, err := svc.Run(context.Background(), AuditRequest{Sources: sources[:1]})
	require.NoError(t, err)

	tests := []struct {
		field    string
		expected int
	}{
		{"starttime", 0},
		{"endtime", 1},
		{"duration", 1},
		{"docente", 0},
	}
	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			assert.Equal(t, tt.expected, missingCount(t, report.Missing, tt.field))
		})
	}

	// the missing duration is the unparsable row, not the empty export
	assert.True(t, report.Duration.Durations[0].Missing)
	assert.InDelta(t, 10, report.Duration.Durations[1].Minutes, 1e-9)
	assert.Equal(t, 1.0, report.MissingChart.Values[3])
}
