package testkit

import (
	"testing"

	"hfcheck/domain/survey"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSurveyDataGenerator_Deterministic(t *testing.T) {
	config := DefaultSurveyConfig()

	a := NewSurveyDataGenerator(config).Generate()
	b := NewSurveyDataGenerator(config).Generate()

	assert.Equal(t, a.Rows, b.Rows)
	assert.Equal(t, a.CSV(), b.CSV())
}

func TestSurveyDataGenerator_Shape(t *testing.T) {
	config := DefaultSurveyConfig()
	config.RespondentCount = 10
	config.QuestionsPerModule = 2

	gen := NewSurveyDataGenerator(config)
	out := gen.Generate()

	require.Len(t, out.Rows, 11)
	headers := out.Rows[0]
	assert.Equal(t, "SubmissionDate", headers[0])
	assert.Contains(t, headers, "ma_q1")
	assert.Contains(t, headers, "mg_q2")
	assert.Len(t, headers, 10+7*2)
	for _, row := range out.Rows[1:] {
		assert.Len(t, row, len(headers))
	}
}

func TestDatasetBuilder(t *testing.T) {
	ds := NewDatasetBuilder().
		Text("docente").
		Categorical("ma_q1").
		Field("starttime", survey.KindTimestamp).
		Row("D1", "1", Stamp(0)).
		SourceRow("B", "D2", "", Stamp(90)).
		Build()

	require.Equal(t, 2, ds.Len())
	assert.Equal(t, []string{"docente", "ma_q1", "starttime"}, ds.Columns())
	assert.Equal(t, "B", ds.Records[1].Source)
	assert.Equal(t, 1, ds.Records[1].Line)
	assert.True(t, ds.Records[1].Get("ma_q1").IsMissing)
	assert.Equal(t, 90.0, ds.Records[1].Get("starttime").AsTime().Sub(ds.Records[0].Get("starttime").AsTime()).Minutes())
	assert.Len(t, ds.Sources, 2)
}
