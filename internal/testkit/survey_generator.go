package testkit

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"math/rand"
	"strconv"
	"time"
)

// SurveyGeneratorConfig configures the synthetic survey export generator
type SurveyGeneratorConfig struct {
	RespondentCount    int       `json:"respondent_count"`
	EnumeratorCount    int       `json:"enumerator_count"`
	ModulePrefixes     []string  `json:"module_prefixes"`
	QuestionsPerModule int       `json:"questions_per_module"`
	MaxCode            int       `json:"max_code"`
	MissingRate        float64   `json:"missing_rate"`
	DuplicateRate      float64   `json:"duplicate_rate"`
	ShortRate          float64   `json:"short_rate"`
	LongRate           float64   `json:"long_rate"`
	FirstRespondentID  int       `json:"first_respondent_id"`
	StartDate          time.Time `json:"start_date"`
	Seed               int64     `json:"seed"`
}

// DefaultSurveyConfig returns a small, fully populated configuration
func DefaultSurveyConfig() SurveyGeneratorConfig {
	return SurveyGeneratorConfig{
		RespondentCount:    40,
		EnumeratorCount:    4,
		ModulePrefixes:     []string{"ma_", "mb_", "mc_", "md_", "me_", "mf_", "mg_"},
		QuestionsPerModule: 3,
		MaxCode:            5,
		MissingRate:        0.05,
		DuplicateRate:      0.05,
		ShortRate:          0.05,
		LongRate:           0.05,
		FirstRespondentID:  1000,
		StartDate:          time.Date(2024, 2, 1, 8, 0, 0, 0, time.UTC),
		Seed:               42,
	}
}

// GeneratedSurvey is a synthetic export plus the anomalies planted in it
type GeneratedSurvey struct {
	Rows          [][]string `json:"rows"`
	ShortCount    int        `json:"short_count"`
	LongCount     int        `json:"long_count"`
	DuplicateRows int        `json:"duplicate_rows"`
}

// CSV renders the export as CSV bytes
func (g *GeneratedSurvey) CSV() []byte {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.WriteAll(g.Rows)
	return buf.Bytes()
}

// SurveyDataGenerator generates interview submissions with known anomalies
type SurveyDataGenerator struct {
	config SurveyGeneratorConfig
	rng    *rand.Rand
}

// NewSurveyDataGenerator creates a new generator
func NewSurveyDataGenerator(config SurveyGeneratorConfig) *SurveyDataGenerator {
	return &SurveyDataGenerator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

// Headers returns the export columns in order
func (g *SurveyDataGenerator) Headers() []string {
	headers := []string{
		"SubmissionDate", "starttime", "endtime", "duration",
		"encuestador", "encuestador_other",
		"docente", "docente_int_dui", "docente_int_tel", "docente_int_correo",
	}
	for _, p := range g.config.ModulePrefixes {
		for q := 1; q <= g.config.QuestionsPerModule; q++ {
			headers = append(headers, fmt.Sprintf("%sq%d", p, q))
		}
	}
	return headers
}

// Generate produces the export. Durations are strictly inside or outside
// the 2-60 minute window so planted anomalies are unambiguous.
func (g *SurveyDataGenerator) Generate() *GeneratedSurvey {
	out := &GeneratedSurvey{Rows: [][]string{g.Headers()}}

	var previousID string
	clock := g.config.StartDate
	for i := 0; i < g.config.RespondentCount; i++ {
		id := strconv.Itoa(g.config.FirstRespondentID + i)
		if i > 0 && g.rng.Float64() < g.config.DuplicateRate {
			id = previousID
			out.DuplicateRows++
		}
		previousID = id

		var minutes float64
		switch r := g.rng.Float64(); {
		case r < g.config.ShortRate:
			minutes = 1
			out.ShortCount++
		case r < g.config.ShortRate+g.config.LongRate:
			minutes = 75
			out.LongCount++
		default:
			minutes = float64(10 + g.rng.Intn(40))
		}

		start := clock.Add(time.Duration(g.rng.Intn(240)) * time.Minute)
		end := start.Add(time.Duration(minutes) * time.Minute)
		clock = clock.Add(24 * time.Hour / time.Duration(max(g.config.RespondentCount, 1)))

		row := []string{
			end.Add(5 * time.Minute).Format(TimestampLayout),
			start.Format(TimestampLayout),
			end.Format(TimestampLayout),
			strconv.Itoa(int(minutes * 60)),
			strconv.Itoa(1 + g.rng.Intn(max(g.config.EnumeratorCount, 1))),
			"",
			id,
			fmt.Sprintf("0%08d", g.rng.Intn(1e8)),
			fmt.Sprintf("7%07d", g.rng.Intn(1e7)),
			fmt.Sprintf("docente%s@example.org", id),
		}
		for range g.config.ModulePrefixes {
			for q := 0; q < g.config.QuestionsPerModule; q++ {
				if g.rng.Float64() < g.config.MissingRate {
					row = append(row, "")
					continue
				}
				row = append(row, strconv.Itoa(1+g.rng.Intn(max(g.config.MaxCode, 1))))
			}
		}
		out.Rows = append(out.Rows, row)
	}
	return out
}
