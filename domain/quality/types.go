package quality

import (
	"encoding/json"
	"sort"

	"hfcheck/domain/core"
	"hfcheck/domain/survey"
)

// Module groups the response fields of one questionnaire section
type Module struct {
	Label  string   `json:"label" yaml:"label"`
	Prefix string   `json:"prefix" yaml:"prefix"`
	Fields []string `json:"fields"`
}

// ModuleSpec names a module and the column prefix that selects its fields
type ModuleSpec struct {
	Label  string `json:"label" yaml:"label" validate:"required"`
	Prefix string `json:"prefix" yaml:"prefix" validate:"required"`
}

// Modules is the ordered module mapping
type Modules []Module

// AsMap returns label -> fields
func (m Modules) AsMap() map[string][]string {
	out := make(map[string][]string, len(m))
	for _, mod := range m {
		out[mod.Label] = mod.Fields
	}
	return out
}

// Find returns the module with the given label
func (m Modules) Find(label string) (Module, bool) {
	for _, mod := range m {
		if mod.Label == label {
			return mod, true
		}
	}
	return Module{}, false
}

// MissingEntry is the missing-value accounting of one field
type MissingEntry struct {
	Field        string  `json:"field"`
	MissingCount int     `json:"missing_count"`
	MissingPct   float64 `json:"missing_pct"`
}

// MissingValueReport covers the full dataset or a module subset
type MissingValueReport struct {
	Scope     string         `json:"scope"`
	TotalRows int            `json:"total_rows"`
	Entries   []MissingEntry `json:"entries"`
}

// TotalMissing sums the missing counts of all entries
func (r MissingValueReport) TotalMissing() int {
	total := 0
	for _, e := range r.Entries {
		total += e.MissingCount
	}
	return total
}

// ChartSeries is a bar-chart-ready label/value series
type ChartSeries struct {
	Title  string    `json:"title"`
	Labels []string  `json:"labels"`
	Values []float64 `json:"values"`
}

// CategoryDistribution maps observed codes of one field to their share
type CategoryDistribution struct {
	Field       string              `json:"field"`
	Kind        survey.FieldKind    `json:"kind"`
	NonMissing  int                 `json:"non_missing"`
	Percentages map[float64]float64 `json:"-"`
}

// Percent returns the share of a category, 0 when never observed
func (d CategoryDistribution) Percent(category float64) float64 {
	return d.Percentages[category]
}

func (d CategoryDistribution) MarshalJSON() ([]byte, error) {
	pcts := make(map[string]float64, len(d.Percentages))
	for c, p := range d.Percentages {
		pcts[survey.FormatNumber(c)] = p
	}
	return json.Marshal(struct {
		Field       string             `json:"field"`
		Kind        survey.FieldKind   `json:"kind"`
		NonMissing  int                `json:"non_missing"`
		Percentages map[string]float64 `json:"percentages"`
	}{d.Field, d.Kind, d.NonMissing, pcts})
}

// Categories returns the observed codes in ascending order
func (d CategoryDistribution) Categories() []float64 {
	cats := make([]float64, 0, len(d.Percentages))
	for c := range d.Percentages {
		cats = append(cats, c)
	}
	sort.Float64s(cats)
	return cats
}

// CategoryTable is the field x category matrix, absent cells read as 0
type CategoryTable struct {
	Categories    []float64              `json:"categories"`
	Distributions []CategoryDistribution `json:"distributions"`
}

// Row returns a field's percentages aligned to the table categories
func (t CategoryTable) Row(field string) ([]float64, bool) {
	for _, d := range t.Distributions {
		if d.Field == field {
			row := make([]float64, len(t.Categories))
			for i, c := range t.Categories {
				row[i] = d.Percent(c)
			}
			return row, true
		}
	}
	return nil, false
}

// DescriptiveStats summarizes the non-missing values of one field
type DescriptiveStats struct {
	Field string           `json:"field"`
	Kind  survey.FieldKind `json:"kind"`
	Count int              `json:"count"`
	Mean  Cell             `json:"mean"`
	Std   Cell             `json:"std"`
	Min   Cell             `json:"min"`
	P25   Cell             `json:"p25"`
	P50   Cell             `json:"p50"`
	P75   Cell             `json:"p75"`
	Max   Cell             `json:"max"`
}

// MissingDurationPolicy decides whether records without a duration are flagged
type MissingDurationPolicy string

const (
	MissingDurationExclude MissingDurationPolicy = "exclude"
	MissingDurationFlag    MissingDurationPolicy = "flag"
)

// FlagReason explains why a record was flagged by the duration check
type FlagReason string

const (
	FlagTooShort FlagReason = "too_short"
	FlagTooLong  FlagReason = "too_long"
	FlagMissing  FlagReason = "missing"
)

// DurationResult is the computed interview duration of one record
type DurationResult struct {
	Source       string  `json:"source"`
	Line         int     `json:"line"`
	Minutes      float64 `json:"minutes"`
	Missing      bool    `json:"missing"`
	StartMissing bool    `json:"start_missing"` // start timestamp absent or unparsable
	EndMissing   bool    `json:"end_missing"`
}

// FlaggedDuration is one record outside the accepted range
type FlaggedDuration struct {
	Record   survey.Record  `json:"record"`
	Duration DurationResult `json:"duration"`
	Reason   FlagReason     `json:"reason"`
}

// DurationCheck is the interview-duration anomaly report
type DurationCheck struct {
	MinMinutes    float64               `json:"min_minutes"`
	MaxMinutes    float64               `json:"max_minutes"`
	MissingPolicy MissingDurationPolicy `json:"missing_policy"`
	Durations     []DurationResult      `json:"durations"`
	Flagged       []FlaggedDuration     `json:"flagged"`
	MissingCount  int                   `json:"missing_count"`
}

// FlaggedRecords returns the flagged records in dataset order
func (c DurationCheck) FlaggedRecords() []survey.Record {
	out := make([]survey.Record, len(c.Flagged))
	for i, f := range c.Flagged {
		out[i] = f.Record
	}
	return out
}

// DuplicateGroup is a set of records sharing one identifier key
type DuplicateGroup struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// DuplicateCheck lists every record whose key occurs more than once
type DuplicateCheck struct {
	KeyFields  []string         `json:"key_fields"`
	Groups     []DuplicateGroup `json:"groups"`
	Records    []survey.Record  `json:"records"`
	MissingKey int              `json:"missing_key"`
}

// ModuleReport bundles the per-module tables
type ModuleReport struct {
	Module      Module             `json:"module"`
	Missing     MissingValueReport `json:"missing"`
	Categories  CategoryTable      `json:"categories"`
	Descriptive []DescriptiveStats `json:"descriptive"`
}

// AuditReport is the composed result of one audit run
type AuditReport struct {
	RunID          core.RunID             `json:"run_id"`
	GeneratedAt    core.Timestamp         `json:"generated_at"`
	Sources        []survey.SourceSummary `json:"sources"`
	Schema         []survey.Field         `json:"schema"`
	TotalRows      int                    `json:"total_rows"`
	Overview       survey.Table           `json:"overview"`
	Duration       DurationCheck          `json:"duration"`
	DurationTable  survey.Table           `json:"duration_table"`
	Duplicates     DuplicateCheck         `json:"duplicates"`
	DuplicateTable survey.Table           `json:"duplicate_table"`
	Missing        MissingValueReport     `json:"missing"`
	MissingChart   ChartSeries            `json:"missing_chart"`
	Modules        []ModuleReport         `json:"modules"`
	ParseIssues    int                    `json:"parse_issues"`
	Warnings       []string               `json:"warnings,omitempty"`
	Stages         []StageTiming          `json:"stages,omitempty"`
}

// StageTiming records how long one pipeline stage took
type StageTiming struct {
	Name       string `json:"name"`
	DurationMs int64  `json:"duration_ms"`
}

// Module returns the report of the module with the given label
func (r *AuditReport) Module(label string) (ModuleReport, bool) {
	for _, m := range r.Modules {
		if m.Module.Label == label {
			return m, true
		}
	}
	return ModuleReport{}, false
}
