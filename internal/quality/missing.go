package quality

import (
	"hfcheck/domain/quality"
	"hfcheck/domain/survey"
)

// ScopeAll names the whole-dataset missing-value report
const ScopeAll = "all"

// MissingValueAnalyzer counts missing values per field
type MissingValueAnalyzer struct{}

// NewMissingValueAnalyzer creates an analyzer
func NewMissingValueAnalyzer() *MissingValueAnalyzer {
	return &MissingValueAnalyzer{}
}

// Analyze reports the missing count and percentage of each field, in the
// given order. With zero rows every percentage is 0.
func (a *MissingValueAnalyzer) Analyze(ds *survey.Dataset, scope string, fields []string) quality.MissingValueReport {
	return a.AnalyzeMasked(ds, scope, fields, nil)
}

// AnalyzeMasked is Analyze with per-record missing masks that replace the
// stored values of the columns they name. A mask shorter than the dataset
// falls back to the stored value for the remaining records.
func (a *MissingValueAnalyzer) AnalyzeMasked(ds *survey.Dataset, scope string, fields []string, masks map[string][]bool) quality.MissingValueReport {
	report := quality.MissingValueReport{
		Scope:     scope,
		TotalRows: ds.Len(),
		Entries:   make([]quality.MissingEntry, len(fields)),
	}

	for i, f := range fields {
		mask, masked := masks[f]
		count := 0
		for j, r := range ds.Records {
			missing := r.Get(f).IsMissing
			if masked && j < len(mask) {
				missing = mask[j]
			}
			if missing {
				count++
			}
		}
		entry := quality.MissingEntry{Field: f, MissingCount: count}
		if report.TotalRows > 0 {
			entry.MissingPct = 100 * float64(count) / float64(report.TotalRows)
		}
		report.Entries[i] = entry
	}
	return report
}

// AnalyzeAll covers every schema column
func (a *MissingValueAnalyzer) AnalyzeAll(ds *survey.Dataset) quality.MissingValueReport {
	return a.Analyze(ds, ScopeAll, ds.Columns())
}

// AnalyzeAllMasked covers every schema column with the given masks applied
func (a *MissingValueAnalyzer) AnalyzeAllMasked(ds *survey.Dataset, masks map[string][]bool) quality.MissingValueReport {
	return a.AnalyzeMasked(ds, ScopeAll, ds.Columns(), masks)
}

// Chart turns a report into a field -> missing count bar series
func (a *MissingValueAnalyzer) Chart(report quality.MissingValueReport) quality.ChartSeries {
	series := quality.ChartSeries{
		Title:  "Missing values per field",
		Labels: make([]string, len(report.Entries)),
		Values: make([]float64, len(report.Entries)),
	}
	for i, e := range report.Entries {
		series.Labels[i] = e.Field
		series.Values[i] = float64(e.MissingCount)
	}
	return series
}
