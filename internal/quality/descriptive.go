package quality

import (
	"math"
	"sort"

	"hfcheck/domain/quality"
	"hfcheck/domain/survey"

	"github.com/montanaflynn/stats"
)

// DescriptiveSummarizer computes count, mean, std, min, quartiles and max
type DescriptiveSummarizer struct{}

// NewDescriptiveSummarizer creates a summarizer
func NewDescriptiveSummarizer() *DescriptiveSummarizer {
	return &DescriptiveSummarizer{}
}

// Summarize describes each of the given fields in order. Non-numeric fields
// get a count and not-applicable statistics; a field without present values
// gets undefined statistics, and a single value leaves the std undefined.
func (s *DescriptiveSummarizer) Summarize(ds *survey.Dataset, fields []string) []quality.DescriptiveStats {
	out := make([]quality.DescriptiveStats, 0, len(fields))
	for _, f := range fields {
		out = append(out, s.describe(ds, f))
	}
	return out
}

func (s *DescriptiveSummarizer) describe(ds *survey.Dataset, field string) quality.DescriptiveStats {
	kind := ds.Kind(field)

	if !kind.IsNumeric() {
		result := quality.DescriptiveStats{Field: field, Kind: kind}
		for _, r := range ds.Records {
			if !r.Get(field).IsMissing {
				result.Count++
			}
		}
		na := quality.NotApplicable()
		result.Mean, result.Std, result.Min, result.Max = na, na, na, na
		result.P25, result.P50, result.P75 = na, na, na
		return result
	}

	data := make(stats.Float64Data, 0, len(ds.Records))
	for _, r := range ds.Records {
		if v := r.Get(field); v.IsNumeric() {
			data = append(data, v.AsFloat64())
		}
	}
	return Describe(field, kind, data)
}

// Describe computes the summary of a numeric sample
func Describe(field string, kind survey.FieldKind, data []float64) quality.DescriptiveStats {
	result := quality.DescriptiveStats{Field: field, Kind: kind, Count: len(data)}
	undef := quality.Undefined()
	result.Mean, result.Std, result.Min, result.Max = undef, undef, undef, undef
	result.P25, result.P50, result.P75 = undef, undef, undef
	if len(data) == 0 {
		return result
	}

	result.Mean = cell(stats.Mean(data))
	result.Min = cell(stats.Min(data))
	result.Max = cell(stats.Max(data))
	if len(data) > 1 {
		result.Std = cell(stats.StandardDeviationSample(data))
	}

	sorted := append([]float64(nil), data...)
	sort.Float64s(sorted)
	result.P25 = quality.Computed(Quantile(sorted, 0.25))
	result.P50 = quality.Computed(Quantile(sorted, 0.50))
	result.P75 = quality.Computed(Quantile(sorted, 0.75))
	return result
}

// Quantile returns the q-th quantile of sorted data, interpolating linearly
// between the closest ranks: position (n-1)*q, 0-based
func Quantile(sorted []float64, q float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	if n == 1 || q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[n-1]
	}
	pos := float64(n-1) * q
	lo := math.Floor(pos)
	frac := pos - lo
	i := int(lo)
	if i+1 >= n {
		return sorted[n-1]
	}
	return sorted[i] + frac*(sorted[i+1]-sorted[i])
}

func cell(v float64, err error) quality.Cell {
	if err != nil || math.IsNaN(v) {
		return quality.Undefined()
	}
	return quality.Computed(v)
}
