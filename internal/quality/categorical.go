package quality

import (
	"sort"

	"hfcheck/domain/quality"
	"hfcheck/domain/survey"

	"gonum.org/v1/gonum/floats"
)

// CategoricalSummarizer computes normalized value frequencies
type CategoricalSummarizer struct {
	strictKinds bool
}

// NewCategoricalSummarizer creates a summarizer. With strictKinds only
// fields classified categorical are summarized; otherwise every
// numeric-typed field is.
func NewCategoricalSummarizer(strictKinds bool) *CategoricalSummarizer {
	return &CategoricalSummarizer{strictKinds: strictKinds}
}

// Summarize returns the field x category percentage table for the eligible
// fields among the given ones. A field's percentages sum to 100 when it has a
// present value and to 0 otherwise.
func (s *CategoricalSummarizer) Summarize(ds *survey.Dataset, fields []string) quality.CategoryTable {
	table := quality.CategoryTable{
		Categories:    []float64{},
		Distributions: []quality.CategoryDistribution{},
	}
	union := make(map[float64]struct{})

	for _, f := range fields {
		kind := ds.Kind(f)
		if !s.eligible(kind) {
			continue
		}

		var order []float64
		counts := make(map[float64]float64)
		for _, r := range ds.Records {
			v := r.Get(f)
			if !v.IsNumeric() {
				continue
			}
			n := v.AsFloat64()
			if _, seen := counts[n]; !seen {
				order = append(order, n)
			}
			counts[n]++
		}

		weights := make([]float64, len(order))
		for i, c := range order {
			weights[i] = counts[c]
		}
		total := floats.Sum(weights)

		dist := quality.CategoryDistribution{
			Field:       f,
			Kind:        kind,
			NonMissing:  int(total),
			Percentages: make(map[float64]float64, len(order)),
		}
		for i, c := range order {
			dist.Percentages[c] = 100 * weights[i] / total
			union[c] = struct{}{}
		}
		table.Distributions = append(table.Distributions, dist)
	}

	for c := range union {
		table.Categories = append(table.Categories, c)
	}
	sort.Float64s(table.Categories)
	return table
}

func (s *CategoricalSummarizer) eligible(kind survey.FieldKind) bool {
	if s.strictKinds {
		return kind == survey.KindCategorical
	}
	return kind.IsNumeric()
}
