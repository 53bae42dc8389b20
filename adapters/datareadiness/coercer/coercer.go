package coercer

import (
	"math"
	"strconv"
	"strings"
	"time"

	"hfcheck/domain/survey"
)

// DefaultTimestampLayouts lists the accepted submission timestamp formats.
// The first is the survey platform export format (day/month/year, hour:minute:second);
// day, month and hour may be written with one or two digits.
var DefaultTimestampLayouts = []string{
	"2/1/2006, 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// TypeCoercer handles deterministic type coercion of raw cells
type TypeCoercer struct {
	config CoercionConfig
}

// CoercionConfig defines the coercion thresholds and rules
type CoercionConfig struct {
	NumericThreshold   float64  `json:"numeric_threshold" yaml:"numeric_threshold" validate:"gt=0,lte=1"`     // share of values that must parse as numbers
	TimestampThreshold float64  `json:"timestamp_threshold" yaml:"timestamp_threshold" validate:"gt=0,lte=1"` // share of values that must parse as timestamps
	MaxCategories      int      `json:"max_categories" yaml:"max_categories" validate:"gte=0"`                // max distinct integer codes for a categorical field
	TimestampLayouts   []string `json:"timestamp_layouts" yaml:"timestamp_layouts" validate:"min=1"`
}

// DefaultCoercionConfig returns defaults matching a strict dataframe reader:
// a column is numeric only when every present value is a number
func DefaultCoercionConfig() CoercionConfig {
	return CoercionConfig{
		NumericThreshold:   1.0,
		TimestampThreshold: 0.8,
		MaxCategories:      12,
		TimestampLayouts:   append([]string(nil), DefaultTimestampLayouts...),
	}
}

// NewTypeCoercer creates a coercer with the given config
func NewTypeCoercer(config CoercionConfig) *TypeCoercer {
	if len(config.TimestampLayouts) == 0 {
		config.TimestampLayouts = append([]string(nil), DefaultTimestampLayouts...)
	}
	return &TypeCoercer{config: config}
}

// Config returns the active configuration
func (c *TypeCoercer) Config() CoercionConfig {
	return c.config
}

// ParseNumeric parses a plain decimal or scientific number
func (c *TypeCoercer) ParseNumeric(strVal string) (float64, bool) {
	cleanVal := strings.TrimSpace(strVal)
	if cleanVal == "" {
		return 0, false
	}
	val, err := strconv.ParseFloat(cleanVal, 64)
	if err != nil || math.IsInf(val, 0) || math.IsNaN(val) {
		return 0, false
	}
	return val, true
}

// ParseTimestamp tries each configured layout in order
func (c *TypeCoercer) ParseTimestamp(strVal string) (time.Time, bool) {
	cleanVal := strings.TrimSpace(strVal)
	if cleanVal == "" {
		return time.Time{}, false
	}
	for _, layout := range c.config.TimestampLayouts {
		if t, err := time.Parse(layout, cleanVal); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// AnalyzeTypeDistribution counts how many present values parse as each type
// and recommends a field kind
func (c *TypeCoercer) AnalyzeTypeDistribution(cells []survey.RawCell) TypeAnalysis {
	analysis := TypeAnalysis{}
	distinct := make(map[float64]struct{})

	for _, cell := range cells {
		if cell.Missing {
			continue
		}
		analysis.ValidCount++

		if n, ok := c.ParseNumeric(cell.Text); ok {
			analysis.NumericCount++
			if n == math.Trunc(n) {
				analysis.IntegerCount++
			}
			distinct[n] = struct{}{}
		}
		if _, ok := c.ParseTimestamp(cell.Text); ok {
			analysis.TimestampCount++
		}
	}
	analysis.TotalCount = len(cells)
	analysis.DistinctNumeric = len(distinct)

	if analysis.ValidCount > 0 {
		analysis.NumericRatio = float64(analysis.NumericCount) / float64(analysis.ValidCount)
		analysis.TimestampRatio = float64(analysis.TimestampCount) / float64(analysis.ValidCount)
	}

	analysis.RecommendedKind = c.determineRecommendedKind(analysis)
	return analysis
}

// CoerceValue converts a raw cell to the column kind. ok is false when a
// present value does not fit the kind; the returned value is then missing.
func (c *TypeCoercer) CoerceValue(cell survey.RawCell, kind survey.FieldKind) (survey.Value, bool) {
	if cell.Missing {
		return survey.NewMissingValue(), true
	}

	switch kind {
	case survey.KindNumeric, survey.KindCategorical:
		if n, ok := c.ParseNumeric(cell.Text); ok {
			return survey.NewNumericValue(cell.Text, n), true
		}
		return survey.NewMissingValue(), false
	case survey.KindTimestamp:
		if t, ok := c.ParseTimestamp(cell.Text); ok {
			return survey.NewTimestampValue(cell.Text, t), true
		}
		return survey.NewMissingValue(), false
	default:
		return survey.NewTextValue(cell.Text), true
	}
}

// determineRecommendedKind chooses the field kind based on the analysis
func (c *TypeCoercer) determineRecommendedKind(analysis TypeAnalysis) survey.FieldKind {
	// An all-missing column has no evidence against being numeric
	if analysis.ValidCount == 0 {
		return survey.KindNumeric
	}

	if analysis.NumericCount == analysis.ValidCount {
		return c.numericKind(analysis)
	}

	if analysis.TimestampRatio >= c.config.TimestampThreshold {
		return survey.KindTimestamp
	}

	if analysis.NumericRatio >= c.config.NumericThreshold {
		return c.numericKind(analysis)
	}

	return survey.KindText
}

func (c *TypeCoercer) numericKind(analysis TypeAnalysis) survey.FieldKind {
	if analysis.IntegerCount == analysis.NumericCount && analysis.DistinctNumeric <= c.config.MaxCategories {
		return survey.KindCategorical
	}
	return survey.KindNumeric
}

// TypeAnalysis contains the results of type distribution analysis
type TypeAnalysis struct {
	TotalCount      int              `json:"total_count"`
	ValidCount      int              `json:"valid_count"`
	NumericCount    int              `json:"numeric_count"`
	IntegerCount    int              `json:"integer_count"`
	TimestampCount  int              `json:"timestamp_count"`
	DistinctNumeric int              `json:"distinct_numeric"`
	NumericRatio    float64          `json:"numeric_ratio"`
	TimestampRatio  float64          `json:"timestamp_ratio"`
	RecommendedKind survey.FieldKind `json:"recommended_kind"`
}
