package quality

import (
	"time"

	"hfcheck/domain/quality"
	"hfcheck/domain/survey"
)

// TimestampParser parses timestamp text that was not typed at load time
type TimestampParser interface {
	ParseTimestamp(s string) (time.Time, bool)
}

// DurationOptions configures the interview-duration check
type DurationOptions struct {
	StartField    string                        `json:"start_field" yaml:"start_field" validate:"required"`
	EndField      string                        `json:"end_field" yaml:"end_field" validate:"required"`
	MinMinutes    float64                       `json:"min_minutes" yaml:"min_minutes" validate:"gte=0"`
	MaxMinutes    float64                       `json:"max_minutes" yaml:"max_minutes" validate:"gtfield=MinMinutes"`
	MissingPolicy quality.MissingDurationPolicy `json:"missing_policy" yaml:"missing_policy" validate:"oneof=exclude flag"`
}

// DefaultDurationOptions flags interviews shorter than 2 or longer than 60 minutes
func DefaultDurationOptions() DurationOptions {
	return DurationOptions{
		StartField:    "starttime",
		EndField:      "endtime",
		MinMinutes:    2,
		MaxMinutes:    60,
		MissingPolicy: quality.MissingDurationExclude,
	}
}

// DurationValidator computes interview durations and flags outliers
type DurationValidator struct {
	opts   DurationOptions
	parser TimestampParser
}

// NewDurationValidator creates a validator. parser is used for start and end
// values kept as text; it may be nil.
func NewDurationValidator(opts DurationOptions, parser TimestampParser) *DurationValidator {
	if opts.MissingPolicy == "" {
		opts.MissingPolicy = quality.MissingDurationExclude
	}
	return &DurationValidator{opts: opts, parser: parser}
}

// Validate returns every record's duration in minutes and the records whose
// duration is strictly below the minimum or strictly above the maximum.
// A record missing either timestamp has no duration; it is flagged only
// under the flag policy.
func (v *DurationValidator) Validate(ds *survey.Dataset) quality.DurationCheck {
	check := quality.DurationCheck{
		MinMinutes:    v.opts.MinMinutes,
		MaxMinutes:    v.opts.MaxMinutes,
		MissingPolicy: v.opts.MissingPolicy,
		Durations:     make([]quality.DurationResult, len(ds.Records)),
		Flagged:       []quality.FlaggedDuration{},
	}

	for i, r := range ds.Records {
		result := quality.DurationResult{Source: r.Source, Line: r.Line}

		start, okStart := v.timestamp(r.Get(v.opts.StartField))
		end, okEnd := v.timestamp(r.Get(v.opts.EndField))
		result.StartMissing, result.EndMissing = !okStart, !okEnd
		if okStart && okEnd {
			result.Minutes = end.Sub(start).Minutes()
		} else {
			result.Missing = true
			check.MissingCount++
		}
		check.Durations[i] = result

		if reason, flagged := v.classify(result); flagged {
			check.Flagged = append(check.Flagged, quality.FlaggedDuration{
				Record:   r,
				Duration: result,
				Reason:   reason,
			})
		}
	}
	return check
}

// Column renders the durations as display text, empty when missing
func (v *DurationValidator) Column(check quality.DurationCheck) []string {
	out := make([]string, len(check.Durations))
	for i, d := range check.Durations {
		if !d.Missing {
			out[i] = survey.FormatNumber(d.Minutes)
		}
	}
	return out
}

// MissingMasks returns, per column, which records lack a usable value once
// durations are computed: the start and end columns count unparsable
// timestamps as missing and the duration column follows the computed
// duration. Columns absent from the schema are left out.
func (v *DurationValidator) MissingMasks(ds *survey.Dataset, check quality.DurationCheck, durationColumn string) map[string][]bool {
	start := make([]bool, len(check.Durations))
	end := make([]bool, len(check.Durations))
	computed := make([]bool, len(check.Durations))
	for i, d := range check.Durations {
		start[i], end[i], computed[i] = d.StartMissing, d.EndMissing, d.Missing
	}

	masks := make(map[string][]bool, 3)
	if ds.Schema.Has(v.opts.StartField) {
		masks[v.opts.StartField] = start
	}
	if ds.Schema.Has(v.opts.EndField) {
		masks[v.opts.EndField] = end
	}
	if durationColumn != "" && ds.Schema.Has(durationColumn) {
		masks[durationColumn] = computed
	}
	return masks
}

func (v *DurationValidator) classify(d quality.DurationResult) (quality.FlagReason, bool) {
	switch {
	case d.Missing:
		return quality.FlagMissing, v.opts.MissingPolicy == quality.MissingDurationFlag
	case d.Minutes < v.opts.MinMinutes:
		return quality.FlagTooShort, true
	case d.Minutes > v.opts.MaxMinutes:
		return quality.FlagTooLong, true
	default:
		return "", false
	}
}

func (v *DurationValidator) timestamp(val survey.Value) (time.Time, bool) {
	if val.IsTimestamp() {
		return val.AsTime(), true
	}
	if val.IsMissing || v.parser == nil {
		return time.Time{}, false
	}
	return v.parser.ParseTimestamp(val.Raw)
}
