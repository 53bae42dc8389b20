package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Input errors
	ErrSourceUnavailable = errors.New("source unavailable")
	ErrMalformedSource   = fmt.Errorf("%w: malformed content", ErrSourceUnavailable)

	// Recoverable cell errors, absorbed as missing values
	ErrFieldParse = errors.New("field value could not be coerced")

	// Dataset errors
	ErrEmptyDataset = errors.New("dataset has no rows")
	ErrFieldUnknown = errors.New("field not present in dataset")
)

// FieldParseError describes a single cell that did not coerce to its column kind.
// It is never returned to callers; it is collected and reported as missing data.
type FieldParseError struct {
	Source string `json:"source"`
	Line   int    `json:"line"`
	Field  string `json:"field"`
	Raw    string `json:"raw"`
	Kind   string `json:"kind"`
}

func (e FieldParseError) Error() string {
	return fmt.Sprintf("%s: %s line %d field %s: %q is not %s", ErrFieldParse, e.Source, e.Line, e.Field, e.Raw, e.Kind)
}

func (e FieldParseError) Unwrap() error {
	return ErrFieldParse
}

// Error constructors with context
func NewSourceUnavailableError(source string, err error) error {
	if err == nil {
		return fmt.Errorf("%w: %s", ErrSourceUnavailable, source)
	}
	return fmt.Errorf("%w: %s: %w", ErrSourceUnavailable, source, err)
}

func NewMalformedSourceError(source string, reason string) error {
	return fmt.Errorf("%w: %s: %s", ErrMalformedSource, source, reason)
}

func NewUnknownFieldError(field string) error {
	return fmt.Errorf("%w: %s", ErrFieldUnknown, field)
}

// Error checking helpers
func IsSourceUnavailable(err error) bool {
	return errors.Is(err, ErrSourceUnavailable)
}

func IsEmptyDataset(err error) bool {
	return errors.Is(err, ErrEmptyDataset)
}

func IsFieldParseError(err error) bool {
	return errors.Is(err, ErrFieldParse)
}
