package survey

import (
	"strconv"
	"strings"
	"time"
)

// Value represents a typed cell with an explicit missing marker
type Value struct {
	Type         ValueType  `json:"type"`
	Raw          string     `json:"raw,omitempty"`
	NumericVal   *float64   `json:"numeric_val,omitempty"`
	TimestampVal *time.Time `json:"timestamp_val,omitempty"`
	IsMissing    bool       `json:"is_missing"`
}

// ValueType defines the storage type for values
type ValueType string

const (
	ValueTypeText      ValueType = "text"
	ValueTypeNumeric   ValueType = "numeric"
	ValueTypeTimestamp ValueType = "timestamp"
	ValueTypeMissing   ValueType = "missing"
)

// NewTextValue creates a text value; empty text is missing
func NewTextValue(raw string) Value {
	if raw == "" {
		return NewMissingValue()
	}
	return Value{Type: ValueTypeText, Raw: raw}
}

// NewNumericValue creates a numeric value, keeping the raw text it came from
func NewNumericValue(raw string, n float64) Value {
	return Value{Type: ValueTypeNumeric, Raw: raw, NumericVal: &n}
}

// NewTimestampValue creates a timestamp value
func NewTimestampValue(raw string, t time.Time) Value {
	return Value{Type: ValueTypeTimestamp, Raw: raw, TimestampVal: &t}
}

// NewMissingValue creates the missing marker
func NewMissingValue() Value {
	return Value{Type: ValueTypeMissing, IsMissing: true}
}

// String returns the display form of the value
func (v Value) String() string {
	switch v.Type {
	case ValueTypeMissing:
		return ""
	case ValueTypeNumeric:
		if v.NumericVal != nil {
			return FormatNumber(*v.NumericVal)
		}
	case ValueTypeTimestamp:
		if v.TimestampVal != nil && v.Raw == "" {
			return v.TimestampVal.Format(time.RFC3339)
		}
	}
	return v.Raw
}

// Key returns the identity used for equality checks; numbers compare by value
func (v Value) Key() string {
	if v.IsMissing {
		return ""
	}
	if v.NumericVal != nil {
		return FormatNumber(*v.NumericVal)
	}
	return strings.TrimSpace(v.Raw)
}

// IsNumeric returns true if the value represents a valid number
func (v Value) IsNumeric() bool {
	return v.Type == ValueTypeNumeric && v.NumericVal != nil
}

// IsTimestamp returns true if the value represents a valid timestamp
func (v Value) IsTimestamp() bool {
	return v.Type == ValueTypeTimestamp && v.TimestampVal != nil
}

// AsFloat64 returns the numeric value as float64, or 0 if not numeric
func (v Value) AsFloat64() float64 {
	if v.NumericVal != nil {
		return *v.NumericVal
	}
	return 0.0
}

// AsTime returns the timestamp, or the zero time if not a timestamp
func (v Value) AsTime() time.Time {
	if v.TimestampVal != nil {
		return *v.TimestampVal
	}
	return time.Time{}
}

// FormatNumber renders a float without trailing zeros ("1", "2.5")
func FormatNumber(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}
