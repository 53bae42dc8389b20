package quality

import (
	"encoding/json"
	"strconv"
)

// CellState distinguishes a computed statistic from one that could not or
// should not be computed
type CellState string

const (
	CellComputed      CellState = "computed"
	CellUndefined     CellState = "undefined"
	CellNotApplicable CellState = "not_applicable"
)

// Cell is one statistic of a result table
type Cell struct {
	State CellState `json:"state"`
	Value float64   `json:"value"`
}

// Computed wraps a computed value
func Computed(v float64) Cell {
	return Cell{State: CellComputed, Value: v}
}

// Undefined marks a statistic with no data to compute from
func Undefined() Cell {
	return Cell{State: CellUndefined}
}

// NotApplicable marks a statistic meaningless for the field kind
func NotApplicable() Cell {
	return Cell{State: CellNotApplicable}
}

// Ok reports whether the cell holds a value
func (c Cell) Ok() bool {
	return c.State == CellComputed
}

// Format renders the cell for tables: the value, "NaN" or "n/a"
func (c Cell) Format(precision int) string {
	switch c.State {
	case CellComputed:
		return strconv.FormatFloat(c.Value, 'f', precision, 64)
	case CellNotApplicable:
		return "n/a"
	default:
		return "NaN"
	}
}

func (c Cell) MarshalJSON() ([]byte, error) {
	if c.State == CellComputed {
		return json.Marshal(struct {
			State CellState `json:"state"`
			Value float64   `json:"value"`
		}{c.State, c.Value})
	}
	return json.Marshal(struct {
		State CellState `json:"state"`
	}{c.State})
}
