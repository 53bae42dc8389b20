package source

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// DefaultNATokens are the cell texts read as missing, matching the usual
// dataframe reader defaults
var DefaultNATokens = []string{
	"", "#N/A", "#N/A N/A", "#NA", "-1.#IND", "-1.#QNAN", "-NaN", "-nan",
	"1.#IND", "1.#QNAN", "<NA>", "N/A", "NA", "NULL", "NaN", "None", "n/a",
	"nan", "null",
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ReadCSVRows splits CSV content into records. Ragged rows are returned as-is.
func ReadCSVRows(data []byte) ([][]string, error) {
	data = bytes.TrimPrefix(data, utf8BOM)

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("invalid CSV: %w", err)
		}
		rows = append(rows, record)
	}
	return rows, nil
}

// MangleHeaders makes header names unique: a repeated "x" becomes "x.1", "x.2"
func MangleHeaders(headers []string) []string {
	out := make([]string, len(headers))
	seen := make(map[string]int, len(headers))
	taken := make(map[string]bool, len(headers))
	for _, h := range headers {
		taken[h] = true
	}

	for i, h := range headers {
		n, dup := seen[h]
		if !dup {
			seen[h] = 0
			out[i] = h
			continue
		}
		name := h
		for {
			n++
			name = h + "." + strconv.Itoa(n)
			if !taken[name] {
				break
			}
		}
		seen[h] = n
		taken[name] = true
		out[i] = name
	}
	return out
}

// NASet is a lookup of cell texts that mean "missing"
type NASet map[string]struct{}

// NewNASet builds the lookup; nil tokens select the defaults
func NewNASet(tokens []string) NASet {
	if tokens == nil {
		tokens = DefaultNATokens
	}
	set := make(NASet, len(tokens)+1)
	set[""] = struct{}{}
	for _, t := range tokens {
		set[t] = struct{}{}
	}
	return set
}

// IsMissing reports whether text reads as missing. Matching is exact:
// whitespace-only text is a present value.
func (s NASet) IsMissing(text string) bool {
	_, ok := s[text]
	return ok
}
