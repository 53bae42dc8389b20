package quality

import (
	"strings"

	"hfcheck/domain/quality"
	"hfcheck/domain/survey"
)

// DefaultDuplicateKeys identifies a respondent by the docente column
var DefaultDuplicateKeys = []string{"docente"}

const keySeparator = "\x1f"

// DuplicateDetector finds records sharing an identifier key
type DuplicateDetector struct {
	keyFields []string
}

// NewDuplicateDetector creates a detector over the given key fields; an empty
// list selects DefaultDuplicateKeys
func NewDuplicateDetector(keyFields []string) *DuplicateDetector {
	if len(keyFields) == 0 {
		keyFields = DefaultDuplicateKeys
	}
	return &DuplicateDetector{keyFields: append([]string(nil), keyFields...)}
}

// Detect returns every record whose key occurs two or more times, in dataset
// order, with one group per repeated key in order of first occurrence.
// Records with any missing key component never count as duplicates.
func (d *DuplicateDetector) Detect(ds *survey.Dataset) quality.DuplicateCheck {
	check := quality.DuplicateCheck{
		KeyFields: append([]string(nil), d.keyFields...),
		Groups:    []quality.DuplicateGroup{},
		Records:   []survey.Record{},
	}

	keys := make([]string, len(ds.Records))
	counts := make(map[string]int)
	var order []string
	for i, r := range ds.Records {
		key, ok := d.key(r)
		if !ok {
			check.MissingKey++
			continue
		}
		keys[i] = key
		if counts[key] == 0 {
			order = append(order, key)
		}
		counts[key]++
	}

	for _, key := range order {
		if counts[key] > 1 {
			check.Groups = append(check.Groups, quality.DuplicateGroup{
				Key:   strings.ReplaceAll(key, keySeparator, " | "),
				Count: counts[key],
			})
		}
	}
	for i, r := range ds.Records {
		if keys[i] != "" && counts[keys[i]] > 1 {
			check.Records = append(check.Records, r)
		}
	}
	return check
}

func (d *DuplicateDetector) key(r survey.Record) (string, bool) {
	parts := make([]string, len(d.keyFields))
	for i, f := range d.keyFields {
		v := r.Get(f)
		k := v.Key()
		if v.IsMissing || k == "" {
			return "", false
		}
		parts[i] = k
	}
	return strings.Join(parts, keySeparator), true
}
