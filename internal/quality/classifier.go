// Package quality implements the data-quality checks run over a unified
// survey dataset. Every check reads the immutable dataset and returns a new
// result value; none of them mutate their input.
package quality

import (
	"strings"

	"hfcheck/domain/quality"
)

// DefaultModuleSpecs is the questionnaire layout: seven modules, each
// selected by a two-letter column prefix
func DefaultModuleSpecs() []quality.ModuleSpec {
	labels := []string{"A", "B", "C", "D", "E", "F", "G"}
	specs := make([]quality.ModuleSpec, len(labels))
	for i, l := range labels {
		specs[i] = quality.ModuleSpec{
			Label:  "Modulo " + l,
			Prefix: "m" + strings.ToLower(l) + "_",
		}
	}
	return specs
}

// Classifier maps columns to modules by name prefix
type Classifier struct {
	specs []quality.ModuleSpec
}

// NewClassifier creates a classifier; nil specs selects the defaults
func NewClassifier(specs []quality.ModuleSpec) *Classifier {
	if specs == nil {
		specs = DefaultModuleSpecs()
	}
	return &Classifier{specs: append([]quality.ModuleSpec(nil), specs...)}
}

// Specs returns the module specs in order
func (c *Classifier) Specs() []quality.ModuleSpec {
	return append([]quality.ModuleSpec(nil), c.specs...)
}

// Classify returns every module in configured order, including empty ones. Fields
// keep the order of columns; a column matching no prefix is in no module.
func (c *Classifier) Classify(columns []string) quality.Modules {
	modules := make(quality.Modules, len(c.specs))
	for i, spec := range c.specs {
		fields := []string{}
		for _, col := range columns {
			if strings.HasPrefix(col, spec.Prefix) {
				fields = append(fields, col)
			}
		}
		modules[i] = quality.Module{Label: spec.Label, Prefix: spec.Prefix, Fields: fields}
	}
	return modules
}
