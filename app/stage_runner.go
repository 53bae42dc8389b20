package app

import (
	"context"
	"fmt"
	"time"

	"hfcheck/domain/quality"
	"hfcheck/internal"
)

// StageName represents a named stage in the audit pipeline
type StageName string

// Pipeline stages, in execution order
const (
	StageLoad       StageName = "load"
	StageMerge      StageName = "merge"
	StageSchema     StageName = "schema"
	StageClassify   StageName = "classify"
	StageDuration   StageName = "duration"
	StageDuplicates StageName = "duplicates"
	StageMissing    StageName = "missing"
	StageModules    StageName = "modules"
)

// StageRunner executes pipeline stages in order and records their timings
type StageRunner struct {
	logger  *internal.Logger
	timings []quality.StageTiming
}

// NewStageRunner creates a new stage runner
func NewStageRunner(logger *internal.Logger) *StageRunner {
	if logger == nil {
		logger = internal.NewNopLogger()
	}
	return &StageRunner{logger: logger}
}

// Run executes one stage unless the context is already done
func (r *StageRunner) Run(ctx context.Context, name StageName, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("stage %s not started: %w", name, err)
	}

	start := time.Now()
	err := fn()
	elapsed := time.Since(start)

	r.timings = append(r.timings, quality.StageTiming{Name: string(name), DurationMs: elapsed.Milliseconds()})
	if err != nil {
		r.logger.Error("Stage %s failed after %s: %v", name, elapsed, err)
		return err
	}
	r.logger.Debug("Stage %s completed in %s", name, elapsed)
	return nil
}

// Timings returns the recorded stage timings
func (r *StageRunner) Timings() []quality.StageTiming {
	return append([]quality.StageTiming(nil), r.timings...)
}
