package app

import (
	"context"
	"fmt"
	"time"

	"hfcheck/adapters/datareadiness/coercer"
	"hfcheck/domain/core"
	"hfcheck/domain/quality"
	"hfcheck/domain/survey"
	"hfcheck/internal"
	"hfcheck/internal/dataset"
	"hfcheck/internal/errors"
	"hfcheck/internal/metrics"
	checks "hfcheck/internal/quality"
	"hfcheck/ports"
)

// DurationColumn is the display column replaced by the computed duration
const DurationColumn = "duration"

// DefaultDisplayColumns are the identifying columns shown for each record
func DefaultDisplayColumns() []string {
	return []string{
		"SubmissionDate", "starttime", "endtime", DurationColumn,
		"encuestador", "encuestador_other",
		"docente", "docente_int_dui", "docente_int_tel", "docente_int_correo",
	}
}

// AuditOptions configures the checks of an audit run
type AuditOptions struct {
	Sources           []survey.Source
	Modules           []quality.ModuleSpec
	Duration          checks.DurationOptions
	DuplicateKeys     []string
	StrictCategorical bool
	DisplayColumns    []string
}

// DefaultAuditOptions returns the standard checks with no default sources
func DefaultAuditOptions() AuditOptions {
	return AuditOptions{
		Modules:        checks.DefaultModuleSpecs(),
		Duration:       checks.DefaultDurationOptions(),
		DuplicateKeys:  append([]string(nil), checks.DefaultDuplicateKeys...),
		DisplayColumns: DefaultDisplayColumns(),
	}
}

// AuditRequest selects the sources of one run; empty uses the configured ones
type AuditRequest struct {
	Sources []survey.Source `json:"sources"`
}

// AuditService runs the full data-quality pipeline
type AuditService struct {
	loader      ports.SourceLoaderPort
	merger      *dataset.Merger
	builder     *dataset.SchemaBuilder
	classifier  *checks.Classifier
	duration    *checks.DurationValidator
	duplicates  *checks.DuplicateDetector
	missing     *checks.MissingValueAnalyzer
	categorical *checks.CategoricalSummarizer
	descriptive *checks.DescriptiveSummarizer
	opts        AuditOptions
	metrics     *metrics.Recorder
	logger      *internal.Logger
}

// NewAuditService wires the pipeline. recorder may be nil.
func NewAuditService(loader ports.SourceLoaderPort, typeCoercer *coercer.TypeCoercer, opts AuditOptions, recorder *metrics.Recorder, logger *internal.Logger) *AuditService {
	if logger == nil {
		logger = internal.NewNopLogger()
	}
	if typeCoercer == nil {
		typeCoercer = coercer.NewTypeCoercer(coercer.DefaultCoercionConfig())
	}
	if opts.DisplayColumns == nil {
		opts.DisplayColumns = DefaultDisplayColumns()
	}

	return &AuditService{
		loader:      loader,
		merger:      dataset.NewMerger(&dataset.MergeConfig{ValidateSchema: true}, logger),
		builder:     dataset.NewSchemaBuilder(typeCoercer, logger),
		classifier:  checks.NewClassifier(opts.Modules),
		duration:    checks.NewDurationValidator(opts.Duration, typeCoercer),
		duplicates:  checks.NewDuplicateDetector(opts.DuplicateKeys),
		missing:     checks.NewMissingValueAnalyzer(),
		categorical: checks.NewCategoricalSummarizer(opts.StrictCategorical),
		descriptive: checks.NewDescriptiveSummarizer(),
		opts:        opts,
		metrics:     recorder,
		logger:      logger,
	}
}

// Sources resolves the sources of a request
func (s *AuditService) Sources(req AuditRequest) ([]survey.Source, error) {
	sources := append([]survey.Source(nil), req.Sources...)
	if len(sources) == 0 {
		sources = append(sources, s.opts.Sources...)
	}
	if len(sources) == 0 {
		return nil, errors.InvalidInput("no sources to audit")
	}
	for i, src := range sources {
		if src.Location == "" {
			return nil, errors.InvalidInput(fmt.Sprintf("source %d has no location", i+1))
		}
		if src.Name == "" {
			sources[i].Name = fmt.Sprintf("source_%d", i+1)
		}
	}
	return sources, nil
}

// Run loads the sources and produces the audit report. Only an unavailable
// source is fatal; an empty dataset yields a report with a warning.
func (s *AuditService) Run(ctx context.Context, req AuditRequest) (*quality.AuditReport, error) {
	start := time.Now()
	runner := NewStageRunner(s.logger)

	sources, err := s.Sources(req)
	if err != nil {
		s.metrics.ObserveAudit(metrics.OutcomeFailure, time.Since(start))
		return nil, err
	}

	ds, warnings, err := s.load(ctx, runner, sources)
	if err != nil {
		s.metrics.ObserveAudit(metrics.OutcomeFailure, time.Since(start))
		return nil, errors.Wrap(err, "failed to load survey sources")
	}

	report, err := s.analyze(ctx, runner, ds, warnings)
	if err != nil {
		s.metrics.ObserveAudit(metrics.OutcomeFailure, time.Since(start))
		return nil, errors.Wrap(err, "audit interrupted")
	}
	report.Stages = runner.Timings()

	outcome := metrics.OutcomeSuccess
	if report.TotalRows == 0 {
		outcome = metrics.OutcomeEmpty
	}
	s.metrics.ObserveAudit(outcome, time.Since(start))
	s.metrics.SetRows(report.TotalRows)
	s.metrics.SetFlagged("duration", len(report.Duration.Flagged))
	s.metrics.SetFlagged("duplicates", len(report.Duplicates.Records))

	s.logger.Info("Audit %s finished in %s: %d rows, %d duration flags, %d duplicate records, %d warnings",
		report.RunID, time.Since(start), report.TotalRows, len(report.Duration.Flagged),
		len(report.Duplicates.Records), len(report.Warnings))
	return report, nil
}

// LoadDataset fetches, merges and types the sources without running checks
func (s *AuditService) LoadDataset(ctx context.Context, req AuditRequest) (*survey.Dataset, []string, error) {
	sources, err := s.Sources(req)
	if err != nil {
		return nil, nil, err
	}
	ds, warnings, err := s.load(ctx, NewStageRunner(s.logger), sources)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to load survey sources")
	}
	return ds, warnings, nil
}

// Classify maps the dataset columns to modules
func (s *AuditService) Classify(ds *survey.Dataset) quality.Modules {
	return s.classifier.Classify(ds.Columns())
}

// Analyze runs every check over an already loaded dataset
func (s *AuditService) Analyze(ctx context.Context, ds *survey.Dataset) (*quality.AuditReport, error) {
	runner := NewStageRunner(s.logger)
	report, err := s.analyze(ctx, runner, ds, nil)
	if err != nil {
		return nil, err
	}
	report.Stages = runner.Timings()
	return report, nil
}

func (s *AuditService) load(ctx context.Context, runner *StageRunner, sources []survey.Source) (*survey.Dataset, []string, error) {
	var (
		tables []survey.RawTable
		merged *dataset.MergeResult
		ds     *survey.Dataset
	)

	err := runner.Run(ctx, StageLoad, func() error {
		var err error
		tables, err = s.loader.Load(ctx, sources)
		return err
	})
	if err != nil {
		return nil, nil, err
	}

	err = runner.Run(ctx, StageMerge, func() error {
		var err error
		merged, err = s.merger.Merge(tables...)
		return err
	})
	if err != nil {
		return nil, nil, err
	}

	err = runner.Run(ctx, StageSchema, func() error {
		ds = s.builder.Build(merged.Dataset)
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	return ds, merged.Warnings, nil
}

func (s *AuditService) analyze(ctx context.Context, runner *StageRunner, ds *survey.Dataset, warnings []string) (*quality.AuditReport, error) {
	report := &quality.AuditReport{
		RunID:       core.NewRunID(),
		GeneratedAt: core.Now(),
		Sources:     ds.Sources,
		Schema:      append([]survey.Field(nil), ds.Schema.Fields...),
		TotalRows:   ds.Len(),
		ParseIssues: len(ds.ParseIssues),
		Warnings:    append([]string(nil), warnings...),
	}

	if ds.Len() == 0 {
		s.logger.Warn("Merged dataset is empty, percentages will be zero")
		report.Warnings = append(report.Warnings, core.ErrEmptyDataset.Error())
	}
	if report.ParseIssues > 0 {
		report.Warnings = append(report.Warnings,
			fmt.Sprintf("%d cells did not match their column type and were counted as missing", report.ParseIssues))
	}

	var modules quality.Modules
	stages := []struct {
		name StageName
		fn   func() error
	}{
		{StageClassify, func() error {
			modules = s.Classify(ds)
			return nil
		}},
		{StageDuration, func() error {
			report.Duration = s.duration.Validate(ds)
			if !ds.Schema.Has(s.opts.Duration.StartField) || !ds.Schema.Has(s.opts.Duration.EndField) {
				report.Warnings = append(report.Warnings, fmt.Sprintf("duration check: columns %s/%s not found",
					s.opts.Duration.StartField, s.opts.Duration.EndField))
			}
			return nil
		}},
		{StageDuplicates, func() error {
			report.Duplicates = s.duplicates.Detect(ds)
			return nil
		}},
		{StageMissing, func() error {
			masks := s.duration.MissingMasks(ds, report.Duration, DurationColumn)
			report.Missing = s.missing.AnalyzeAllMasked(ds, masks)
			report.MissingChart = s.missing.Chart(report.Missing)
			return nil
		}},
		{StageModules, func() error {
			report.Modules = make([]quality.ModuleReport, len(modules))
			for i, m := range modules {
				report.Modules[i] = quality.ModuleReport{
					Module:      m,
					Missing:     s.missing.Analyze(ds, m.Label, m.Fields),
					Categories:  s.categorical.Summarize(ds, m.Fields),
					Descriptive: s.descriptive.Summarize(ds, m.Fields),
				}
			}
			return nil
		}},
	}
	for _, st := range stages {
		if err := runner.Run(ctx, st.name, st.fn); err != nil {
			return nil, err
		}
	}

	s.project(ds, report)
	return report, nil
}

// project renders the overview, duration and duplicate tables on the display
// columns, with the computed duration in place of the exported one
func (s *AuditService) project(ds *survey.Dataset, report *quality.AuditReport) {
	columns := make([]string, 0, len(s.opts.DisplayColumns))
	for _, c := range s.opts.DisplayColumns {
		if c == DurationColumn || ds.Schema.Has(c) {
			columns = append(columns, c)
		}
	}

	durations := s.duration.Column(report.Duration)
	durationsOf := func(records []survey.Record) []string {
		out := make([]string, len(records))
		for i, r := range records {
			if r.Index >= 0 && r.Index < len(durations) {
				out[i] = durations[r.Index]
			}
		}
		return out
	}

	report.Overview = ds.Project(ds.Records, columns, map[string][]string{DurationColumn: durations})

	flagged := report.Duration.FlaggedRecords()
	report.DurationTable = ds.Project(flagged, columns, map[string][]string{DurationColumn: durationsOf(flagged)})

	dups := report.Duplicates.Records
	report.DuplicateTable = ds.Project(dups, columns, map[string][]string{DurationColumn: durationsOf(dups)})
}
