package container

import (
	"fmt"

	"hfcheck/adapters/datareadiness/coercer"
	"hfcheck/adapters/excel"
	"hfcheck/adapters/markdown"
	"hfcheck/adapters/source"
	"hfcheck/app"
	"hfcheck/internal"
	"hfcheck/internal/config"
	"hfcheck/internal/metrics"
	"hfcheck/ports"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config
	Logger *internal.Logger

	// Infrastructure
	Metrics *metrics.Recorder
	Fetcher ports.FetcherPort
	Loader  ports.SourceLoaderPort
	Coercer *coercer.TypeCoercer

	// Audit pipeline and exporters
	Audits   *app.AuditService
	Workbook *excel.ReportWriter
	Markdown *markdown.ReportRenderer
}

// New wires the audit pipeline from the configuration
func New(cfg *config.Config, logger *internal.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if logger == nil {
		logger = internal.NewLogger(internal.ParseLogLevel(cfg.LogLevel))
	}

	c := &Container{
		Config:  cfg,
		Logger:  logger,
		Metrics: metrics.NewRecorder(),
		Coercer: coercer.NewTypeCoercer(cfg.Coercion),
	}
	c.Fetcher = source.NewFetcher(cfg.Fetch.Timeout).WithMaxBytes(cfg.Fetch.MaxBytes)
	c.Loader = source.NewLoader(c.Fetcher, cfg.Fetch.NATokens, logger.With("component", "loader"))
	c.Audits = app.NewAuditService(c.Loader, c.Coercer, cfg.AuditOptions(), c.Metrics, logger.With("component", "audit"))
	c.Workbook = excel.NewReportWriter(cfg.Report.Precision)
	c.Markdown = markdown.NewReportRenderer(cfg.Report.Title, cfg.Report.Precision, cfg.Report.MaxRows)

	return c, nil
}

// Shutdown flushes buffered log output
func (c *Container) Shutdown() {
	c.Logger.Sync()
}
