package ui

import (
	"context"
	"net/http"
	"sync"

	"hfcheck/adapters/excel"
	"hfcheck/adapters/markdown"
	"hfcheck/app"
	"hfcheck/domain/quality"
	"hfcheck/internal"
	"hfcheck/internal/metrics"
	"hfcheck/ui/middleware"

	"github.com/gin-gonic/gin"
)

// Auditor runs one audit over the requested sources
type Auditor interface {
	Run(ctx context.Context, req app.AuditRequest) (*quality.AuditReport, error)
}

// Options configures the HTTP surface. Nil exporters fall back to defaults.
type Options struct {
	GinMode  string
	Workbook *excel.ReportWriter
	Markdown *markdown.ReportRenderer
}

const defaultPrecision = 4

// Server serves the audit API and caches the latest report
type Server struct {
	router   *gin.Engine
	auditor  Auditor
	xlsx     *excel.ReportWriter
	markdown *markdown.ReportRenderer
	metrics  *metrics.Recorder
	logger   *internal.Logger

	latest   *quality.AuditReport
	latestMu sync.RWMutex
}

// NewServer creates a server with its routes registered. recorder may be nil.
func NewServer(auditor Auditor, opts Options, recorder *metrics.Recorder, logger *internal.Logger) *Server {
	if logger == nil {
		logger = internal.NewNopLogger()
	}
	if opts.GinMode != "" {
		gin.SetMode(opts.GinMode)
	}

	if opts.Workbook == nil {
		opts.Workbook = excel.NewReportWriter(defaultPrecision)
	}
	if opts.Markdown == nil {
		opts.Markdown = markdown.NewReportRenderer("", defaultPrecision, 0)
	}

	s := &Server{
		router:   gin.New(),
		auditor:  auditor,
		xlsx:     opts.Workbook,
		markdown: opts.Markdown,
		metrics:  recorder,
		logger:   logger,
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(middleware.RequestLogger(s.logger))
}

// setupRoutes configures the application routes
func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)

	api := s.router.Group("/api/audits")
	api.POST("", s.handleRunAudit)

	latest := api.Group("/latest")
	latest.GET("", s.handleLatest)
	latest.GET("/missing", s.handleMissing)
	latest.GET("/chart", s.handleChart)
	latest.GET("/duration", s.handleDuration)
	latest.GET("/duplicates", s.handleDuplicates)
	latest.GET("/modules/:label", s.handleModule)
	latest.GET("/export.xlsx", s.handleExportXLSX)
	latest.GET("/report.md", s.handleReportMarkdown)
	latest.GET("/report.html", s.handleReportHTML)

	if s.metrics != nil {
		s.router.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	}
}

// Handler exposes the router, mainly for tests and custom listeners
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the web server
func (s *Server) Start(addr string) error {
	s.logger.Info("Starting hfcheck API on http://%s", addr)
	return s.router.Run(addr)
}

// Latest returns the cached report of the last successful audit
func (s *Server) Latest() (*quality.AuditReport, bool) {
	s.latestMu.RLock()
	defer s.latestMu.RUnlock()
	return s.latest, s.latest != nil
}

func (s *Server) setLatest(report *quality.AuditReport) {
	s.latestMu.Lock()
	s.latest = report
	s.latestMu.Unlock()
}
