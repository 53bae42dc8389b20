package ui

import (
	"bytes"
	"fmt"
	"io"
	"net/http"

	"hfcheck/app"
	"hfcheck/domain/quality"
	"hfcheck/internal/errors"

	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (s *Server) handleHealth(c *gin.Context) {
	body := gin.H{"status": "ok"}
	if report, ok := s.Latest(); ok {
		body["latest_run"] = report.RunID
		body["generated_at"] = report.GeneratedAt
	}
	c.JSON(http.StatusOK, body)
}

// handleRunAudit runs an audit; an empty body audits the configured sources
func (s *Server) handleRunAudit(c *gin.Context) {
	var req app.AuditRequest
	if err := c.ShouldBindJSON(&req); err != nil && err != io.EOF {
		s.respondError(c, errors.InvalidInput(fmt.Sprintf("invalid audit request: %v", err)))
		return
	}

	report, err := s.auditor.Run(c.Request.Context(), req)
	if err != nil {
		s.respondError(c, err)
		return
	}

	s.setLatest(report)
	c.JSON(http.StatusOK, report)
}

func (s *Server) handleLatest(c *gin.Context) {
	if report, ok := s.latestOrAbort(c); ok {
		c.JSON(http.StatusOK, report)
	}
}

func (s *Server) handleMissing(c *gin.Context) {
	if report, ok := s.latestOrAbort(c); ok {
		c.JSON(http.StatusOK, report.Missing)
	}
}

func (s *Server) handleChart(c *gin.Context) {
	if report, ok := s.latestOrAbort(c); ok {
		c.JSON(http.StatusOK, report.MissingChart)
	}
}

func (s *Server) handleDuration(c *gin.Context) {
	if report, ok := s.latestOrAbort(c); ok {
		c.JSON(http.StatusOK, gin.H{"check": report.Duration, "table": report.DurationTable})
	}
}

func (s *Server) handleDuplicates(c *gin.Context) {
	if report, ok := s.latestOrAbort(c); ok {
		c.JSON(http.StatusOK, gin.H{"check": report.Duplicates, "table": report.DuplicateTable})
	}
}

func (s *Server) handleModule(c *gin.Context) {
	report, ok := s.latestOrAbort(c)
	if !ok {
		return
	}
	label := c.Param("label")
	module, found := report.Module(label)
	if !found {
		s.respondError(c, errors.NotFound(fmt.Sprintf("module %q", label)))
		return
	}
	c.JSON(http.StatusOK, module)
}

func (s *Server) handleExportXLSX(c *gin.Context) {
	report, ok := s.latestOrAbort(c)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := s.xlsx.Write(report, &buf); err != nil {
		s.respondError(c, errors.Wrap(err, "failed to build workbook"))
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="hfcheck-%s.xlsx"`, report.RunID))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

func (s *Server) handleReportMarkdown(c *gin.Context) {
	if report, ok := s.latestOrAbort(c); ok {
		c.Data(http.StatusOK, "text/markdown; charset=utf-8", s.markdown.Markdown(report))
	}
}

func (s *Server) handleReportHTML(c *gin.Context) {
	if report, ok := s.latestOrAbort(c); ok {
		c.Data(http.StatusOK, "text/html; charset=utf-8", s.markdown.HTML(report))
	}
}

func (s *Server) latestOrAbort(c *gin.Context) (*quality.AuditReport, bool) {
	report, ok := s.Latest()
	if !ok {
		s.respondError(c, errors.NotFound("audit report (no audit has run yet)"))
	}
	return report, ok
}

func (s *Server) respondError(c *gin.Context, err error) {
	status := errors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	c.AbortWithStatusJSON(status, gin.H{
		"error": gin.H{
			"code":    errors.GetCode(err),
			"message": err.Error(),
		},
	})
}
