package middleware

import (
	"time"

	"hfcheck/internal"

	"github.com/gin-gonic/gin"
)

// RequestLogger logs one line per request through the application logger
func RequestLogger(logger *internal.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		switch {
		case status >= 500:
			logger.Error("[%s %s] %d in %s: %s", c.Request.Method, path, status, time.Since(start), c.Errors.String())
		case status >= 400:
			logger.Warn("[%s %s] %d in %s", c.Request.Method, path, status, time.Since(start))
		default:
			logger.Debug("[%s %s] %d in %s", c.Request.Method, path, status, time.Since(start))
		}
	}
}
