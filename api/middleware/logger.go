package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/OldStager01/student-insights/internal/logger"
	"github.com/OldStager01/student-insights/internal/metrics"
)

// RequestLogger logs every request and records it in m when m is not nil.
func RequestLogger(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		if m != nil {
			m.ObserveRequest(route, status, latency)
		}

		fields := map[string]interface{}{
			"status":     status,
			"method":     c.Request.Method,
			"path":       path,
			"latency_ms": latency.Milliseconds(),
			"ip":         c.ClientIP(),
		}

		if query != "" {
			fields["query"] = query
		}

		if len(c.Errors) > 0 {
			fields["errors"] = c.Errors.String()
		}

		entry := logger.WithContext(c.Request.Context()).WithFields(fields)

		switch {
		case status >= 500:
			entry.Error("server error")
		case status >= 400:
			entry.Warn("client error")
		default:
			entry.Debug("request completed")
		}
	}
}
