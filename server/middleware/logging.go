package middleware

import (
	"slices"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/s3gate/logger"
)

var healthPaths = []string{"/health", "/live", "/ready"}

// RequestLogger returns a Gin middleware that logs every request with
// method, path, status and duration. Health probes are skipped.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if slices.Contains(healthPaths, c.Request.URL.Path) {
			c.Next()
			return
		}

		start := time.Now()
		defer func() {
			rec := recover()
			status := panicStatus(c, rec)
			path := c.Request.URL.Path
			if q := c.Request.URL.RawQuery; q != "" {
				path = path + "?" + q
			}
			latency := time.Since(start)
			fields := map[string]interface{}{
				"method":             c.Request.Method,
				"path":               path,
				logger.FieldStatus:   status,
				logger.FieldDuration: latency.Milliseconds(),
				"client":             c.ClientIP(),
				"size":               c.Writer.Size(),
			}
			if len(c.Errors) > 0 {
				fields[logger.FieldError] = c.Errors.String()
			}
			if latency > 500*time.Millisecond {
				fields["slow"] = true
			}
			l := log.WithContext(c.Request.Context())
			if isAbort(rec) {
				fields["aborted"] = true
				l.Error("Request aborted", fields)
			} else {
				logByStatus(l, fields, status)
			}
			if rec != nil {
				panic(rec)
			}
		}()
		c.Next()
	}
}

// logByStatus logs request fields at the level matching the status class.
func logByStatus(log *logger.Logger, fields map[string]interface{}, status int) {
	switch {
	case status >= 500:
		log.Error("Request completed", fields)
	case status >= 400:
		log.Warn("Request completed", fields)
	default:
		log.Debug("Request completed", fields)
	}
}
