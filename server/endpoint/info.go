package endpoint

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/s3gate/version"
)

// startTime records when the process started for uptime calculation.
var startTime = time.Now()

// Info returns a handler that reports service, bucket and build information.
func Info(serviceName string, extra map[string]any) gin.HandlerFunc {
	return func(c *gin.Context) {
		body := gin.H{
			"service":   serviceName,
			"build":     version.Get(),
			"uptime":    time.Since(startTime).Round(time.Second).String(),
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		}
		for k, v := range extra {
			body[k] = v
		}
		c.JSON(http.StatusOK, body)
	}
}

// Version returns a handler that reports build version information.
func Version() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, version.Get())
	}
}
