package middleware

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/s3gate/errors"
	"github.com/kbukum/s3gate/logger"
)

// Recovery returns a Gin middleware that recovers from panics, logs the
// stack and answers with an INTERNAL_ERROR body when nothing was written yet.
// http.ErrAbortHandler is re-raised so net/http drops the connection.
func Recovery(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				if isAbort(rec) {
					panic(rec)
				}
				log.WithContext(c.Request.Context()).Error("Panic recovered", map[string]interface{}{
					"error":     fmt.Sprintf("%v", rec),
					"stack":     string(debug.Stack()),
					"path":      c.Request.URL.Path,
					"method":    c.Request.Method,
					"client_ip": c.ClientIP(),
				})
				appErr := errors.Internal(fmt.Errorf("panic: %v", rec))
				if c.Writer.Written() {
					c.Abort()
					return
				}
				c.AbortWithStatusJSON(appErr.HTTPStatus, appErr.ToResponse())
			}
		}()
		c.Next()
	}
}

// isAbort reports whether rec is the sentinel net/http uses to drop a
// connection after the response has started.
func isAbort(rec any) bool {
	err, ok := rec.(error)
	return ok && stderrors.Is(err, http.ErrAbortHandler)
}

// panicStatus is the status a request ends with when rec interrupted it:
// whatever was already sent, or the 500 Recovery is about to write.
func panicStatus(c *gin.Context, rec any) int {
	if rec == nil || isAbort(rec) || c.Writer.Written() {
		return c.Writer.Status()
	}
	return http.StatusInternalServerError
}
