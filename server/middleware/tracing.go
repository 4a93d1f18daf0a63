package middleware

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/s3gate/logger"
	"github.com/kbukum/s3gate/observability"
)

// Tracing starts a server span per request, continuing any propagated trace,
// and records request metrics. metrics may be nil.
func Tracing(metrics *observability.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		ctx := otel.GetTextMapPropagator().Extract(c.Request.Context(), propagation.HeaderCarrier(c.Request.Header))

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		ctx, span := observability.StartSpan(ctx, fmt.Sprintf("%s %s", c.Request.Method, route),
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				semconv.HTTPMethod(c.Request.Method),
				semconv.HTTPRoute(route),
				attribute.String(observability.AttrRequestID, logger.RequestIDFromContext(ctx)),
			),
		)
		c.Request = c.Request.WithContext(ctx)

		// Deferred so aborted streams and panics are still recorded.
		defer func() {
			rec := recover()
			status := panicStatus(c, rec)
			span.SetAttributes(semconv.HTTPStatusCode(status))
			switch {
			case isAbort(rec):
				span.SetStatus(codes.Error, "response aborted")
			case rec != nil:
				span.SetStatus(codes.Error, fmt.Sprintf("panic: %v", rec))
			case status >= 500:
				span.SetStatus(codes.Error, fmt.Sprintf("HTTP %d", status))
			}
			if len(c.Errors) > 0 && (rec != nil || status >= 500) {
				span.SetAttributes(attribute.String(observability.AttrErrorMessage, c.Errors.String()))
			}
			metrics.RecordRequest(ctx, c.Request.Method, route, status, time.Since(start))
			span.End()
			if rec != nil {
				panic(rec)
			}
		}()
		c.Next()
	}
}
