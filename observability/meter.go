package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// InitMeter installs a periodic OTLP/HTTP meter provider as the global
// provider. The caller must shut it down.
func InitMeter(ctx context.Context, cfg Config, svc ServiceInfo) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(cfg.Endpoint),
	}
	if cfg.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(svc)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	var readerOpts []sdkmetric.PeriodicReaderOption
	if cfg.MetricInterval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(cfg.MetricInterval))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(mp)
	return mp, nil
}

// Meter returns the package meter from the global provider.
func Meter() metric.Meter {
	return otel.Meter(defaultTracerName)
}

// Metrics holds the gateway's instruments. A nil *Metrics records nothing.
type Metrics struct {
	requestTotal    metric.Int64Counter
	requestDuration metric.Float64Histogram
	objectsListed   metric.Int64Counter
	presignedTotal  metric.Int64Counter
	inlineTotal     metric.Int64Counter
	errorTotal      metric.Int64Counter
}

// NewMetrics creates instruments on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	var (
		m   Metrics
		err error
	)
	if m.requestTotal, err = meter.Int64Counter("http.server.request.total",
		metric.WithDescription("Total number of HTTP requests")); err != nil {
		return nil, fmt.Errorf("creating request counter: %w", err)
	}
	if m.requestDuration, err = meter.Float64Histogram("http.server.request.duration",
		metric.WithDescription("Duration of HTTP requests"), metric.WithUnit("s")); err != nil {
		return nil, fmt.Errorf("creating request histogram: %w", err)
	}
	if m.objectsListed, err = meter.Int64Counter("s3gate.objects.listed",
		metric.WithDescription("Object records streamed by listing requests")); err != nil {
		return nil, fmt.Errorf("creating listed counter: %w", err)
	}
	if m.presignedTotal, err = meter.Int64Counter("s3gate.presigned.total",
		metric.WithDescription("Presigned URLs issued")); err != nil {
		return nil, fmt.Errorf("creating presign counter: %w", err)
	}
	if m.inlineTotal, err = meter.Int64Counter("s3gate.inline.total",
		metric.WithDescription("JSON objects returned inline")); err != nil {
		return nil, fmt.Errorf("creating inline counter: %w", err)
	}
	if m.errorTotal, err = meter.Int64Counter("s3gate.error.total",
		metric.WithDescription("Errors by code")); err != nil {
		return nil, fmt.Errorf("creating error counter: %w", err)
	}
	return &m, nil
}

// RecordRequest records a completed HTTP request.
func (m *Metrics) RecordRequest(ctx context.Context, method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("route", route),
		attribute.Int("status", status),
	)
	m.requestTotal.Add(ctx, 1, attrs)
	m.requestDuration.Record(ctx, d.Seconds(), attrs)
}

// RecordListed adds n streamed records.
func (m *Metrics) RecordListed(ctx context.Context, n int) {
	if m == nil {
		return
	}
	m.objectsListed.Add(ctx, int64(n))
}

// RecordPresigned counts an issued presigned URL.
func (m *Metrics) RecordPresigned(ctx context.Context) {
	if m == nil {
		return
	}
	m.presignedTotal.Add(ctx, 1)
}

// RecordInline counts an inline JSON response.
func (m *Metrics) RecordInline(ctx context.Context) {
	if m == nil {
		return
	}
	m.inlineTotal.Add(ctx, 1)
}

// RecordError counts an error response by code.
func (m *Metrics) RecordError(ctx context.Context, code string) {
	if m == nil {
		return
	}
	m.errorTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("code", code)))
}
