package observability

import (
	"context"
	"errors"
	"fmt"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/kbukum/s3gate/component"
	"github.com/kbukum/s3gate/logger"
)

// Component owns the tracer and meter providers.
type Component struct {
	cfg Config
	svc ServiceInfo
	log *logger.Logger

	tp *sdktrace.TracerProvider
	mp *sdkmetric.MeterProvider
}

var _ component.Component = (*Component)(nil)
var _ component.Describable = (*Component)(nil)

// NewComponent creates the observability component.
func NewComponent(cfg Config, svc ServiceInfo, log *logger.Logger) *Component {
	cfg.ApplyDefaults()
	return &Component{cfg: cfg, svc: svc, log: log.WithComponent("observability")}
}

// Name returns the component name.
func (c *Component) Name() string { return "observability" }

// Start installs the exporters when enabled.
func (c *Component) Start(ctx context.Context) error {
	if !c.cfg.Enabled {
		return nil
	}
	tp, err := InitTracer(ctx, c.cfg, c.svc)
	if err != nil {
		return err
	}
	c.tp = tp

	if c.cfg.Metrics {
		mp, err := InitMeter(ctx, c.cfg, c.svc)
		if err != nil {
			return err
		}
		c.mp = mp
	}

	c.log.Info("telemetry export enabled", logger.Fields(
		"endpoint", c.cfg.Endpoint,
		"sample_rate", c.cfg.SampleRate,
		"metrics", c.cfg.Metrics,
	))
	return nil
}

// Stop flushes and shuts down the providers.
func (c *Component) Stop(ctx context.Context) error {
	var errs []error
	if c.tp != nil {
		if err := c.tp.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer shutdown: %w", err))
		}
		c.tp = nil
	}
	if c.mp != nil {
		if err := c.mp.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter shutdown: %w", err))
		}
		c.mp = nil
	}
	return errors.Join(errs...)
}

// Health reports healthy; export failures are handled by the SDK.
func (c *Component) Health(_ context.Context) component.Health {
	msg := "disabled"
	if c.cfg.Enabled {
		msg = "exporting to " + c.cfg.Endpoint
	}
	return component.Health{Name: c.Name(), Status: component.StatusHealthy, Message: msg}
}

// Describe summarizes the exporter configuration.
func (c *Component) Describe() component.Description {
	return component.Description{
		Name:    "Observability",
		Type:    "telemetry",
		Details: fmt.Sprintf("enabled=%t endpoint=%s metrics=%t", c.cfg.Enabled, c.cfg.Endpoint, c.cfg.Metrics),
	}
}
