package observability

import (
	"fmt"
	"time"
)

// Config configures tracing and metrics export.
type Config struct {
	// Enabled turns on OTLP export. Spans and metrics are no-ops otherwise.
	Enabled bool `mapstructure:"enabled" json:"enabled"`
	// Endpoint is the OTLP HTTP endpoint host:port (e.g., "localhost:4318").
	Endpoint string `mapstructure:"endpoint" json:"endpoint"`
	// Insecure disables TLS towards the collector.
	Insecure bool `mapstructure:"insecure" json:"insecure"`
	// SampleRate is the trace sampling ratio (0.0 to 1.0).
	SampleRate float64 `mapstructure:"sample_rate" json:"sample_rate"`
	// Metrics enables metric export alongside traces.
	Metrics bool `mapstructure:"metrics" json:"metrics"`
	// MetricInterval is the metric export interval.
	MetricInterval time.Duration `mapstructure:"metric_interval" json:"metric_interval"`
}

// ApplyDefaults fills in zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.Endpoint == "" {
		c.Endpoint = "localhost:4318"
	}
	if c.SampleRate == 0 {
		c.SampleRate = 1.0
	}
	if c.MetricInterval <= 0 {
		c.MetricInterval = 15 * time.Second
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.SampleRate < 0 || c.SampleRate > 1 {
		return fmt.Errorf("observability.sample_rate must be within [0, 1] (got: %v)", c.SampleRate)
	}
	if c.Enabled && c.Endpoint == "" {
		return fmt.Errorf("observability.endpoint is required when enabled")
	}
	return nil
}
