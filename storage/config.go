package storage

import (
	"errors"
	"fmt"
)

// Provider constants for supported storage backends.
const (
	ProviderS3     = "s3"
	ProviderMinio  = "minio"
	ProviderMemory = "memory"
)

// Default configuration values.
const (
	DefaultProvider = ProviderS3
	DefaultPageSize = 1000
	MaxPageSize     = 1000
)

// Config holds provider-neutral storage configuration. Provider-specific
// settings live in the s3 and minio sections.
type Config struct {
	// Provider selects the backend: "s3", "minio" or "memory".
	Provider string `mapstructure:"provider" json:"provider"`

	// Bucket is the bucket every request is resolved against.
	Bucket string `mapstructure:"bucket" json:"bucket"`

	// PageSize bounds the number of objects per listing page.
	PageSize int `mapstructure:"page_size" json:"page_size"`

	// Tracing wraps the backend with OpenTelemetry spans.
	Tracing bool `mapstructure:"tracing" json:"tracing"`

	// Enabled controls whether the storage component is active.
	Enabled bool `mapstructure:"enabled" json:"enabled"`
}

// ApplyDefaults fills in zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.Provider == "" {
		c.Provider = DefaultProvider
	}
	if c.PageSize <= 0 {
		c.PageSize = DefaultPageSize
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	var errs []error
	switch c.Provider {
	case ProviderS3, ProviderMinio, ProviderMemory:
	default:
		errs = append(errs, fmt.Errorf("storage: unsupported provider %q", c.Provider))
	}
	if c.Bucket == "" {
		errs = append(errs, errors.New("storage: bucket is required"))
	}
	if c.PageSize > MaxPageSize {
		errs = append(errs, fmt.Errorf("storage: page_size must be at most %d (got: %d)", MaxPageSize, c.PageSize))
	}
	return errors.Join(errs...)
}
