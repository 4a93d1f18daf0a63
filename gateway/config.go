package gateway

import (
	"errors"
	"strings"

	"github.com/kbukum/s3gate/config"
	"github.com/kbukum/s3gate/observability"
	"github.com/kbukum/s3gate/server"
	"github.com/kbukum/s3gate/storage"
	"github.com/kbukum/s3gate/storage/memory"
	"github.com/kbukum/s3gate/storage/minio"
	"github.com/kbukum/s3gate/storage/s3"
	"github.com/kbukum/s3gate/validation"
	"github.com/kbukum/s3gate/version"
)

// Expiry bounds in seconds: MinExpiry is exclusive, MaxExpiry inclusive.
const (
	MinExpiry     = 600
	MaxExpiry     = 3024000
	DefaultExpiry = 3600
)

// Defaults for the gateway section.
const (
	DefaultFolder          = "HDX"
	DefaultRateLimitPerMin = 60
	DefaultMaxMetaBytes    = 10 << 20
)

// Config is the full s3gate configuration as read from config.yml.
type Config struct {
	config.ServiceConfig `mapstructure:",squash"`

	Server        server.Config        `mapstructure:"server"`
	Storage       storage.Config       `mapstructure:"storage"`
	S3            s3.Config            `mapstructure:"s3"`
	Minio         minio.Config         `mapstructure:"minio"`
	Memory        memory.Config        `mapstructure:"memory"`
	Observability observability.Config `mapstructure:"observability"`
	Gateway       Settings             `mapstructure:"gateway"`
}

// Settings holds the request-handling options.
type Settings struct {
	// DefaultFolder is listed when the folder query parameter is absent.
	DefaultFolder string `mapstructure:"default_folder" json:"default_folder"`

	// Prefixes are the route prefixes the API is mounted under. "/" mounts
	// the unversioned routes.
	Prefixes []string `mapstructure:"prefixes" json:"prefixes"`

	// RateLimitPerMin bounds API requests per client per minute. A negative
	// value disables limiting.
	RateLimitPerMin int `mapstructure:"rate_limit_per_min" json:"rate_limit_per_min"`

	// MaxMetaBytes caps the size of JSON objects returned inline.
	MaxMetaBytes int64 `mapstructure:"max_meta_bytes" json:"max_meta_bytes"`

	// DefaultExpiry is the presigned URL lifetime in seconds when the expiry
	// query parameter is absent.
	DefaultExpiry int `mapstructure:"default_expiry" json:"default_expiry"`
}

// ApplyDefaults fills in zero-valued fields.
func (s *Settings) ApplyDefaults() {
	if s.DefaultFolder == "" {
		s.DefaultFolder = DefaultFolder
	}
	if len(s.Prefixes) == 0 {
		s.Prefixes = []string{"/", "/v1"}
	}
	if s.RateLimitPerMin == 0 {
		s.RateLimitPerMin = DefaultRateLimitPerMin
	}
	if s.MaxMetaBytes <= 0 {
		s.MaxMetaBytes = DefaultMaxMetaBytes
	}
	if s.DefaultExpiry == 0 {
		s.DefaultExpiry = DefaultExpiry
	}
}

// Validate checks the settings.
func (s *Settings) Validate() error {
	c := validation.New().
		Required("gateway.default_folder", s.DefaultFolder).
		Between("gateway.default_expiry", s.DefaultExpiry, MinExpiry, MaxExpiry)
	for _, p := range s.Prefixes {
		c.Check(strings.HasPrefix(p, "/"), "gateway.prefixes", "%q must start with /", p)
	}
	if appErr := c.Err(); appErr != nil {
		return appErr
	}
	return nil
}

// routePrefixes normalizes Prefixes for gin groups: "/" becomes "" and
// trailing slashes are dropped.
func (s *Settings) routePrefixes() []string {
	seen := make(map[string]bool, len(s.Prefixes))
	out := make([]string, 0, len(s.Prefixes))
	for _, p := range s.Prefixes {
		p = strings.TrimRight(p, "/")
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	return out
}

// ApplyDefaults fills in defaults for every section.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = "s3gate"
	}
	if c.Version == "" {
		c.Version = version.Get().Short()
	}
	c.ServiceConfig.ApplyDefaults()
	c.Server.ApplyDefaults()
	c.Storage.ApplyDefaults()
	c.Observability.ApplyDefaults()
	c.Gateway.ApplyDefaults()
	switch c.Storage.Provider {
	case storage.ProviderS3:
		c.S3.ApplyDefaults()
	case storage.ProviderMinio:
		c.Minio.ApplyDefaults()
	}
}

// Validate validates every section, reporting all failures.
func (c *Config) Validate() error {
	errs := []error{
		c.ServiceConfig.Validate(),
		c.Server.Validate(),
		c.Storage.Validate(),
		c.Observability.Validate(),
		c.Gateway.Validate(),
	}
	switch c.Storage.Provider {
	case storage.ProviderS3:
		errs = append(errs, c.S3.Validate())
	case storage.ProviderMinio:
		errs = append(errs, c.Minio.Validate())
	}
	return errors.Join(errs...)
}

// ProviderConfig returns the provider section matching Storage.Provider.
func (c *Config) ProviderConfig() any {
	switch c.Storage.Provider {
	case storage.ProviderS3:
		return &c.S3
	case storage.ProviderMinio:
		return &c.Minio
	case storage.ProviderMemory:
		return &c.Memory
	}
	return nil
}
