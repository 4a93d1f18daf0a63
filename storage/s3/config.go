package s3

import (
	"errors"
	"fmt"
)

// DefaultRegion is the default AWS region.
const DefaultRegion = "us-east-1"

// Config holds S3-specific settings. The bucket and page size come from
// storage.Config.
type Config struct {
	// Region is the AWS region.
	Region string `mapstructure:"region" json:"region"`

	// Endpoint is a custom S3-compatible endpoint URL.
	Endpoint string `mapstructure:"endpoint" json:"endpoint"`

	// AccessKey and SecretKey select static credentials. When empty the
	// default AWS credential chain (env, shared config, IMDS) is used.
	AccessKey    string `mapstructure:"access_key" json:"access_key"`
	SecretKey    string `mapstructure:"secret_key" json:"-"`
	SessionToken string `mapstructure:"session_token" json:"-"`

	// ForcePathStyle forces path-style URLs instead of virtual-hosted-style.
	ForcePathStyle bool `mapstructure:"force_path_style" json:"force_path_style"`

	// MaxAttempts bounds SDK attempts per call. 1 disables retries.
	MaxAttempts int `mapstructure:"max_attempts" json:"max_attempts"`
}

// ApplyDefaults fills in zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.Region == "" {
		c.Region = DefaultRegion
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 1
	}
}

// Validate checks that the S3 configuration is valid.
func (c *Config) Validate() error {
	var errs []error
	if c.Region == "" {
		errs = append(errs, errors.New("s3: region is required"))
	}
	if (c.AccessKey == "") != (c.SecretKey == "") {
		errs = append(errs, errors.New("s3: access_key and secret_key must be set together"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("s3: invalid config: %w", errors.Join(errs...))
	}
	return nil
}
