package minio

import (
	"errors"
	"fmt"
	"strings"
)

// Config holds MinIO connection settings. The bucket and page size come
// from storage.Config.
type Config struct {
	// Endpoint is host:port without a scheme, e.g. "localhost:9000".
	Endpoint string `mapstructure:"endpoint" json:"endpoint"`

	// AccessKey and SecretKey select static credentials. When empty the
	// MINIO_* and AWS_* environment variables are consulted.
	AccessKey string `mapstructure:"access_key" json:"access_key"`
	SecretKey string `mapstructure:"secret_key" json:"-"`

	// UseSSL selects https.
	UseSSL bool `mapstructure:"use_ssl" json:"use_ssl"`

	// Region is sent with signed requests.
	Region string `mapstructure:"region" json:"region"`
}

// ApplyDefaults fills in zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.Region == "" {
		c.Region = "us-east-1"
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	var errs []error
	if c.Endpoint == "" {
		errs = append(errs, errors.New("minio: endpoint is required"))
	}
	if strings.Contains(c.Endpoint, "://") {
		errs = append(errs, fmt.Errorf("minio: endpoint must not include a scheme (got: %s)", c.Endpoint))
	}
	if (c.AccessKey == "") != (c.SecretKey == "") {
		errs = append(errs, errors.New("minio: access_key and secret_key must be set together"))
	}
	return errors.Join(errs...)
}
