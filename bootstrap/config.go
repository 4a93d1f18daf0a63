package bootstrap

import (
	"github.com/kbukum/s3gate/config"
)

// Config is the interface constraint for application configuration types.
// Any struct that embeds config.ServiceConfig satisfies GetServiceConfig via
// promotion and only needs its own ApplyDefaults and Validate.
//
// Example:
//
//	type Config struct {
//	    config.ServiceConfig `mapstructure:",squash"`
//	    Storage storage.Config `mapstructure:"storage"`
//	}
type Config interface {
	GetServiceConfig() *config.ServiceConfig
	ApplyDefaults()
	Validate() error
}
