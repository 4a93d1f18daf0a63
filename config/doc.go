// Package config loads service configuration with Viper.
//
// A YAML config.yml provides the base values, an optional .env file is
// loaded into the process environment with godotenv, and environment
// variables override any key declared by the target struct's mapstructure
// tags. The key storage.bucket is read from STORAGE_BUCKET, or from
// S3GATE_STORAGE_BUCKET when the service name is s3gate.
//
//	var cfg gateway.Config
//	if err := config.LoadConfig("s3gate", &cfg); err != nil { ... }
package config
