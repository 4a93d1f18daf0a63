// Package logger provides structured logging on top of zerolog.
//
// A *Logger carries the service name, can be scoped to a component and
// enriched from a request context (request id, trace and span ids).
//
//	logger:
//	  level: "info"
//	  format: "json"
//
//	log := logger.New(&cfg.Logging, "s3gate").WithComponent("gateway")
//	log.Info("listing started", logger.Fields("prefix", prefix))
package logger
