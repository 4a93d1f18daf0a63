// Package observability wires OpenTelemetry tracing and metrics.
//
// When disabled the global no-op providers stay in place, so spans and
// instruments created through this package cost nothing.
//
//	obs := observability.NewComponent(cfg.Observability, "s3gate", version.GetVersion(), env, log)
//	registry.Register(obs)
//
//	ctx, span := observability.StartSpan(ctx, "storage.head")
//	defer span.End()
package observability
