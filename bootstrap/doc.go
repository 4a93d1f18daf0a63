// Package bootstrap runs a service through a uniform lifecycle.
//
// An App starts its registered components in order, runs configure
// callbacks and hooks, prints a startup summary built from the components
// themselves, then blocks until a signal arrives and stops everything in
// reverse order within a graceful timeout.
//
//	app, err := bootstrap.NewApp(cfg)
//	app.RegisterComponent(storageComponent)
//	app.RegisterComponent(serverComponent)
//	app.Run(ctx)
//
// RunTask drives the same lifecycle around a finite task, for CLI commands
// that need the configured components but do not serve.
package bootstrap
