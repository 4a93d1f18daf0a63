package gateway

import (
	"fmt"

	"github.com/kbukum/s3gate/bootstrap"
	"github.com/kbukum/s3gate/observability"
	"github.com/kbukum/s3gate/server"
	"github.com/kbukum/s3gate/storage"
)

// App is the bootstrap application running a Config.
type App = bootstrap.App[*Config]

// NewApp builds the serving application. Components start in the order
// observability, storage, HTTP server.
func NewApp(cfg *Config, opts ...bootstrap.Option) (*App, error) {
	app, store, err := newStorageApp(cfg, opts)
	if err != nil {
		return nil, err
	}

	metrics, err := observability.NewMetrics(observability.Meter())
	if err != nil {
		return nil, fmt.Errorf("metrics: %w", err)
	}

	srv := server.New(cfg.Server, app.Logger)
	srv.ApplyMiddleware(metrics)
	srv.RegisterDefaultEndpoints(cfg.Name, app.Components.HealthAll, map[string]any{
		"provider": cfg.Storage.Provider,
		"bucket":   cfg.Storage.Bucket,
		"prefixes": cfg.Gateway.Prefixes,
	})
	NewHandler(store, cfg.Gateway, metrics, app.Logger).RegisterRoutes(srv.GinEngine())

	if err := app.RegisterComponent(server.NewComponent(srv)); err != nil {
		return nil, err
	}
	return app, nil
}

// NewCheckApp builds an application without the HTTP server and returns
// the storage backend for one-off probes.
func NewCheckApp(cfg *Config, opts ...bootstrap.Option) (*App, storage.Storage, error) {
	return newStorageApp(cfg, opts)
}

func newStorageApp(cfg *Config, opts []bootstrap.Option) (*App, storage.Storage, error) {
	app, err := bootstrap.NewApp(cfg, opts...)
	if err != nil {
		return nil, nil, err
	}

	obs := observability.NewComponent(cfg.Observability, observability.ServiceInfo{
		Name:        cfg.Name,
		Version:     cfg.Version,
		Environment: cfg.Environment,
	}, app.Logger)
	if err := app.RegisterComponent(obs); err != nil {
		return nil, nil, err
	}

	store, err := storage.New(cfg.Storage, cfg.ProviderConfig(), app.Logger)
	if err != nil {
		return nil, nil, fmt.Errorf("storage: %w", err)
	}
	if err := app.RegisterComponent(storage.NewComponentWithStorage(cfg.Storage, store, app.Logger)); err != nil {
		return nil, nil, err
	}
	return app, store, nil
}
