package storage

import (
	"fmt"
	"sort"
	"sync"

	"github.com/kbukum/s3gate/logger"
)

// Factory creates a backend from core config and provider-specific
// configuration. Each provider type-asserts providerCfg to its own type.
type Factory func(cfg Config, providerCfg any, log *logger.Logger) (Storage, error)

var (
	factoriesMu sync.RWMutex
	factories   = make(map[string]Factory)
)

// RegisterFactory registers a backend factory for the given provider name.
// Backend packages call this from init.
func RegisterFactory(name string, f Factory) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()
	factories[name] = f
}

// Providers lists the registered provider names.
func Providers() []string {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()
	names := make([]string, 0, len(factories))
	for n := range factories {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// New creates the backend selected by cfg.Provider. The provider package
// must be imported so its factory is registered.
func New(cfg Config, providerCfg any, log *logger.Logger) (Storage, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	factoriesMu.RLock()
	f, ok := factories[cfg.Provider]
	factoriesMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("storage: unsupported provider %q (not registered)", cfg.Provider)
	}

	l := log.WithComponent("storage")
	l.Info("initializing storage", logger.Fields(logger.FieldProvider, cfg.Provider, logger.FieldBucket, cfg.Bucket))

	s, err := f(cfg, providerCfg, l)
	if err != nil {
		return nil, err
	}
	if cfg.Tracing {
		s = WithTracing(s, cfg.Provider)
	}
	return s, nil
}
