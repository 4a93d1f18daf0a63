package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/kbukum/s3gate/component"
	"github.com/kbukum/s3gate/logger"
)

// HealthProbeKey is the key looked up by health checks. Its absence is a
// healthy answer; only credential and provider failures are not.
const HealthProbeKey = ".s3gate-health"

// Component wraps a Storage backend for lifecycle management.
type Component struct {
	cfg         Config
	providerCfg any
	log         *logger.Logger

	mu      sync.RWMutex
	storage Storage
}

var _ component.Component = (*Component)(nil)
var _ component.Describable = (*Component)(nil)

// NewComponent creates a storage component. The backend is built on Start.
func NewComponent(cfg Config, providerCfg any, log *logger.Logger) *Component {
	cfg.ApplyDefaults()
	return &Component{
		cfg:         cfg,
		providerCfg: providerCfg,
		log:         log.WithComponent("storage"),
	}
}

// NewComponentWithStorage wraps an already built backend.
func NewComponentWithStorage(cfg Config, s Storage, log *logger.Logger) *Component {
	c := NewComponent(cfg, nil, log)
	c.storage = s
	return c
}

// Storage returns the backend, or nil before Start.
func (c *Component) Storage() Storage {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.storage
}

// Name returns the component name.
func (c *Component) Name() string { return "storage" }

// Start builds the configured backend.
func (c *Component) Start(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.storage != nil {
		return nil
	}
	if !c.cfg.Enabled {
		c.log.Warn("storage component is disabled")
		return nil
	}

	s, err := New(c.cfg, c.providerCfg, c.log)
	if err != nil {
		return fmt.Errorf("storage start: %w", err)
	}
	c.storage = s
	return nil
}

// Stop releases the backend.
func (c *Component) Stop(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.storage = nil
	return nil
}

// Health probes the bucket with a metadata lookup.
func (c *Component) Health(ctx context.Context) component.Health {
	s := c.Storage()
	if s == nil {
		msg := "storage not initialized"
		if !c.cfg.Enabled {
			msg = "disabled"
		}
		return component.Health{Name: c.Name(), Status: component.StatusUnhealthy, Message: msg}
	}

	_, err := s.Head(ctx, HealthProbeKey)
	switch {
	case err == nil, IsNotFound(err):
		return component.Health{Name: c.Name(), Status: component.StatusHealthy}
	case IsCredentials(err):
		return component.Health{Name: c.Name(), Status: component.StatusUnhealthy, Message: "credentials unavailable"}
	default:
		return component.Health{Name: c.Name(), Status: component.StatusDegraded, Message: fmt.Sprintf("health probe failed: %v", err)}
	}
}

// Describe summarizes the configured backend.
func (c *Component) Describe() component.Description {
	return component.Description{
		Name:    "Storage",
		Type:    "storage",
		Details: fmt.Sprintf("provider=%s bucket=%s page_size=%d", c.cfg.Provider, c.cfg.Bucket, c.cfg.PageSize),
	}
}
