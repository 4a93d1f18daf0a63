package component

import "context"

// HealthStatus represents the health state of a component.
type HealthStatus string

const (
	StatusHealthy   HealthStatus = "healthy"
	StatusUnhealthy HealthStatus = "unhealthy"
	StatusDegraded  HealthStatus = "degraded"
)

// Health holds health information for a component.
type Health struct {
	Name    string       `json:"name"`
	Status  HealthStatus `json:"status"`
	Message string       `json:"message,omitempty"`
}

// Component represents a lifecycle-managed component.
type Component interface {
	// Name returns the unique name of the component for registration.
	Name() string

	// Start initializes and starts the component.
	Start(ctx context.Context) error

	// Stop gracefully shuts down the component and releases resources.
	Stop(ctx context.Context) error

	// Health returns the current health status of the component.
	Health(ctx context.Context) Health
}

// Description holds summary information logged at startup.
type Description struct {
	// Name is the display name. If empty, the component's Name() is used.
	Name string `json:"name"`
	// Type categorizes the component: "storage", "server".
	Type string `json:"type"`
	// Details is a one-line configuration summary, e.g. "provider=s3 bucket=data".
	Details string `json:"details,omitempty"`
	// Port is the primary port, 0 if not applicable.
	Port int `json:"port,omitempty"`
}

// Describable is optionally implemented by components that can summarize
// their configuration.
type Describable interface {
	Describe() Description
}

// Route holds a single registered HTTP route.
type Route struct {
	Method  string `json:"method"`
	Path    string `json:"path"`
	Handler string `json:"handler"`
}

// RouteProvider is optionally implemented by server components to report
// their registered routes.
type RouteProvider interface {
	Routes() []Route
}
