package bootstrap

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/kbukum/s3gate/component"
)

// Summary renders the startup report from the registered components.
type Summary struct {
	serviceName     string
	version         string
	startupDuration time.Duration
	out             io.Writer
}

// NewSummary creates a summary that writes to out.
func NewSummary(serviceName, version string, out io.Writer) *Summary {
	return &Summary{serviceName: serviceName, version: version, out: out}
}

// SetStartupDuration records the total startup time.
func (s *Summary) SetStartupDuration(d time.Duration) {
	s.startupDuration = d
}

// Display writes the components, their routes and live health.
func (s *Summary) Display(ctx context.Context, registry *component.Registry) {
	w := s.out
	fmt.Fprintf(w, "\n🚀 %s v%s started in %.2fs\n", s.serviceName, s.version, s.startupDuration.Seconds())

	comps := registry.All()
	var routes []component.Route

	fmt.Fprintf(w, "\n📦 Components\n")
	if len(comps) == 0 {
		fmt.Fprintf(w, "   └── No components registered\n")
	}
	for i, c := range comps {
		name, details := c.Name(), ""
		if d, ok := c.(component.Describable); ok {
			desc := d.Describe()
			if desc.Name != "" {
				name = desc.Name
			}
			details = desc.Details
			if desc.Port > 0 {
				details = fmt.Sprintf("%s (:%d)", details, desc.Port)
			}
		}
		if rp, ok := c.(component.RouteProvider); ok {
			routes = append(routes, rp.Routes()...)
		}
		line := name
		if details != "" {
			line += ": " + details
		}
		fmt.Fprintf(w, "   %s %s\n", branch(i, len(comps)), line)
	}

	if len(routes) > 0 {
		fmt.Fprintf(w, "\n🌐 Routes (%d)\n", len(routes))
		for i, r := range routes {
			fmt.Fprintf(w, "   %s %-7s %s → %s\n", branch(i, len(routes)), r.Method, r.Path, r.Handler)
		}
	}

	results := registry.HealthAll(ctx)
	if len(results) > 0 {
		healthy := 0
		fmt.Fprintf(w, "\n🏥 Health Check\n")
		for i, h := range results {
			if h.Status == component.StatusHealthy {
				healthy++
			}
			msg := ""
			if h.Message != "" {
				msg = " (" + h.Message + ")"
			}
			fmt.Fprintf(w, "   %s %s %s: %s%s\n", branch(i, len(results)), healthIcon(h.Status), h.Name, strings.ToLower(string(h.Status)), msg)
		}
		if healthy == len(results) {
			fmt.Fprintf(w, "\n✅ All components healthy (%d/%d)\n", healthy, len(results))
		} else {
			fmt.Fprintf(w, "\n⚠️  Some components have issues (%d/%d healthy)\n", healthy, len(results))
		}
	}
	fmt.Fprintln(w)
}

func branch(i, n int) string {
	if i == n-1 {
		return "└──"
	}
	return "├──"
}

func healthIcon(status component.HealthStatus) string {
	switch status {
	case component.StatusHealthy:
		return "✅"
	case component.StatusDegraded:
		return "⚠️"
	case component.StatusUnhealthy:
		return "❌"
	default:
		return "❓"
	}
}
