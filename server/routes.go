package server

import (
	"sort"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/s3gate/component"
)

// System route paths registered by RegisterDefaultEndpoints.
var systemPaths = map[string]bool{
	"/health":  true,
	"/ready":   true,
	"/live":    true,
	"/info":    true,
	"/version": true,
}

// sortedRoutes returns API routes first by path, then system routes.
func sortedRoutes(routes gin.RoutesInfo) []component.Route {
	sort.Slice(routes, func(i, j int) bool {
		iSys := systemPaths[routes[i].Path]
		jSys := systemPaths[routes[j].Path]
		if iSys != jSys {
			return !iSys
		}
		if routes[i].Path != routes[j].Path {
			return routes[i].Path < routes[j].Path
		}
		return methodOrder(routes[i].Method) < methodOrder(routes[j].Method)
	})

	out := make([]component.Route, 0, len(routes))
	for _, r := range routes {
		out = append(out, component.Route{
			Method:  r.Method,
			Path:    r.Path,
			Handler: formatHandlerName(r.Handler),
		})
	}
	return out
}

// formatHandlerName extracts a clean handler name from Gin's full handler path:
// "github.com/kbukum/s3gate/gateway.(*Handler).GetFile-fm" becomes "Handler.GetFile".
func formatHandlerName(fullPath string) string {
	name := strings.TrimSuffix(fullPath, "-fm")
	if idx := strings.LastIndex(name, "/"); idx >= 0 {
		name = name[idx+1:]
	}
	name = strings.ReplaceAll(name, "(*", "")
	name = strings.ReplaceAll(name, ")", "")

	// Closures such as "endpoint.Health.func1" keep the constructor name.
	if strings.Contains(name, ".func") {
		parts := strings.Split(name, ".")
		for i := len(parts) - 1; i >= 0; i-- {
			if !strings.HasPrefix(parts[i], "func") {
				name = strings.ToLower(parts[i])
				break
			}
		}
	}

	// Drop a lowercase package prefix.
	if pkg, rest, ok := strings.Cut(name, "."); ok && rest != "" && strings.ToLower(pkg) == pkg {
		name = rest
	}
	return name
}

// methodOrder returns a sort key for HTTP methods.
func methodOrder(method string) int {
	switch method {
	case "GET":
		return 0
	case "HEAD":
		return 1
	case "POST":
		return 2
	default:
		return 3
	}
}
