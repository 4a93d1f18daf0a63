package gateway

import (
	"github.com/gin-gonic/gin"

	"github.com/kbukum/s3gate/server/middleware"
)

// RegisterRoutes mounts the API under every configured prefix. All prefixes
// share one rate limiter so a client cannot multiply its budget.
func (h *Handler) RegisterRoutes(r gin.IRouter) {
	var limit []gin.HandlerFunc
	if h.settings.RateLimitPerMin > 0 {
		limit = append(limit, middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerMinute: h.settings.RateLimitPerMin,
		}))
	}

	for _, prefix := range h.settings.routePrefixes() {
		g := r.Group(prefix, limit...)
		g.GET("/s3/files/", h.ListFiles)
		g.HEAD("/s3/get/*file_path", h.HeadFile)
		g.GET("/s3/get/*file_path", h.GetFile)
	}
}
