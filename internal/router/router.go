// Package router wires HTTP routes to handlers and hangs the shared
// middleware chain (rate limiting, auth, role checks, response cache)
// off the right route groups.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/avelora/slot-reservation/internal/config"
	"github.com/avelora/slot-reservation/internal/handler"
	"github.com/avelora/slot-reservation/internal/middleware"
)

// Deps bundles everything route registration needs.
type Deps struct {
	JWTSecret string
	Redis     *redis.Client // nil disables rate limiting and caching
	RateLimit config.RateLimitConfig
	Cache     config.CacheConfig

	Customer *handler.CustomerHandler
	Provider *handler.ProviderHandler
	Admin    *handler.AdminHandler
}

// Register mounts all routes on e.  The health check stays outside the
// rate limiter so orchestration probes are never throttled.
func Register(e *echo.Echo, d Deps) {
	e.GET("/health", handler.Health)

	auth := middleware.JWTAuth(d.JWTSecret)
	limit := middleware.RateLimit(d.Redis, d.RateLimit)
	cached := middleware.CacheGET(d.Redis, d.Cache)

	v1 := e.Group("/v1", limit)
	registerCustomerRoutes(v1, auth, cached, d.Customer)
	registerProviderRoutes(v1, auth, d.Provider)
	registerAdminRoutes(v1, auth, d.Admin)
}
