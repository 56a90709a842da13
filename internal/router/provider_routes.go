package router

import (
	"github.com/labstack/echo/v4"

	"github.com/avelora/slot-reservation/internal/handler"
	"github.com/avelora/slot-reservation/internal/middleware"
)

// registerProviderRoutes mounts the provider console.  The acting
// provider is resolved from the token, so there is no :provider_id in
// these paths.
func registerProviderRoutes(g *echo.Group, auth echo.MiddlewareFunc, h *handler.ProviderHandler) {
	p := g.Group("/provider", auth, middleware.RequireRole(middleware.RoleProvider))

	p.GET("/templates", h.ListTemplates)
	p.POST("/templates", h.CreateTemplate)
	p.DELETE("/templates/:id", h.DeleteTemplate)

	p.POST("/dates/:date/revoke", h.RevokeDate)

	p.GET("/services", h.ListServices)
	p.POST("/services", h.CreateService)
}
