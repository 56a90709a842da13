package router

import (
	"github.com/labstack/echo/v4"

	"github.com/avelora/slot-reservation/internal/handler"
	"github.com/avelora/slot-reservation/internal/middleware"
)

// registerAdminRoutes mounts the back office behind the ADMIN role.
func registerAdminRoutes(g *echo.Group, auth echo.MiddlewareFunc, h *handler.AdminHandler) {
	a := g.Group("/admin", auth, middleware.RequireRole(middleware.RoleAdmin))

	a.GET("/providers", h.ListProviders)
	a.POST("/providers/:id/approve", h.ApproveProvider)
	a.POST("/providers/:id/reject", h.RejectProvider)

	a.POST("/slots/:id/block", h.BlockSlot)
	a.POST("/slots/:id/unblock", h.UnblockSlot)
}
