package router

import (
	"github.com/labstack/echo/v4"

	"github.com/avelora/slot-reservation/internal/handler"
	"github.com/avelora/slot-reservation/internal/middleware"
)

// registerCustomerRoutes mounts the booking flow.  Availability
// browsing is public (and briefly cached); everything that touches a
// hold or a booking requires an authenticated customer.
func registerCustomerRoutes(g *echo.Group, auth echo.MiddlewareFunc, cached echo.MiddlewareFunc, h *handler.CustomerHandler) {
	g.GET("/providers/:id/slots", h.GetProviderSlots, cached)

	customer := g.Group("", auth, middleware.RequireRole(middleware.RoleCustomer))
	customer.POST("/slots/:id/hold", h.HoldSlot)
	customer.DELETE("/slots/:id/hold", h.ReleaseSlot)
	customer.POST("/slots/:id/confirm", h.ConfirmSlot)

	customer.GET("/bookings", h.ListBookings)
	customer.GET("/bookings/:id", h.GetBooking)
	customer.POST("/bookings/:id/cancel", h.CancelBooking)
	customer.POST("/bookings/:id/checkout", h.CreateCheckout)

	customer.GET("/notifications", h.ListNotifications)
	customer.POST("/notifications/:id/read", h.MarkNotificationRead)
}
