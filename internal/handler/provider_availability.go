package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/avelora/slot-reservation/internal/model"
	"github.com/avelora/slot-reservation/internal/repository"
)

// ProviderHandler serves the provider console: weekly availability
// templates, service listings and day revocation.  The acting provider
// is always resolved from the authenticated user, never from the URL.
type ProviderHandler struct {
	ProviderRepo *repository.ProviderRepo
	ServiceRepo  *repository.ServiceRepo
	SlotRepo     *repository.SlotRepo
}

// NewProviderHandler constructs a ProviderHandler.
func NewProviderHandler(providerRepo *repository.ProviderRepo, serviceRepo *repository.ServiceRepo, slotRepo *repository.SlotRepo) *ProviderHandler {
	if providerRepo == nil || serviceRepo == nil || slotRepo == nil {
		panic("nil dependency passed to NewProviderHandler")
	}
	return &ProviderHandler{ProviderRepo: providerRepo, ServiceRepo: serviceRepo, SlotRepo: slotRepo}
}

// provider resolves the provider record owned by the authenticated
// user, writing the error response itself when that fails.
func (h *ProviderHandler) provider(c echo.Context) (*model.Provider, bool) {
	userID, err := getUserID(c)
	if err != nil {
		_ = c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
		return nil, false
	}
	p, err := h.ProviderRepo.GetByUserID(c.Request().Context(), userID)
	if err != nil {
		if errors.Is(err, repository.ErrProviderNotFound) {
			_ = c.JSON(http.StatusForbidden, echo.Map{"error": "no provider profile for this account"})
		} else {
			_ = c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
		}
		return nil, false
	}
	return p, true
}

// ListTemplates handles GET /v1/provider/templates.
func (h *ProviderHandler) ListTemplates(c echo.Context) error {
	p, ok := h.provider(c)
	if !ok {
		return nil
	}
	items, err := h.ProviderRepo.ActiveTemplates(c.Request().Context(), p.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out := make([]echo.Map, 0, len(items))
	for _, t := range items {
		out = append(out, echo.Map{
			"id":         t.ID,
			"weekday":    t.Weekday,
			"start_time": t.StartTime,
			"service_id": t.ServiceID,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// CreateTemplate handles POST /v1/provider/templates.  The new opening
// takes effect the next time the provider's window is generated; already
// materialized dates are not retrofitted.
func (h *ProviderHandler) CreateTemplate(c echo.Context) error {
	p, ok := h.provider(c)
	if !ok {
		return nil
	}
	var body struct {
		Weekday   int     `json:"weekday"`
		StartTime string  `json:"start_time"`
		ServiceID *uint64 `json:"service_id"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.Weekday < 0 || body.Weekday > 6 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "weekday must be 0 (Sunday) through 6 (Saturday)"})
	}
	if _, err := time.Parse("15:04:05", body.StartTime); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "start_time must be HH:MM:SS"})
	}
	if body.ServiceID != nil {
		svc, err := h.ServiceRepo.GetByID(c.Request().Context(), *body.ServiceID)
		if err != nil || svc.ProviderID != p.ID {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown service"})
		}
	}
	t := &model.AvailabilityTemplate{
		ProviderID: p.ID,
		Weekday:    body.Weekday,
		StartTime:  body.StartTime,
		ServiceID:  body.ServiceID,
		IsActive:   true,
	}
	if err := h.ProviderRepo.CreateTemplate(c.Request().Context(), t); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "template already exists for that weekday and time"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": t.ID})
}

// DeleteTemplate handles DELETE /v1/provider/templates/:id.  The
// template is deactivated rather than removed so existing slots keep
// their provenance; already generated slots stay bookable until the
// provider revokes the date.
func (h *ProviderHandler) DeleteTemplate(c echo.Context) error {
	p, ok := h.provider(c)
	if !ok {
		return nil
	}
	templateID, idOK := pathID(c, "id")
	if !idOK {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid template id"})
	}
	if err := h.ProviderRepo.DeactivateTemplate(c.Request().Context(), p.ID, templateID); err != nil {
		if errors.Is(err, repository.ErrForbidden) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "template not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"deactivated": true})
}

// RevokeDate handles POST /v1/provider/dates/:date/revoke.  It removes
// every slot the provider has on the date that is not already booked,
// including held ones; the holder finds out at confirm time.  Booked
// slots are untouched and must be handled through cancellation.
func (h *ProviderHandler) RevokeDate(c echo.Context) error {
	p, ok := h.provider(c)
	if !ok {
		return nil
	}
	date := c.Param("date")
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date must be YYYY-MM-DD"})
	}
	removed, err := h.SlotRepo.PruneUnbooked(c.Request().Context(), p.ID, date)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"removed": removed})
}

// ListServices handles GET /v1/provider/services.
func (h *ProviderHandler) ListServices(c echo.Context) error {
	p, ok := h.provider(c)
	if !ok {
		return nil
	}
	items, err := h.ServiceRepo.ListByProvider(c.Request().Context(), p.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out := make([]echo.Map, 0, len(items))
	for _, s := range items {
		out = append(out, echo.Map{
			"id":           s.ID,
			"name":         s.Name,
			"description":  s.Description,
			"price_cents":  s.PriceCents,
			"duration_min": s.DurationMin,
			"is_active":    s.IsActive,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// CreateService handles POST /v1/provider/services.
func (h *ProviderHandler) CreateService(c echo.Context) error {
	p, ok := h.provider(c)
	if !ok {
		return nil
	}
	var body struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		PriceCents  uint32 `json:"price_cents"`
		DurationMin uint32 `json:"duration_min"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}
	if body.DurationMin == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "duration_min must be positive"})
	}
	s := &model.Service{
		ProviderID:  p.ID,
		Name:        body.Name,
		Description: body.Description,
		PriceCents:  body.PriceCents,
		DurationMin: body.DurationMin,
		IsActive:    true,
	}
	if err := h.ServiceRepo.Create(c.Request().Context(), s); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": s.ID})
}
