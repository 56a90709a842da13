package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/avelora/slot-reservation/internal/model"
	"github.com/avelora/slot-reservation/internal/repository"
)

// AdminHandler serves the marketplace back office: provider approval
// and administrative slot blocking.  Routes using it sit behind the
// ADMIN role middleware.
type AdminHandler struct {
	ProviderRepo *repository.ProviderRepo
	SlotRepo     *repository.SlotRepo
}

// NewAdminHandler constructs an AdminHandler.
func NewAdminHandler(providerRepo *repository.ProviderRepo, slotRepo *repository.SlotRepo) *AdminHandler {
	if providerRepo == nil || slotRepo == nil {
		panic("nil dependency passed to NewAdminHandler")
	}
	return &AdminHandler{ProviderRepo: providerRepo, SlotRepo: slotRepo}
}

// ListProviders handles GET /v1/admin/providers?status=.  Status
// defaults to PENDING, the queue an admin actually works through.
func (h *AdminHandler) ListProviders(c echo.Context) error {
	status := c.QueryParam("status")
	if status == "" {
		status = model.ProviderPending
	}
	switch status {
	case model.ProviderPending, model.ProviderApproved, model.ProviderRejected:
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid status"})
	}
	items, err := h.ProviderRepo.ListByStatus(c.Request().Context(), status)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out := make([]echo.Map, 0, len(items))
	for _, p := range items {
		out = append(out, echo.Map{
			"id":              p.ID,
			"display_name":    p.DisplayName,
			"bio":             p.Bio,
			"approval_status": p.ApprovalStatus,
			"created_at":      p.CreatedAt,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// ApproveProvider handles POST /v1/admin/providers/:id/approve.
func (h *AdminHandler) ApproveProvider(c echo.Context) error {
	return h.decide(c, model.ProviderApproved)
}

// RejectProvider handles POST /v1/admin/providers/:id/reject.
func (h *AdminHandler) RejectProvider(c echo.Context) error {
	return h.decide(c, model.ProviderRejected)
}

// decide applies an approval decision.  The update is guarded on the
// PENDING state, so a second decision on the same provider reads as a
// conflict instead of silently flipping it.
func (h *AdminHandler) decide(c echo.Context, status string) error {
	providerID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid provider id"})
	}
	err := h.ProviderRepo.SetApproval(c.Request().Context(), providerID, status)
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, echo.Map{"approval_status": status})
	case errors.Is(err, repository.ErrProviderNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "provider not found"})
	case errors.Is(err, repository.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": "provider already decided"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
}

// BlockSlot handles POST /v1/admin/slots/:id/block.  Only AVAILABLE
// slots can be blocked; a held or booked slot must resolve first.
func (h *AdminHandler) BlockSlot(c echo.Context) error {
	return h.setBlocked(c, true)
}

// UnblockSlot handles POST /v1/admin/slots/:id/unblock.
func (h *AdminHandler) UnblockSlot(c echo.Context) error {
	return h.setBlocked(c, false)
}

func (h *AdminHandler) setBlocked(c echo.Context, blocked bool) error {
	slotID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid slot id"})
	}
	if err := h.SlotRepo.SetBlocked(c.Request().Context(), slotID, blocked); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "slot is not in a blockable state"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"blocked": blocked})
}
