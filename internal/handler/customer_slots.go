package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/avelora/slot-reservation/internal/model"
	"github.com/avelora/slot-reservation/internal/payments"
	"github.com/avelora/slot-reservation/internal/queue"
	"github.com/avelora/slot-reservation/internal/repository"
	"github.com/avelora/slot-reservation/internal/reservation"
	queue_publisher "github.com/avelora/slot-reservation/internal/service"
)

// CustomerHandler groups the services and repositories behind the
// customer-facing booking flow: browsing availability, holding a slot,
// confirming it into a booking and paying for it.  All methods assume
// JWT authentication and role validation have already run; they return
// 401 when the user ID cannot be extracted from the context.
type CustomerHandler struct {
	ProviderRepo     *repository.ProviderRepo
	ServiceRepo      *repository.ServiceRepo
	SlotRepo         *repository.SlotRepo
	BookingRepo      *repository.BookingRepo
	NotificationRepo *repository.NotificationRepo
	Query            *reservation.QueryService
	Manager          *reservation.Manager
	Watcher          *reservation.Watcher
	Payments         *payments.Client
}

// NewCustomerHandler constructs a CustomerHandler.  The payments client
// may be nil when checkout is disabled; everything else must be non-nil.
func NewCustomerHandler(providerRepo *repository.ProviderRepo, serviceRepo *repository.ServiceRepo, slotRepo *repository.SlotRepo, bookingRepo *repository.BookingRepo, notificationRepo *repository.NotificationRepo, query *reservation.QueryService, manager *reservation.Manager, watcher *reservation.Watcher, pay *payments.Client) *CustomerHandler {
	if providerRepo == nil || serviceRepo == nil || slotRepo == nil || bookingRepo == nil || notificationRepo == nil || query == nil || manager == nil {
		panic("nil dependency passed to NewCustomerHandler")
	}
	return &CustomerHandler{
		ProviderRepo:     providerRepo,
		ServiceRepo:      serviceRepo,
		SlotRepo:         slotRepo,
		BookingRepo:      bookingRepo,
		NotificationRepo: notificationRepo,
		Query:            query,
		Manager:          manager,
		Watcher:          watcher,
		Payments:         pay,
	}
}

// GetProviderSlots handles GET /v1/providers/:id/slots?date=YYYY-MM-DD.
// It returns the provider's available slots for the date ordered by
// time of day, lazily materializing the availability window when the
// date has no slots yet.  An empty list is a normal "no availability"
// answer.  Only approved providers are visible to customers.
func (h *CustomerHandler) GetProviderSlots(c echo.Context) error {
	providerID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid provider id"})
	}
	ctx := c.Request().Context()
	p, err := h.ProviderRepo.GetByID(ctx, providerID)
	if err != nil {
		if errors.Is(err, repository.ErrProviderNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "provider not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if p.ApprovalStatus != model.ProviderApproved {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "provider not found"})
	}
	slots, err := h.Query.ListAvailable(ctx, providerID, c.QueryParam("date"))
	if err != nil {
		if errors.Is(err, reservation.ErrInvalidDate) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "date must be YYYY-MM-DD"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load availability"})
	}
	items := make([]echo.Map, 0, len(slots))
	for _, s := range slots {
		items = append(items, echo.Map{
			"id":         s.ID,
			"date":       s.SlotDate,
			"start_time": s.StartTime,
			"service_id": s.ServiceID,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// HoldSlot handles POST /v1/slots/:id/hold.  It attempts a time-bounded
// exclusive hold on the slot for the current user.  Losing the race is
// not an error: the response is 409 and the client is expected to
// refresh the slot list.  Acquiring releases any other slot the user
// was holding, and re-posting a hold the user already owns restarts
// its deadline.
func (h *CustomerHandler) HoldSlot(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	slotID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid slot id"})
	}
	res, err := h.Manager.AcquireHold(c.Request().Context(), slotID, userID)
	if err != nil {
		if errors.Is(err, reservation.ErrUnauthenticated) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to hold slot"})
	}
	if !res.Acquired {
		return c.JSON(http.StatusConflict, echo.Map{"error": "slot no longer available"})
	}
	if h.Watcher != nil {
		h.Watcher.Track(slotID, userID, res.Deadline)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"slot_id":    slotID,
		"expires_at": res.Deadline.Format(time.RFC3339),
	})
}

// ReleaseSlot handles DELETE /v1/slots/:id/hold.  It releases the
// current user's hold on the slot.  Releasing a slot the user does not
// hold (already expired, reclaimed or booked) is a no-op, reported in
// the response rather than as an error.
func (h *CustomerHandler) ReleaseSlot(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	slotID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid slot id"})
	}
	released, err := h.Manager.ReleaseHold(c.Request().Context(), slotID, userID)
	if err != nil {
		if errors.Is(err, reservation.ErrUnauthenticated) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to release slot"})
	}
	if h.Watcher != nil {
		h.Watcher.Cancel(slotID)
	}
	return c.JSON(http.StatusOK, echo.Map{"released": released})
}

// ConfirmSlot handles POST /v1/slots/:id/confirm.  It converts the
// user's live hold into a booking.  The store re-checks holder and
// deadline, so a confirm past the deadline returns 410 regardless of
// what the client countdown showed.  On success a booking.confirmed
// event is published for the notification consumer; publish failures
// are ignored because the booking itself has committed.
func (h *CustomerHandler) ConfirmSlot(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	slotID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid slot id"})
	}
	var body struct {
		ServiceID uint64 `json:"service_id"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	ctx := c.Request().Context()
	slot, err := h.SlotRepo.GetByID(ctx, slotID)
	if err != nil {
		if errors.Is(err, repository.ErrSlotNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "slot not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	in := reservation.ConfirmInput{SlotID: slotID, UserID: userID}
	var serviceName string
	if body.ServiceID != 0 {
		svc, err := h.ServiceRepo.GetByID(ctx, body.ServiceID)
		if err != nil {
			if errors.Is(err, repository.ErrServiceNotFound) {
				return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown service"})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
		}
		if svc.ProviderID != slot.ProviderID {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "service does not belong to this provider"})
		}
		in.ServiceID = &svc.ID
		in.AmountCents = svc.PriceCents
		serviceName = svc.Name
	}

	res, err := h.Manager.ConfirmHold(ctx, in)
	if err != nil {
		if errors.Is(err, reservation.ErrUnauthenticated) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to confirm slot"})
	}
	switch res.Status {
	case reservation.Expired:
		if h.Watcher != nil {
			h.Watcher.Cancel(slotID)
		}
		return c.JSON(http.StatusGone, echo.Map{"error": "reservation expired"})
	case reservation.Unavailable:
		return c.JSON(http.StatusConflict, echo.Map{"error": "slot no longer available"})
	}

	if h.Watcher != nil {
		h.Watcher.Cancel(slotID)
	}
	h.publishConfirmed(c, slot, res, serviceName)

	return c.JSON(http.StatusCreated, echo.Map{
		"booking_id":   res.Booking.ID,
		"reference":    res.Booking.Reference,
		"amount_cents": res.Booking.AmountCents,
	})
}

func (h *CustomerHandler) publishConfirmed(c echo.Context, slot *model.Slot, res reservation.ConfirmResult, serviceName string) {
	providerName := ""
	if p, err := h.ProviderRepo.GetByID(c.Request().Context(), slot.ProviderID); err == nil {
		providerName = p.DisplayName
	}
	_ = queue_publisher.PublishBookingConfirmed(c.Request().Context(), queue.BookingConfirmedEvent{
		BookingID:    res.Booking.ID,
		Reference:    res.Booking.Reference,
		UserID:       res.Booking.UserID,
		ProviderID:   slot.ProviderID,
		ProviderName: providerName,
		SlotID:       slot.ID,
		SlotDate:     slot.SlotDate,
		StartTime:    slot.StartTime,
		ServiceName:  serviceName,
		AmountCents:  res.Booking.AmountCents,
		ConfirmedAt:  time.Now().UTC().Format(time.RFC3339),
	})
}
