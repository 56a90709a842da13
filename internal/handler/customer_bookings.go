package handler

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/avelora/slot-reservation/internal/model"
	"github.com/avelora/slot-reservation/internal/payments"
	"github.com/avelora/slot-reservation/internal/repository"
)

// ListBookings handles GET /v1/bookings and returns the current user's
// booking history, newest first.
func (h *CustomerHandler) ListBookings(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	items, err := h.BookingRepo.ListByUser(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// GetBooking handles GET /v1/bookings/:id.  Ownership is enforced in
// the query, so another user's booking simply reads as not found.
func (h *CustomerHandler) GetBooking(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	bookingID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	b, err := h.BookingRepo.GetForUser(c.Request().Context(), bookingID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrBookingNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, bookingJSON(b))
}

// CancelBooking handles POST /v1/bookings/:id/cancel.  Cancelling marks
// the booking CANCELLED and, when the appointment has not started yet,
// returns its slot to AVAILABLE in the same transaction so someone else
// can take it.  Appointments already underway or in the past cannot be
// cancelled.
func (h *CustomerHandler) CancelBooking(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	bookingID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	ctx := c.Request().Context()
	b, err := h.BookingRepo.GetForUser(ctx, bookingID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrBookingNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if b.Status != model.BookingConfirmed {
		return c.JSON(http.StatusConflict, echo.Map{"error": "booking is not cancellable"})
	}
	slot, err := h.SlotRepo.GetByID(ctx, b.SlotID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if start, perr := time.Parse("2006-01-02 15:04:05", slot.SlotDate+" "+slot.StartTime); perr == nil && !start.After(time.Now().UTC()) {
		return c.JSON(http.StatusConflict, echo.Map{"error": "appointment has already started"})
	}

	tx, err := h.SlotRepo.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := h.BookingRepo.CancelTx(ctx, tx, bookingID); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "booking is not cancellable"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to cancel booking"})
	}
	if err := h.SlotRepo.ReleaseBookedTx(ctx, tx, b.SlotID, bookingID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to cancel booking"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to cancel booking"})
	}
	committed = true
	return c.JSON(http.StatusOK, echo.Map{"status": model.BookingCancelled})
}

// CreateCheckout handles POST /v1/bookings/:id/checkout.  It opens a
// hosted payment session for a confirmed booking and records the
// session ID on the booking.  Calling it again opens a fresh session
// and overwrites the reference; the payment provider deduplicates on
// its side.
func (h *CustomerHandler) CreateCheckout(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	if h.Payments == nil {
		return c.JSON(http.StatusNotImplemented, echo.Map{"error": "payments are not enabled"})
	}
	bookingID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	ctx := c.Request().Context()
	b, err := h.BookingRepo.GetForUser(ctx, bookingID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrBookingNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if b.Status != model.BookingConfirmed {
		return c.JSON(http.StatusConflict, echo.Map{"error": "booking is not payable"})
	}
	if b.AmountCents == 0 {
		return c.JSON(http.StatusConflict, echo.Map{"error": "booking has nothing to pay"})
	}

	desc := fmt.Sprintf("Booking %s", b.Reference)
	if p, perr := h.ProviderRepo.GetByID(ctx, b.ProviderID); perr == nil {
		desc = fmt.Sprintf("Appointment with %s", p.DisplayName)
	}
	sess, err := h.Payments.CreateSession(ctx, payments.SessionInput{
		BookingReference: b.Reference,
		Description:      desc,
		AmountCents:      int64(b.AmountCents),
	})
	if err != nil {
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "failed to create checkout session"})
	}
	if err := h.BookingRepo.SetPaymentRef(ctx, bookingID, sess.ID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"session_id":   sess.ID,
		"checkout_url": sess.URL,
	})
}

func bookingJSON(b *model.Booking) echo.Map {
	return echo.Map{
		"id":           b.ID,
		"reference":    b.Reference,
		"provider_id":  b.ProviderID,
		"slot_id":      b.SlotID,
		"service_id":   b.ServiceID,
		"status":       b.Status,
		"amount_cents": b.AmountCents,
		"payment_ref":  b.PaymentRef,
		"created_at":   b.CreatedAt,
	}
}
