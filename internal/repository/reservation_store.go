package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/avelora/slot-reservation/internal/model"
)

// ReservationStore bundles the slot and booking repositories behind the
// narrow surface the reservation manager needs.  It owns the confirm
// transaction so the HELD→BOOKED transition and the booking insert
// commit or fail together.
type ReservationStore struct {
	db       *sql.DB
	slots    *SlotRepo
	bookings *BookingRepo
}

// NewReservationStore constructs a ReservationStore.  All dependencies
// must be non-nil.
func NewReservationStore(db *sql.DB, slots *SlotRepo, bookings *BookingRepo) *ReservationStore {
	if db == nil || slots == nil || bookings == nil {
		panic("nil dependency passed to NewReservationStore")
	}
	return &ReservationStore{db: db, slots: slots, bookings: bookings}
}

// GetSlot fetches one slot by ID.
func (s *ReservationStore) GetSlot(ctx context.Context, slotID uint64) (*model.Slot, error) {
	return s.slots.GetByID(ctx, slotID)
}

// ListAvailable returns the AVAILABLE slots for a provider and date.
func (s *ReservationStore) ListAvailable(ctx context.Context, providerID uint64, date string) ([]model.Slot, error) {
	return s.slots.ListAvailable(ctx, providerID, date)
}

// CountForDate reports how many slots exist for a provider and date in
// any status.
func (s *ReservationStore) CountForDate(ctx context.Context, providerID uint64, date string) (int, error) {
	return s.slots.CountForDate(ctx, providerID, date)
}

// AcquireHold attempts the conditional AVAILABLE→HELD transition.
func (s *ReservationStore) AcquireHold(ctx context.Context, slotID, userID uint64, deadline time.Time) (bool, error) {
	return s.slots.AcquireHold(ctx, slotID, userID, deadline)
}

// ReleaseHold attempts the conditional HELD→AVAILABLE transition.
func (s *ReservationStore) ReleaseHold(ctx context.Context, slotID, userID uint64) (bool, error) {
	return s.slots.ReleaseHold(ctx, slotID, userID)
}

// ReleaseOtherHolds drops any hold userID has on a slot other than
// keepSlotID.
func (s *ReservationStore) ReleaseOtherHolds(ctx context.Context, userID, keepSlotID uint64) (int64, error) {
	return s.slots.ReleaseOtherHolds(ctx, userID, keepSlotID)
}

// Confirm converts a live hold into a booking.  It inserts the booking
// row and applies the guarded HELD→BOOKED update in one transaction;
// when the slot-side predicate matches no row (hold lost or expired) the
// transaction is rolled back and false is returned with the booking ID
// left unset.
func (s *ReservationStore) Confirm(ctx context.Context, slotID, userID uint64, b *model.Booking) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := s.bookings.CreateTx(ctx, tx, b); err != nil {
		return false, err
	}
	ok, err := s.slots.ConfirmTx(ctx, tx, slotID, userID, b.ID)
	if err != nil {
		return false, err
	}
	if !ok {
		b.ID = 0
		return false, nil
	}
	if err := tx.Commit(); err != nil {
		return false, err
	}
	committed = true
	return true, nil
}
