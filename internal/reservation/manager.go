// Package reservation implements the hold/release/confirm protocol that
// mediates exclusive, time-bounded access to bookable slots.  The
// manager never decides contention itself: every transition is a
// conditional update executed by the store, and the affected-row result
// tells the manager whether it won or lost the race.
package reservation

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/avelora/slot-reservation/internal/clock"
	"github.com/avelora/slot-reservation/internal/model"
)

// DefaultHoldTTL is how long a hold lives from acquisition.  There is no
// extension mechanism; a slow customer re-acquires.
const DefaultHoldTTL = 7 * time.Minute

// ErrUnauthenticated is returned when an operation is attempted without
// an authenticated user.  It is raised before any store round-trip.
var ErrUnauthenticated = errors.New("unauthenticated")

// Store is the slice of the persistence layer the manager depends on.
// Implementations must provide compare-and-set semantics: AcquireHold,
// ReleaseHold and Confirm apply their transition only when the record's
// current state matches the expected predicate, reporting the result via
// their boolean return.
type Store interface {
	GetSlot(ctx context.Context, slotID uint64) (*model.Slot, error)
	AcquireHold(ctx context.Context, slotID, userID uint64, deadline time.Time) (bool, error)
	ReleaseHold(ctx context.Context, slotID, userID uint64) (bool, error)
	ReleaseOtherHolds(ctx context.Context, userID, keepSlotID uint64) (int64, error)
	Confirm(ctx context.Context, slotID, userID uint64, b *model.Booking) (bool, error)
}

// Manager mediates holds on behalf of users.  It is safe for concurrent
// use; all mutable state lives in the store.
type Manager struct {
	store   Store
	clock   clock.Clock
	holdTTL time.Duration
}

// Option customizes a Manager.
type Option func(*Manager)

// WithHoldTTL overrides the default hold duration.
func WithHoldTTL(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.holdTTL = d
		}
	}
}

// NewManager constructs a Manager with an injected store and clock.
func NewManager(store Store, clk clock.Clock, opts ...Option) *Manager {
	if store == nil || clk == nil {
		panic("nil dependency passed to NewManager")
	}
	m := &Manager{store: store, clock: clk, holdTTL: DefaultHoldTTL}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// HoldTTL reports the configured hold duration.
func (m *Manager) HoldTTL() time.Duration { return m.holdTTL }

// AcquireResult reports the outcome of AcquireHold.  Unavailable (that
// is, Acquired == false with a nil error) is the expected result of
// losing a race, not a failure; callers refresh the slot list.
type AcquireResult struct {
	Acquired bool
	Deadline time.Time // set only when Acquired
}

// AcquireHold attempts to hold slotID for userID until now + hold TTL.
// Any other hold the user currently has is released first: one user
// holds at most one slot at a time within a booking flow.  Acquiring a
// slot the user already holds succeeds and restarts the TTL.
func (m *Manager) AcquireHold(ctx context.Context, slotID, userID uint64) (AcquireResult, error) {
	if userID == 0 {
		return AcquireResult{}, ErrUnauthenticated
	}
	if _, err := m.store.ReleaseOtherHolds(ctx, userID, slotID); err != nil {
		return AcquireResult{}, err
	}
	deadline := m.clock.Now().Add(m.holdTTL)
	ok, err := m.store.AcquireHold(ctx, slotID, userID, deadline)
	if err != nil {
		return AcquireResult{}, err
	}
	if !ok {
		return AcquireResult{}, nil
	}
	return AcquireResult{Acquired: true, Deadline: deadline}, nil
}

// ReleaseHold returns the slot to available if userID still holds it.
// The boolean reports whether a hold was actually released; releasing a
// slot that is already available or booked is a no-op, not an error.
func (m *Manager) ReleaseHold(ctx context.Context, slotID, userID uint64) (bool, error) {
	if userID == 0 {
		return false, ErrUnauthenticated
	}
	return m.store.ReleaseHold(ctx, slotID, userID)
}

// ConfirmStatus classifies the outcome of ConfirmHold.
type ConfirmStatus int

const (
	// Confirmed means the hold was converted into a booking.
	Confirmed ConfirmStatus = iota
	// Expired means the hold's deadline had passed; the slot has been
	// released back to available.
	Expired
	// Unavailable means the user did not hold the slot (lost race,
	// already booked, or never held).
	Unavailable
)

// ConfirmInput carries the booking handoff parameters.
type ConfirmInput struct {
	SlotID      uint64
	UserID      uint64
	ServiceID   *uint64
	AmountCents uint32
}

// ConfirmResult reports the outcome of ConfirmHold.  Booking is set only
// when Status == Confirmed.
type ConfirmResult struct {
	Status  ConfirmStatus
	Booking *model.Booking
}

// ConfirmHold converts a live hold into a booking.  The store applies
// the holder and deadline predicates itself, so a confirm attempted past
// the deadline can never succeed regardless of what the client-side
// countdown believed.  On an expired hold the manager releases the slot
// before returning; a failed release propagates as an error rather than
// leaving the client thinking the slot is free.
func (m *Manager) ConfirmHold(ctx context.Context, in ConfirmInput) (ConfirmResult, error) {
	if in.UserID == 0 {
		return ConfirmResult{}, ErrUnauthenticated
	}
	slot, err := m.store.GetSlot(ctx, in.SlotID)
	if err != nil {
		return ConfirmResult{}, err
	}
	booking := &model.Booking{
		Reference:   uuid.New().String(),
		UserID:      in.UserID,
		ProviderID:  slot.ProviderID,
		SlotID:      in.SlotID,
		ServiceID:   in.ServiceID,
		Status:      model.BookingConfirmed,
		AmountCents: in.AmountCents,
	}
	ok, err := m.store.Confirm(ctx, in.SlotID, in.UserID, booking)
	if err != nil {
		return ConfirmResult{}, err
	}
	if ok {
		return ConfirmResult{Status: Confirmed, Booking: booking}, nil
	}

	// The guarded update matched nothing.  Re-read to tell an expired
	// hold apart from a plain lost race.
	slot, err = m.store.GetSlot(ctx, in.SlotID)
	if err != nil {
		return ConfirmResult{}, err
	}
	switch {
	case slot.Status == model.SlotStatusHeld && slot.HeldBy != nil && *slot.HeldBy == in.UserID:
		// Still nominally ours, so the deadline predicate is what
		// failed.  Release so the slot goes back into circulation.
		if _, err := m.store.ReleaseHold(ctx, in.SlotID, in.UserID); err != nil {
			return ConfirmResult{}, err
		}
		return ConfirmResult{Status: Expired}, nil
	case slot.Status == model.SlotStatusAvailable:
		// Our expired hold was already reclaimed.
		return ConfirmResult{Status: Expired}, nil
	default:
		return ConfirmResult{Status: Unavailable}, nil
	}
}
