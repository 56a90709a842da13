package model

import "time"

// Booking statuses as stored in bookings.status.  A booking is created
// CONFIRMED when a hold is successfully converted; it becomes CANCELLED
// when the customer cancels before the appointment.
const (
	BookingConfirmed = "CONFIRMED"
	BookingCancelled = "CANCELLED"
)

// Booking records a confirmed appointment for a slot, stored in the
// `bookings` table.  Reference is an opaque UUID handed to the customer
// and used as the client reference on payment sessions.
//
// Fields:
//  ID          – primary key identifier.
//  Reference   – external booking reference (UUID).
//  UserID      – customer who booked.
//  ProviderID  – provider being booked.
//  SlotID      – slot consumed by this booking.
//  ServiceID   – service selected at confirmation (nullable).
//  Status      – one of the Booking* constants above.
//  AmountCents – price charged for the booking in cents.
//  PaymentRef  – payment session/checkout identifier, if any (nullable).
//  CreatedAt   – creation timestamp.
//  UpdatedAt   – last update timestamp.
type Booking struct {
	ID          uint64    // bookings.id
	Reference   string    // bookings.reference
	UserID      uint64    // bookings.user_id
	ProviderID  uint64    // bookings.provider_id
	SlotID      uint64    // bookings.slot_id
	ServiceID   *uint64   // bookings.service_id (nullable)
	Status      string    // bookings.status
	AmountCents uint32    // bookings.amount_cents
	PaymentRef  *string   // bookings.payment_ref (nullable)
	CreatedAt   time.Time // bookings.created_at
	UpdatedAt   time.Time // bookings.updated_at
}
