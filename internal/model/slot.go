package model

import "time"

// Slot statuses as stored in the slots.status column.  AVAILABLE slots can
// be held, HELD slots carry a holder and a deadline, BOOKED slots reference
// a booking and are terminal, BLOCKED is an administrative override that
// keeps a slot out of customer reach entirely.
const (
	SlotStatusAvailable = "AVAILABLE"
	SlotStatusHeld      = "HELD"
	SlotStatusBooked    = "BOOKED"
	SlotStatusBlocked   = "BLOCKED"
)

// Slot represents one bookable provider time unit as stored in the
// `slots` table.  A slot is materialized from the provider's availability
// template by the generation step and moves through
// AVAILABLE → HELD → AVAILABLE|BOOKED over its life.  HeldBy and
// HoldDeadline are set together when the slot is HELD and cleared together
// when it is released; BookingID is set only once the slot is BOOKED.
//
// Fields:
//  ID           – primary key identifier.
//  ProviderID   – provider offering this time unit.
//  ServiceID    – optional service this slot is dedicated to (nullable).
//  SlotDate     – calendar date of the slot (date component only).
//  StartTime    – time of day as "HH:MM:SS".
//  Status       – one of the SlotStatus constants above.
//  HeldBy       – user currently holding the slot (nullable, HELD only).
//  HoldDeadline – instant the hold lapses (nullable, HELD only).
//  BookingID    – booking that consumed the slot (nullable, BOOKED only).
//  CreatedAt    – creation timestamp.
//  UpdatedAt    – last update timestamp.
type Slot struct {
	ID           uint64     // slots.id
	ProviderID   uint64     // slots.provider_id
	ServiceID    *uint64    // slots.service_id (nullable)
	SlotDate     string     // slots.slot_date (YYYY-MM-DD)
	StartTime    string     // slots.start_time (HH:MM:SS)
	Status       string     // slots.status
	HeldBy       *uint64    // slots.held_by (nullable)
	HoldDeadline *time.Time // slots.hold_deadline (nullable)
	BookingID    *uint64    // slots.booking_id (nullable)
	CreatedAt    time.Time  // slots.created_at
	UpdatedAt    time.Time  // slots.updated_at
}

// Held reports whether the slot currently carries a live hold relative to
// the supplied instant.  A HELD slot whose deadline has passed is treated
// as reclaimable, not held.
func (s *Slot) Held(now time.Time) bool {
	return s.Status == SlotStatusHeld && s.HoldDeadline != nil && s.HoldDeadline.After(now)
}
