// Package queue defines message payloads exchanged over the message broker.
package queue

// BookingConfirmedEvent is published when a hold is successfully
// converted into a booking.  It carries enough context for downstream
// consumers to write notifications or trigger analytics without
// querying the primary database.
type BookingConfirmedEvent struct {
	BookingID    uint64 `json:"booking_id"`
	Reference    string `json:"reference"`
	UserID       uint64 `json:"user_id"`
	ProviderID   uint64 `json:"provider_id"`
	ProviderName string `json:"provider_name"`
	SlotID       uint64 `json:"slot_id"`
	SlotDate     string `json:"slot_date"`
	StartTime    string `json:"start_time"`
	ServiceName  string `json:"service_name,omitempty"`
	AmountCents  uint32 `json:"amount_cents"`
	ConfirmedAt  string `json:"confirmed_at"`
}
