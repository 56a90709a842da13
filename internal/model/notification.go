package model

import "time"

// Notification is an in-app notification row in the `notifications`
// table.  Rows are written by the booking event consumer; delivery to
// external channels is out of scope for this service.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – recipient user.
//  Kind      – notification category (e.g. "booking.confirmed").
//  Message   – human-readable body.
//  IsRead    – whether the user has acknowledged it.
//  CreatedAt – creation timestamp.
type Notification struct {
	ID        uint64    // notifications.id
	UserID    uint64    // notifications.user_id
	Kind      string    // notifications.kind
	Message   string    // notifications.message
	IsRead    bool      // notifications.is_read
	CreatedAt time.Time // notifications.created_at
}
