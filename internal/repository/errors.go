// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios without
// inspecting SQL driver errors directly. For example, ErrForbidden
// indicates that the current user is not authorized to act on a
// resource owned by someone else, while ErrConflict signals that a
// state transition cannot proceed from the record's current state.
package repository

import "errors"

// ErrSlotNotFound is returned when a slot lookup matches no row.
// Handlers should translate this into an HTTP 404 response.
var ErrSlotNotFound = errors.New("slot not found")

// ErrProviderNotFound is returned when a provider lookup matches no row.
var ErrProviderNotFound = errors.New("provider not found")

// ErrBookingNotFound is returned when a booking lookup matches no row
// or the booking is not visible to the requesting user.
var ErrBookingNotFound = errors.New("booking not found")

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own. Handlers should translate this into an
// HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when an update cannot be performed because of
// conflicting state, such as approving a provider that is not PENDING
// or cancelling a booking whose appointment has already started.
// Handlers should translate this into an HTTP 409 response.
var ErrConflict = errors.New("conflict")
