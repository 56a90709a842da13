package model

import "time"

// Service represents an offering listed by a provider, stored in the
// `services` table.  Pricing is in cents to avoid floating point money.
//
// Fields:
//  ID          – primary key identifier.
//  ProviderID  – provider offering the service.
//  Name        – customer-facing service name.
//  Description – free-form description.
//  PriceCents  – price in cents.
//  DurationMin – appointment length in minutes.
//  IsActive    – inactive services are hidden from customers.
//  CreatedAt   – creation timestamp.
//  UpdatedAt   – last update timestamp.
type Service struct {
	ID          uint64    // services.id
	ProviderID  uint64    // services.provider_id
	Name        string    // services.name
	Description string    // services.description
	PriceCents  uint32    // services.price_cents
	DurationMin uint32    // services.duration_min
	IsActive    bool      // services.is_active
	CreatedAt   time.Time // services.created_at
	UpdatedAt   time.Time // services.updated_at
}
