package model

import "time"

// Provider approval states as stored in providers.approval_status.  New
// providers start PENDING and serve no slot queries until an admin moves
// them to APPROVED.  REJECTED providers stay visible to admins only.
const (
	ProviderPending  = "PENDING"
	ProviderApproved = "APPROVED"
	ProviderRejected = "REJECTED"
)

// Provider represents a row in the `providers` table.  Each provider is
// owned by a user account and offers one or more services bookable
// through generated slots.
//
// Fields:
//  ID             – primary key identifier.
//  UserID         – owning user account.
//  DisplayName    – public name shown to customers.
//  Bio            – free-form description.
//  ApprovalStatus – one of the Provider* constants above.
//  CreatedAt      – creation timestamp.
//  UpdatedAt      – last update timestamp.
type Provider struct {
	ID             uint64    // providers.id
	UserID         uint64    // providers.user_id
	DisplayName    string    // providers.display_name
	Bio            string    // providers.bio
	ApprovalStatus string    // providers.approval_status
	CreatedAt      time.Time // providers.created_at
	UpdatedAt      time.Time // providers.updated_at
}

// AvailabilityTemplate is one recurring time-of-day opening in a
// provider's weekly schedule, stored in `availability_templates`.  Weekday
// follows time.Weekday numbering (0 = Sunday).  Slot generation expands
// active templates into concrete Slot rows for each enabled date.
//
// Fields:
//  ID         – primary key identifier.
//  ProviderID – provider this opening belongs to.
//  Weekday    – day of week the opening recurs on (0–6).
//  StartTime  – time of day as "HH:MM:SS".
//  ServiceID  – optional service the opening is dedicated to (nullable).
//  IsActive   – inactive templates are skipped by generation.
//  CreatedAt  – creation timestamp.
type AvailabilityTemplate struct {
	ID         uint64    // availability_templates.id
	ProviderID uint64    // availability_templates.provider_id
	Weekday    int       // availability_templates.weekday
	StartTime  string    // availability_templates.start_time
	ServiceID  *uint64   // availability_templates.service_id (nullable)
	IsActive   bool      // availability_templates.is_active
	CreatedAt  time.Time // availability_templates.created_at
}
