// Package repository contains data access logic for provider records and
// their availability templates.  Approval transitions are guarded updates
// in the same compare-and-set style as slot transitions: the WHERE clause
// names the state the transition may start from.
package repository

import (
	"context"
	"database/sql"

	"github.com/avelora/slot-reservation/internal/model"
)

// ProviderRepo manages persistence for providers and their weekly
// availability templates.
type ProviderRepo struct {
	db *sql.DB
}

// NewProviderRepo returns a new ProviderRepo bound to the provided database.
func NewProviderRepo(db *sql.DB) *ProviderRepo { return &ProviderRepo{db: db} }

// GetByID fetches a provider by primary key.  Returns ErrProviderNotFound
// when no row matches.
func (r *ProviderRepo) GetByID(ctx context.Context, providerID uint64) (*model.Provider, error) {
	const q = `SELECT id, user_id, display_name, bio, approval_status, created_at, updated_at
	           FROM providers WHERE id = ?`
	var p model.Provider
	err := r.db.QueryRowContext(ctx, q, providerID).Scan(
		&p.ID, &p.UserID, &p.DisplayName, &p.Bio, &p.ApprovalStatus, &p.CreatedAt, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrProviderNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetByUserID fetches the provider owned by a user account.  Used by
// provider-role handlers to resolve "my provider" from the JWT subject.
func (r *ProviderRepo) GetByUserID(ctx context.Context, userID uint64) (*model.Provider, error) {
	const q = `SELECT id, user_id, display_name, bio, approval_status, created_at, updated_at
	           FROM providers WHERE user_id = ?`
	var p model.Provider
	err := r.db.QueryRowContext(ctx, q, userID).Scan(
		&p.ID, &p.UserID, &p.DisplayName, &p.Bio, &p.ApprovalStatus, &p.CreatedAt, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrProviderNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListByStatus returns providers in the given approval state, oldest
// first, for the admin review queue.
func (r *ProviderRepo) ListByStatus(ctx context.Context, status string) ([]model.Provider, error) {
	const q = `SELECT id, user_id, display_name, bio, approval_status, created_at, updated_at
	           FROM providers WHERE approval_status = ? ORDER BY created_at ASC`
	rows, err := r.db.QueryContext(ctx, q, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Provider
	for rows.Next() {
		var p model.Provider
		if err := rows.Scan(&p.ID, &p.UserID, &p.DisplayName, &p.Bio, &p.ApprovalStatus, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// SetApproval transitions a provider from PENDING to APPROVED or
// REJECTED.  The predicate on the current status makes the transition a
// compare-and-set: approving an already-decided provider returns
// ErrConflict rather than overwriting the earlier decision.
func (r *ProviderRepo) SetApproval(ctx context.Context, providerID uint64, status string) error {
	if status != model.ProviderApproved && status != model.ProviderRejected {
		return ErrConflict
	}
	const q = `UPDATE providers SET approval_status = ?, updated_at = UTC_TIMESTAMP()
	           WHERE id = ? AND approval_status = 'PENDING'`
	res, err := r.db.ExecContext(ctx, q, status, providerID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// Distinguish missing provider from an already-decided one.
		if _, gerr := r.GetByID(ctx, providerID); gerr != nil {
			return gerr
		}
		return ErrConflict
	}
	return nil
}

// ActiveTemplates returns the active weekly availability templates for a
// provider, ordered by weekday then time of day.  Slot generation expands
// these into concrete slot rows.
func (r *ProviderRepo) ActiveTemplates(ctx context.Context, providerID uint64) ([]model.AvailabilityTemplate, error) {
	const q = `SELECT id, provider_id, weekday, start_time, service_id, is_active, created_at
	           FROM availability_templates
	           WHERE provider_id = ? AND is_active = 1
	           ORDER BY weekday ASC, start_time ASC`
	rows, err := r.db.QueryContext(ctx, q, providerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.AvailabilityTemplate
	for rows.Next() {
		var t model.AvailabilityTemplate
		var serviceID sql.NullInt64
		if err := rows.Scan(&t.ID, &t.ProviderID, &t.Weekday, &t.StartTime, &serviceID, &t.IsActive, &t.CreatedAt); err != nil {
			return nil, err
		}
		if serviceID.Valid {
			v := uint64(serviceID.Int64)
			t.ServiceID = &v
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// CreateTemplate inserts one weekly opening for a provider.  The table
// has a unique key on (provider_id, weekday, start_time); inserting a
// duplicate opening returns ErrConflict.
func (r *ProviderRepo) CreateTemplate(ctx context.Context, t *model.AvailabilityTemplate) error {
	const q = `INSERT INTO availability_templates (provider_id, weekday, start_time, service_id, is_active)
	           VALUES (?, ?, ?, ?, 1)`
	var serviceID interface{}
	if t.ServiceID != nil {
		serviceID = *t.ServiceID
	}
	res, err := r.db.ExecContext(ctx, q, t.ProviderID, t.Weekday, t.StartTime, serviceID)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrConflict
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = uint64(id)
	return nil
}

// DeactivateTemplate switches one opening off.  Already-generated slots
// are untouched; callers prune future unbooked slots separately.
func (r *ProviderRepo) DeactivateTemplate(ctx context.Context, providerID, templateID uint64) error {
	const q = `UPDATE availability_templates SET is_active = 0 WHERE id = ? AND provider_id = ?`
	res, err := r.db.ExecContext(ctx, q, templateID, providerID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrForbidden
	}
	return nil
}
