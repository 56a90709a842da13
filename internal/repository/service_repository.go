package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/avelora/slot-reservation/internal/model"
)

// ErrServiceNotFound is returned when a service lookup matches no row.
var ErrServiceNotFound = errors.New("service not found")

// ServiceRepo provides data access to the services table.
type ServiceRepo struct {
	db *sql.DB
}

// NewServiceRepo returns a new ServiceRepo bound to the provided database.
func NewServiceRepo(db *sql.DB) *ServiceRepo { return &ServiceRepo{db: db} }

// GetByID fetches a service by primary key.
func (r *ServiceRepo) GetByID(ctx context.Context, serviceID uint64) (*model.Service, error) {
	const q = `SELECT id, provider_id, name, description, price_cents, duration_min, is_active, created_at, updated_at
	           FROM services WHERE id = ?`
	var s model.Service
	err := r.db.QueryRowContext(ctx, q, serviceID).Scan(
		&s.ID, &s.ProviderID, &s.Name, &s.Description, &s.PriceCents, &s.DurationMin,
		&s.IsActive, &s.CreatedAt, &s.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrServiceNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// ListByProvider returns the active services offered by a provider.
func (r *ServiceRepo) ListByProvider(ctx context.Context, providerID uint64) ([]model.Service, error) {
	const q = `SELECT id, provider_id, name, description, price_cents, duration_min, is_active, created_at, updated_at
	           FROM services WHERE provider_id = ? AND is_active = 1 ORDER BY name ASC`
	rows, err := r.db.QueryContext(ctx, q, providerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Service
	for rows.Next() {
		var s model.Service
		if err := rows.Scan(&s.ID, &s.ProviderID, &s.Name, &s.Description, &s.PriceCents,
			&s.DurationMin, &s.IsActive, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Create inserts a new service for a provider.
func (r *ServiceRepo) Create(ctx context.Context, s *model.Service) error {
	const q = `INSERT INTO services (provider_id, name, description, price_cents, duration_min, is_active)
	           VALUES (?, ?, ?, ?, ?, 1)`
	res, err := r.db.ExecContext(ctx, q, s.ProviderID, s.Name, s.Description, s.PriceCents, s.DurationMin)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)
	return nil
}
