package repository

import (
	"context"
	"database/sql"

	"github.com/avelora/slot-reservation/internal/model"
)

// BookingDetail is the read model returned to customers listing their
// booking history.  It joins the booking with its slot and provider so
// the client does not need follow-up lookups.
type BookingDetail struct {
	ID           uint64  `json:"id"`
	Reference    string  `json:"reference"`
	Status       string  `json:"status"`
	AmountCents  uint32  `json:"amount_cents"`
	ProviderName string  `json:"provider_name"`
	ServiceName  *string `json:"service_name,omitempty"`
	SlotDate     string  `json:"slot_date"`
	StartTime    string  `json:"start_time"`
	CreatedAt    string  `json:"created_at"`
}

// BookingRepo provides data access to the bookings table.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a new BookingRepo bound to the provided database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// CreateTx inserts a booking using the provided transaction.  On success
// the generated ID is populated on the given Booking.  The caller must
// commit or roll back the transaction.
func (r *BookingRepo) CreateTx(ctx context.Context, tx *sql.Tx, b *model.Booking) error {
	const q = `INSERT INTO bookings (reference, user_id, provider_id, slot_id, service_id, status, amount_cents)
	           VALUES (?, ?, ?, ?, ?, ?, ?)`
	var serviceID interface{}
	if b.ServiceID != nil {
		serviceID = *b.ServiceID
	}
	res, err := tx.ExecContext(ctx, q, b.Reference, b.UserID, b.ProviderID, b.SlotID, serviceID, b.Status, b.AmountCents)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	return nil
}

// ListByUser returns the booking history for a customer, newest first.
func (r *BookingRepo) ListByUser(ctx context.Context, userID uint64) ([]BookingDetail, error) {
	const q = `SELECT b.id, b.reference, b.status, b.amount_cents,
	                  p.display_name, sv.name, s.slot_date, s.start_time, b.created_at
	           FROM bookings b
	           JOIN providers p ON p.id = b.provider_id
	           JOIN slots s ON s.id = b.slot_id
	           LEFT JOIN services sv ON sv.id = b.service_id
	           WHERE b.user_id = ?
	           ORDER BY b.created_at DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []BookingDetail
	for rows.Next() {
		var d BookingDetail
		var serviceName sql.NullString
		if err := rows.Scan(&d.ID, &d.Reference, &d.Status, &d.AmountCents,
			&d.ProviderName, &serviceName, &d.SlotDate, &d.StartTime, &d.CreatedAt); err != nil {
			return nil, err
		}
		if serviceName.Valid {
			d.ServiceName = &serviceName.String
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// GetForUser fetches one booking owned by userID.  Ownership is enforced
// in the query; a booking that exists but belongs to someone else is
// reported as ErrBookingNotFound so the response does not leak its
// existence.
func (r *BookingRepo) GetForUser(ctx context.Context, bookingID, userID uint64) (*model.Booking, error) {
	const q = `SELECT id, reference, user_id, provider_id, slot_id, service_id, status, amount_cents, payment_ref, created_at, updated_at
	           FROM bookings WHERE id = ? AND user_id = ?`
	var b model.Booking
	var serviceID sql.NullInt64
	var paymentRef sql.NullString
	err := r.db.QueryRowContext(ctx, q, bookingID, userID).Scan(
		&b.ID, &b.Reference, &b.UserID, &b.ProviderID, &b.SlotID, &serviceID,
		&b.Status, &b.AmountCents, &paymentRef, &b.CreatedAt, &b.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, err
	}
	if serviceID.Valid {
		v := uint64(serviceID.Int64)
		b.ServiceID = &v
	}
	if paymentRef.Valid {
		b.PaymentRef = &paymentRef.String
	}
	return &b, nil
}

// CancelTx marks a CONFIRMED booking CANCELLED within the caller's
// transaction.  Returns ErrConflict when the booking is not CONFIRMED,
// so repeated cancels and cancels of unknown state fail loudly instead
// of silently rewriting history.
func (r *BookingRepo) CancelTx(ctx context.Context, tx *sql.Tx, bookingID uint64) error {
	const q = `UPDATE bookings SET status = 'CANCELLED', updated_at = UTC_TIMESTAMP()
	           WHERE id = ? AND status = 'CONFIRMED'`
	res, err := tx.ExecContext(ctx, q, bookingID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrConflict
	}
	return nil
}

// SetPaymentRef attaches a payment session identifier to a booking after
// a checkout session has been created for it.
func (r *BookingRepo) SetPaymentRef(ctx context.Context, bookingID uint64, ref string) error {
	const q = `UPDATE bookings SET payment_ref = ?, updated_at = UTC_TIMESTAMP() WHERE id = ?`
	_, err := r.db.ExecContext(ctx, q, ref, bookingID)
	return err
}
