// Package repository contains data access logic for slot operations.
// The slots table is the single shared mutable resource of the booking
// flow; every state transition on it is a short conditional UPDATE whose
// predicate names the expected current state.  Nothing in this file does
// a read followed by an unconditional write.
package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/avelora/slot-reservation/internal/model"
)

// dbTimeFormat is the DATETIME layout used for bind parameters.  All
// values are UTC; the driver DSN pins loc=UTC so scans come back UTC too.
const dbTimeFormat = "2006-01-02 15:04:05"

// SlotRepo provides data access to the slots table.  Status transitions
// are expressed as compare-and-set updates: the WHERE clause carries the
// expected current status (and holder/deadline where relevant) and the
// affected row count tells the caller whether it won or lost the race.
type SlotRepo struct {
	db *sql.DB
}

// NewSlotRepo returns a new SlotRepo bound to the provided database.
func NewSlotRepo(db *sql.DB) *SlotRepo { return &SlotRepo{db: db} }

// DB exposes the underlying sql.DB.  It allows callers to begin
// transactions spanning multiple repositories.
func (r *SlotRepo) DB() *sql.DB { return r.db }

const slotColumns = `id, provider_id, service_id, slot_date, start_time, status, held_by, hold_deadline, booking_id, created_at, updated_at`

func scanSlot(row interface{ Scan(...interface{}) error }) (*model.Slot, error) {
	var s model.Slot
	var serviceID, heldBy, bookingID sql.NullInt64
	var deadline sql.NullTime
	if err := row.Scan(&s.ID, &s.ProviderID, &serviceID, &s.SlotDate, &s.StartTime,
		&s.Status, &heldBy, &deadline, &bookingID, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	if serviceID.Valid {
		v := uint64(serviceID.Int64)
		s.ServiceID = &v
	}
	if heldBy.Valid {
		v := uint64(heldBy.Int64)
		s.HeldBy = &v
	}
	if deadline.Valid {
		t := deadline.Time.UTC()
		s.HoldDeadline = &t
	}
	if bookingID.Valid {
		v := uint64(bookingID.Int64)
		s.BookingID = &v
	}
	return &s, nil
}

// GetByID fetches a single slot by primary key.  Returns ErrSlotNotFound
// when no row matches.
func (r *SlotRepo) GetByID(ctx context.Context, slotID uint64) (*model.Slot, error) {
	const q = `SELECT ` + slotColumns + ` FROM slots WHERE id = ?`
	s, err := scanSlot(r.db.QueryRowContext(ctx, q, slotID))
	if err == sql.ErrNoRows {
		return nil, ErrSlotNotFound
	}
	return s, err
}

// ListAvailable returns the AVAILABLE slots for a provider on a calendar
// date ("YYYY-MM-DD"), ordered by time of day ascending.  An empty slice
// is a valid outcome meaning "no availability", not an error.
func (r *SlotRepo) ListAvailable(ctx context.Context, providerID uint64, date string) ([]model.Slot, error) {
	const q = `SELECT ` + slotColumns + ` FROM slots
	           WHERE provider_id = ? AND slot_date = ? AND status = 'AVAILABLE'
	           ORDER BY start_time ASC`
	rows, err := r.db.QueryContext(ctx, q, providerID, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Slot
	for rows.Next() {
		s, err := scanSlot(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

// CountForDate reports how many slot rows exist for a provider and date
// regardless of status.  The query service uses a zero count to decide
// that availability has not been materialized yet.
func (r *SlotRepo) CountForDate(ctx context.Context, providerID uint64, date string) (int, error) {
	const q = `SELECT COUNT(*) FROM slots WHERE provider_id = ? AND slot_date = ?`
	var n int
	err := r.db.QueryRowContext(ctx, q, providerID, date).Scan(&n)
	return n, err
}

// CreateBulk inserts slot rows in one statement.  The slots table has a
// unique key on (provider_id, slot_date, start_time) and the insert uses
// INSERT IGNORE, so regenerating a window that already has slots is a
// no-op rather than a duplicate.  Passing an empty slice has no effect.
func (r *SlotRepo) CreateBulk(ctx context.Context, slots []model.Slot) error {
	if len(slots) == 0 {
		return nil
	}
	query := `INSERT IGNORE INTO slots (provider_id, service_id, slot_date, start_time, status) VALUES `
	args := make([]interface{}, 0, len(slots)*5)
	for i, s := range slots {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?, ?, ?)"
		var serviceID interface{}
		if s.ServiceID != nil {
			serviceID = *s.ServiceID
		}
		args = append(args, s.ProviderID, serviceID, s.SlotDate, s.StartTime, model.SlotStatusAvailable)
	}
	_, err := r.db.ExecContext(ctx, query, args...)
	return err
}

// AcquireHold attempts the AVAILABLE→HELD transition for one slot.  The
// predicate also accepts a HELD slot whose deadline has already passed,
// so an abandoned hold is reclaimed by the next contender instead of
// stranding the slot until the sweeper runs, and a HELD slot whose
// holder is userID, so re-acquiring one's own hold restarts the TTL
// instead of reading as a lost race.  Returns true when exactly one row
// was updated; false means the caller lost the race.
func (r *SlotRepo) AcquireHold(ctx context.Context, slotID, userID uint64, deadline time.Time) (bool, error) {
	const q = `UPDATE slots
	           SET status = 'HELD', held_by = ?, hold_deadline = ?, updated_at = UTC_TIMESTAMP()
	           WHERE id = ?
	             AND (status = 'AVAILABLE'
	                  OR (status = 'HELD' AND (hold_deadline <= UTC_TIMESTAMP() OR held_by = ?)))`
	res, err := r.db.ExecContext(ctx, q, userID, deadline.UTC().Format(dbTimeFormat), slotID, userID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n == 1, err
}

// ReleaseHold returns a slot held by userID to AVAILABLE, clearing the
// holder and deadline.  The holder predicate stops one user from
// releasing another user's hold.  Returns false when nothing matched,
// which callers treat as an idempotent no-op.
func (r *SlotRepo) ReleaseHold(ctx context.Context, slotID, userID uint64) (bool, error) {
	const q = `UPDATE slots
	           SET status = 'AVAILABLE', held_by = NULL, hold_deadline = NULL, updated_at = UTC_TIMESTAMP()
	           WHERE id = ? AND status = 'HELD' AND held_by = ?`
	res, err := r.db.ExecContext(ctx, q, slotID, userID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n == 1, err
}

// ReleaseOtherHolds releases every hold userID has on slots other than
// keepSlotID.  A user holds at most one slot at a time within a booking
// flow; acquiring a new slot calls this first.  Returns the number of
// holds released.
func (r *SlotRepo) ReleaseOtherHolds(ctx context.Context, userID, keepSlotID uint64) (int64, error) {
	const q = `UPDATE slots
	           SET status = 'AVAILABLE', held_by = NULL, hold_deadline = NULL, updated_at = UTC_TIMESTAMP()
	           WHERE status = 'HELD' AND held_by = ? AND id <> ?`
	res, err := r.db.ExecContext(ctx, q, userID, keepSlotID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ConfirmTx performs the HELD→BOOKED transition within the caller's
// transaction.  The predicate re-checks holder and deadline on the store
// side, so a confirm attempted past the deadline fails here even if the
// client-side countdown never fired.  Returns true when the slot was
// booked.
func (r *SlotRepo) ConfirmTx(ctx context.Context, tx *sql.Tx, slotID, userID, bookingID uint64) (bool, error) {
	const q = `UPDATE slots
	           SET status = 'BOOKED', booking_id = ?, held_by = NULL, hold_deadline = NULL, updated_at = UTC_TIMESTAMP()
	           WHERE id = ? AND status = 'HELD' AND held_by = ? AND hold_deadline > UTC_TIMESTAMP()`
	res, err := tx.ExecContext(ctx, q, bookingID, slotID, userID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n == 1, err
}

// ReleaseBookedTx returns a BOOKED slot to AVAILABLE within the caller's
// transaction.  Used when a customer cancels a booking before the
// appointment.
func (r *SlotRepo) ReleaseBookedTx(ctx context.Context, tx *sql.Tx, slotID, bookingID uint64) error {
	const q = `UPDATE slots
	           SET status = 'AVAILABLE', booking_id = NULL, updated_at = UTC_TIMESTAMP()
	           WHERE id = ? AND status = 'BOOKED' AND booking_id = ?`
	_, err := tx.ExecContext(ctx, q, slotID, bookingID)
	return err
}

// ReclaimExpired returns every HELD slot whose deadline has passed to
// AVAILABLE.  The background sweeper calls this periodically so that
// abandoned holds (closed tabs, lost clients) are bounded by the sweep
// interval rather than lingering until the next acquire attempt.
func (r *SlotRepo) ReclaimExpired(ctx context.Context) (int64, error) {
	const q = `UPDATE slots
	           SET status = 'AVAILABLE', held_by = NULL, hold_deadline = NULL, updated_at = UTC_TIMESTAMP()
	           WHERE status = 'HELD' AND hold_deadline <= UTC_TIMESTAMP()`
	res, err := r.db.ExecContext(ctx, q)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// PruneUnbooked deletes the slots for a provider and date that have not
// been booked.  Called when a provider revokes availability for a date;
// booked slots always survive.  Returns the number of rows removed.
func (r *SlotRepo) PruneUnbooked(ctx context.Context, providerID uint64, date string) (int64, error) {
	const q = `DELETE FROM slots WHERE provider_id = ? AND slot_date = ? AND status <> 'BOOKED'`
	res, err := r.db.ExecContext(ctx, q, providerID, date)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// SetBlocked toggles the administrative BLOCKED override on a slot.  A
// slot can only be blocked from AVAILABLE and unblocked back to
// AVAILABLE; held or booked slots are left alone.  Returns ErrConflict
// when the slot is not in a state the transition can start from.
func (r *SlotRepo) SetBlocked(ctx context.Context, slotID uint64, blocked bool) error {
	from, to := model.SlotStatusAvailable, model.SlotStatusBlocked
	if !blocked {
		from, to = model.SlotStatusBlocked, model.SlotStatusAvailable
	}
	const q = `UPDATE slots SET status = ?, updated_at = UTC_TIMESTAMP() WHERE id = ? AND status = ?`
	res, err := r.db.ExecContext(ctx, q, to, slotID, from)
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
