package reservation

import (
	"context"
	"errors"
	"time"

	"github.com/avelora/slot-reservation/internal/model"
)

// GenerationWindowDays is the forward window materialized when a query
// finds no slots for the requested date.
const GenerationWindowDays = 14

// ErrInvalidDate is returned when the requested date is not a valid
// "YYYY-MM-DD" calendar date.
var ErrInvalidDate = errors.New("invalid date")

// Generator materializes slot rows for a provider over a forward window.
// Implementations must be idempotent: re-running a window that already
// has slots must not duplicate them.
type Generator interface {
	EnsureWindow(ctx context.Context, providerID uint64, from time.Time, days int) error
}

// QueryStore is the read surface the query service needs.
type QueryStore interface {
	ListAvailable(ctx context.Context, providerID uint64, date string) ([]model.Slot, error)
	CountForDate(ctx context.Context, providerID uint64, date string) (int, error)
}

// QueryService returns the available slots for a provider and date,
// lazily triggering generation when the date has not been materialized
// yet.  An empty result after generation means "no availability" and is
// not an error.
type QueryService struct {
	store      QueryStore
	gen        Generator
	windowDays int
}

// QueryOption customizes a QueryService.
type QueryOption func(*QueryService)

// WithWindowDays overrides the default generation window length.
func WithWindowDays(days int) QueryOption {
	return func(q *QueryService) {
		if days > 0 {
			q.windowDays = days
		}
	}
}

// NewQueryService constructs a QueryService.
func NewQueryService(store QueryStore, gen Generator, opts ...QueryOption) *QueryService {
	if store == nil || gen == nil {
		panic("nil dependency passed to NewQueryService")
	}
	q := &QueryService{store: store, gen: gen, windowDays: GenerationWindowDays}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// ListAvailable returns the AVAILABLE slots for providerID on date,
// ordered by time of day.  When no slot rows exist for the date at all,
// availability has not been materialized: generation runs over a
// fixed forward window starting at the date and the query re-runs.
func (q *QueryService) ListAvailable(ctx context.Context, providerID uint64, date string) ([]model.Slot, error) {
	from, err := time.Parse("2006-01-02", date)
	if err != nil {
		return nil, ErrInvalidDate
	}
	n, err := q.store.CountForDate(ctx, providerID, date)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		if err := q.gen.EnsureWindow(ctx, providerID, from, q.windowDays); err != nil {
			return nil, err
		}
	}
	return q.store.ListAvailable(ctx, providerID, date)
}
