package schedule

import (
	"context"
	"log"
	"time"
)

// Reclaimer returns expired holds to available.
type Reclaimer interface {
	ReclaimExpired(ctx context.Context) (int64, error)
}

// Sweeper periodically reclaims holds whose deadline has passed.  The
// client-side countdown is a convenience, not a safety mechanism: a
// closed tab never calls release, so the sweep bounds how long an
// abandoned hold can strand a slot.
type Sweeper struct {
	store    Reclaimer
	interval time.Duration
}

// NewSweeper constructs a Sweeper running every interval.
func NewSweeper(store Reclaimer, interval time.Duration) *Sweeper {
	if store == nil {
		panic("nil store passed to NewSweeper")
	}
	if interval <= 0 {
		interval = time.Minute
	}
	return &Sweeper{store: store, interval: interval}
}

// Run sweeps until ctx is cancelled.  Individual sweep failures are
// logged and retried on the next tick; the loop itself never exits on a
// store error.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.store.ReclaimExpired(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				log.Printf("hold-sweeper: reclaim failed: %v", err)
				continue
			}
			if n > 0 {
				log.Printf("hold-sweeper: reclaimed %d expired holds", n)
			}
		}
	}
}
