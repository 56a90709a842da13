package reservation

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/avelora/slot-reservation/internal/clock"
)

// Watcher supervises one countdown per held slot and releases the hold
// when the deadline passes without a confirm.  It is a server-side
// convenience mirroring the client's countdown so abandoned holds are
// returned promptly; the store-side deadline predicate and the periodic
// sweeper remain the safety mechanisms when the process dies with
// watches in flight.
type Watcher struct {
	manager *Manager
	clock   clock.Clock
	tick    time.Duration

	mu     sync.Mutex
	active map[uint64]*Countdown // keyed by slot ID
}

// NewWatcher constructs a Watcher releasing through the given manager.
func NewWatcher(m *Manager, clk clock.Clock, opts ...CountdownOption) *Watcher {
	cfg := countdownConfig{tick: DefaultTickInterval}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Watcher{
		manager: m,
		clock:   clk,
		tick:    cfg.tick,
		active:  make(map[uint64]*Countdown),
	}
}

// Track starts (or restarts) a countdown for a hold on slotID by userID.
// When the countdown expires the watcher releases the hold; a release
// that turns out to be a no-op (slot already confirmed or reclaimed) is
// fine.
func (w *Watcher) Track(slotID, userID uint64, deadline time.Time) {
	cd := NewCountdown(deadline, w.clock, WithTickInterval(w.tick))

	w.mu.Lock()
	if prev, ok := w.active[slotID]; ok {
		prev.Stop()
	}
	w.active[slotID] = cd
	w.mu.Unlock()

	go func() {
		<-cd.Done()
		w.forget(slotID, cd)
		select {
		case <-cd.Expired():
		default:
			return // stopped before the deadline, nothing to release
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		released, err := w.manager.ReleaseHold(ctx, slotID, userID)
		if err != nil {
			log.Printf("hold-watcher: release slot %d after expiry failed: %v", slotID, err)
			return
		}
		if released {
			log.Printf("hold-watcher: released expired hold on slot %d", slotID)
		}
	}()
}

// Cancel stops the countdown for slotID, if any, without releasing.
// Called when the hold was confirmed or explicitly released.
func (w *Watcher) Cancel(slotID uint64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if cur, ok := w.active[slotID]; ok {
		cur.Stop()
		delete(w.active, slotID)
	}
}

// forget removes the entry for slotID only if it still points at cd,
// so a Track that replaced the countdown is not clobbered.
func (w *Watcher) forget(slotID uint64, cd *Countdown) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if cur, ok := w.active[slotID]; ok && cur == cd {
		delete(w.active, slotID)
	}
}
