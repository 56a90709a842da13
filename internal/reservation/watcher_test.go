package reservation

import (
	"context"
	"testing"
	"time"

	"github.com/avelora/slot-reservation/internal/clock"
	"github.com/avelora/slot-reservation/internal/model"
)

func waitForStatus(t *testing.T, store *fakeStore, slotID uint64, status string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if store.get(slotID).Status == status {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("slot %d never reached %s, ended at %s", slotID, status, store.get(slotID).Status)
}

func TestWatcher_ReleasesOnExpiry(t *testing.T) {
	t.Parallel()

	clk := clock.NewSystem()
	store := newFakeStore(clk, availableSlot(1, 7))
	m := NewManager(store, clk, WithHoldTTL(30*time.Millisecond))
	w := NewWatcher(m, clk, WithTickInterval(5*time.Millisecond))

	res, err := m.AcquireHold(context.Background(), 1, 100)
	if err != nil || !res.Acquired {
		t.Fatalf("acquire failed: %+v err=%v", res, err)
	}
	w.Track(1, 100, res.Deadline)

	waitForStatus(t, store, 1, model.SlotStatusAvailable)
}

func TestWatcher_CancelKeepsHold(t *testing.T) {
	t.Parallel()

	clk := clock.NewSystem()
	store := newFakeStore(clk, availableSlot(1, 7))
	m := NewManager(store, clk, WithHoldTTL(50*time.Millisecond))
	w := NewWatcher(m, clk, WithTickInterval(5*time.Millisecond))

	res, err := m.AcquireHold(context.Background(), 1, 100)
	if err != nil || !res.Acquired {
		t.Fatalf("acquire failed: %+v err=%v", res, err)
	}
	w.Track(1, 100, res.Deadline)
	w.Cancel(1)

	// Give a cancelled watch room to misfire before checking.
	time.Sleep(100 * time.Millisecond)
	if got := store.get(1).Status; got != model.SlotStatusHeld {
		t.Fatalf("expected hold to survive cancel, got %s", got)
	}
}

func TestWatcher_RetrackReplacesCountdown(t *testing.T) {
	t.Parallel()

	clk := clock.NewSystem()
	store := newFakeStore(clk, availableSlot(1, 7))
	m := NewManager(store, clk, WithHoldTTL(time.Minute))
	w := NewWatcher(m, clk, WithTickInterval(5*time.Millisecond))

	res, err := m.AcquireHold(context.Background(), 1, 100)
	if err != nil || !res.Acquired {
		t.Fatalf("acquire failed: %+v err=%v", res, err)
	}
	w.Track(1, 100, res.Deadline)
	// Re-track with a short deadline, as happens when the same user
	// re-acquires; the first countdown must not survive.
	w.Track(1, 100, time.Now().UTC().Add(20*time.Millisecond))

	waitForStatus(t, store, 1, model.SlotStatusAvailable)
}
