package schedule

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

type fakeReclaimer struct {
	calls atomic.Int64
	fail  bool
}

func (f *fakeReclaimer) ReclaimExpired(ctx context.Context) (int64, error) {
	f.calls.Add(1)
	if f.fail {
		return 0, errors.New("store down")
	}
	return 2, nil
}

func TestSweeper_Run(t *testing.T) {
	t.Parallel()

	t.Run("sweeps repeatedly until cancelled", func(t *testing.T) {
		store := &fakeReclaimer{}
		s := NewSweeper(store, 10*time.Millisecond)

		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
		defer cancel()

		done := make(chan struct{})
		go func() {
			s.Run(ctx)
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatalf("sweeper did not stop on context cancellation")
		}
		if n := store.calls.Load(); n < 2 {
			t.Fatalf("expected at least 2 sweeps, got %d", n)
		}
	})

	t.Run("keeps running through store failures", func(t *testing.T) {
		store := &fakeReclaimer{fail: true}
		s := NewSweeper(store, 10*time.Millisecond)

		ctx, cancel := context.WithTimeout(context.Background(), 80*time.Millisecond)
		defer cancel()
		s.Run(ctx)

		if n := store.calls.Load(); n < 2 {
			t.Fatalf("expected retries despite failures, got %d calls", n)
		}
	})
}
