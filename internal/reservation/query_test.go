package reservation

import (
	"context"
	"testing"
	"time"

	"github.com/avelora/slot-reservation/internal/model"
)

type fakeQueryStore struct {
	counts map[string]int
	lists  map[string][]model.Slot
}

func (s *fakeQueryStore) key(providerID uint64, date string) string {
	return date // single provider per test
}

func (s *fakeQueryStore) ListAvailable(ctx context.Context, providerID uint64, date string) ([]model.Slot, error) {
	return s.lists[s.key(providerID, date)], nil
}

func (s *fakeQueryStore) CountForDate(ctx context.Context, providerID uint64, date string) (int, error) {
	return s.counts[s.key(providerID, date)], nil
}

type fakeGenerator struct {
	calls int
	from  time.Time
	days  int
	fill  func()
}

func (g *fakeGenerator) EnsureWindow(ctx context.Context, providerID uint64, from time.Time, days int) error {
	g.calls++
	g.from = from
	g.days = days
	if g.fill != nil {
		g.fill()
	}
	return nil
}

func TestQueryService_ListAvailable(t *testing.T) {
	t.Parallel()

	t.Run("rejects malformed dates", func(t *testing.T) {
		q := NewQueryService(&fakeQueryStore{}, &fakeGenerator{})
		if _, err := q.ListAvailable(context.Background(), 1, "01-03-2025"); err != ErrInvalidDate {
			t.Fatalf("expected ErrInvalidDate, got %v", err)
		}
	})

	t.Run("materializes the window when the date has no slots", func(t *testing.T) {
		store := &fakeQueryStore{counts: map[string]int{}, lists: map[string][]model.Slot{}}
		gen := &fakeGenerator{}
		gen.fill = func() {
			store.lists["2025-03-01"] = []model.Slot{{ID: 1, StartTime: "10:00:00", Status: model.SlotStatusAvailable}}
		}
		q := NewQueryService(store, gen)

		slots, err := q.ListAvailable(context.Background(), 1, "2025-03-01")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if gen.calls != 1 {
			t.Fatalf("expected one generation call, got %d", gen.calls)
		}
		if gen.days != GenerationWindowDays {
			t.Fatalf("expected %d-day window, got %d", GenerationWindowDays, gen.days)
		}
		if want := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC); !gen.from.Equal(want) {
			t.Fatalf("expected window start %v, got %v", want, gen.from)
		}
		if len(slots) != 1 {
			t.Fatalf("expected the generated slot, got %d", len(slots))
		}
	})

	t.Run("skips generation when slots already exist", func(t *testing.T) {
		store := &fakeQueryStore{
			counts: map[string]int{"2025-03-01": 4},
			lists:  map[string][]model.Slot{"2025-03-01": {{ID: 1}, {ID: 2}}},
		}
		gen := &fakeGenerator{}
		q := NewQueryService(store, gen)

		slots, err := q.ListAvailable(context.Background(), 1, "2025-03-01")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if gen.calls != 0 {
			t.Fatalf("expected no generation, got %d calls", gen.calls)
		}
		if len(slots) != 2 {
			t.Fatalf("expected 2 slots, got %d", len(slots))
		}
	})

	t.Run("no availability after generation is an empty result, not an error", func(t *testing.T) {
		store := &fakeQueryStore{counts: map[string]int{}, lists: map[string][]model.Slot{}}
		gen := &fakeGenerator{}
		q := NewQueryService(store, gen)

		slots, err := q.ListAvailable(context.Background(), 1, "2025-03-01")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(slots) != 0 {
			t.Fatalf("expected empty result, got %d", len(slots))
		}
	})
}
