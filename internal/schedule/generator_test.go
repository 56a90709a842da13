package schedule

import (
	"context"
	"testing"
	"time"

	"github.com/avelora/slot-reservation/internal/model"
)

type fakeTemplates struct {
	byProvider map[uint64][]model.AvailabilityTemplate
}

func (f *fakeTemplates) ActiveTemplates(ctx context.Context, providerID uint64) ([]model.AvailabilityTemplate, error) {
	return f.byProvider[providerID], nil
}

type slotKey struct {
	provider  uint64
	date, tod string
}

// fakeSlotWriter dedupes on (provider, date, time) the way the slots
// table's unique key does under INSERT IGNORE.
type fakeSlotWriter struct {
	rows  map[slotKey]model.Slot
	calls int
}

func newFakeSlotWriter() *fakeSlotWriter {
	return &fakeSlotWriter{rows: make(map[slotKey]model.Slot)}
}

func (f *fakeSlotWriter) CreateBulk(ctx context.Context, slots []model.Slot) error {
	f.calls++
	for _, s := range slots {
		key := slotKey{provider: s.ProviderID, date: s.SlotDate, tod: s.StartTime}
		if _, ok := f.rows[key]; !ok {
			f.rows[key] = s
		}
	}
	return nil
}

func TestGenerator_EnsureWindow(t *testing.T) {
	t.Parallel()

	// 2025-03-01 is a Saturday.
	from := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	saturday := int(time.Saturday)
	monday := int(time.Monday)

	t.Run("expands templates across matching weekdays in the window", func(t *testing.T) {
		tmpls := &fakeTemplates{byProvider: map[uint64][]model.AvailabilityTemplate{
			7: {
				{ProviderID: 7, Weekday: saturday, StartTime: "10:00:00", IsActive: true},
				{ProviderID: 7, Weekday: saturday, StartTime: "11:00:00", IsActive: true},
				{ProviderID: 7, Weekday: monday, StartTime: "09:00:00", IsActive: true},
			},
		}}
		writer := newFakeSlotWriter()
		g := NewGenerator(tmpls, writer)

		if err := g.EnsureWindow(context.Background(), 7, from, 14); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		// 14 days from a Saturday: 2 Saturdays and 2 Mondays.
		if want := 2*2 + 2*1; len(writer.rows) != want {
			t.Fatalf("expected %d slots, got %d", want, len(writer.rows))
		}
		for _, s := range writer.rows {
			if s.Status != model.SlotStatusAvailable {
				t.Fatalf("generated slot not available: %+v", s)
			}
		}
	})

	t.Run("regeneration yields the same set, no duplicates", func(t *testing.T) {
		tmpls := &fakeTemplates{byProvider: map[uint64][]model.AvailabilityTemplate{
			7: {{ProviderID: 7, Weekday: saturday, StartTime: "10:00:00", IsActive: true}},
		}}
		writer := newFakeSlotWriter()
		g := NewGenerator(tmpls, writer)

		if err := g.EnsureWindow(context.Background(), 7, from, 14); err != nil {
			t.Fatalf("first run: %v", err)
		}
		once := len(writer.rows)
		if err := g.EnsureWindow(context.Background(), 7, from, 14); err != nil {
			t.Fatalf("second run: %v", err)
		}
		if len(writer.rows) != once {
			t.Fatalf("regeneration changed the slot set: %d -> %d", once, len(writer.rows))
		}
		if writer.calls != 2 {
			t.Fatalf("expected two write calls, got %d", writer.calls)
		}
	})

	t.Run("provider without templates generates nothing", func(t *testing.T) {
		writer := newFakeSlotWriter()
		g := NewGenerator(&fakeTemplates{byProvider: map[uint64][]model.AvailabilityTemplate{}}, writer)

		if err := g.EnsureWindow(context.Background(), 9, from, 14); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(writer.rows) != 0 || writer.calls != 0 {
			t.Fatalf("expected no writes, got %d rows in %d calls", len(writer.rows), writer.calls)
		}
	})
}
