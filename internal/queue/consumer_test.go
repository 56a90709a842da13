package queue

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/avelora/slot-reservation/internal/model"
)

// fakeNotificationWriter records created notifications and can be
// primed to fail.
type fakeNotificationWriter struct {
	created []model.Notification
	err     error
}

func (w *fakeNotificationWriter) Create(_ context.Context, n *model.Notification) error {
	if w.err != nil {
		return w.err
	}
	w.created = append(w.created, *n)
	return nil
}

func TestHandleMessage(t *testing.T) {
	t.Parallel()

	event := BookingConfirmedEvent{
		BookingID:    12,
		Reference:    "6f1b2a34-0000-4000-8000-000000000042",
		UserID:       7,
		ProviderID:   3,
		ProviderName: "Dr. Vega",
		SlotID:       41,
		SlotDate:     "2025-03-10",
		StartTime:    "09:00:00",
		ServiceName:  "Consultation",
		AmountCents:  5000,
	}

	t.Run("event becomes one notification row", func(t *testing.T) {
		t.Parallel()
		body, err := json.Marshal(event)
		if err != nil {
			t.Fatalf("marshal event: %v", err)
		}
		w := &fakeNotificationWriter{}

		if err := handleMessage(body, w); err != nil {
			t.Fatalf("handleMessage returned error: %v", err)
		}
		if len(w.created) != 1 {
			t.Fatalf("expected 1 notification, got %d", len(w.created))
		}
		n := w.created[0]
		if n.UserID != 7 {
			t.Errorf("UserID = %d, want 7", n.UserID)
		}
		if n.Kind != "booking.confirmed" {
			t.Errorf("Kind = %q, want %q", n.Kind, "booking.confirmed")
		}
		for _, part := range []string{event.Reference, "Consultation", "Dr. Vega", "2025-03-10", "09:00:00"} {
			if !strings.Contains(n.Message, part) {
				t.Errorf("message %q missing %q", n.Message, part)
			}
		}
	})

	t.Run("event without a service still reads naturally", func(t *testing.T) {
		t.Parallel()
		ev := event
		ev.ServiceName = ""
		body, _ := json.Marshal(ev)
		w := &fakeNotificationWriter{}

		if err := handleMessage(body, w); err != nil {
			t.Fatalf("handleMessage returned error: %v", err)
		}
		msg := w.created[0].Message
		if !strings.Contains(msg, "Dr. Vega") || strings.Contains(msg, "Consultation") {
			t.Errorf("unexpected message without service: %q", msg)
		}
	})

	t.Run("malformed payload errors without writing", func(t *testing.T) {
		t.Parallel()
		w := &fakeNotificationWriter{}

		if err := handleMessage([]byte("{not json"), w); err == nil {
			t.Fatal("expected error for malformed payload")
		}
		if len(w.created) != 0 {
			t.Fatalf("expected no notifications, got %d", len(w.created))
		}
	})

	t.Run("writer failure propagates so the message is rejected", func(t *testing.T) {
		t.Parallel()
		body, _ := json.Marshal(event)
		w := &fakeNotificationWriter{err: errors.New("insert failed")}

		if err := handleMessage(body, w); err == nil {
			t.Fatal("expected writer error to propagate")
		}
	})
}
