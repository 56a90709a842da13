package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/avelora/slot-reservation/internal/clock"
	"github.com/avelora/slot-reservation/internal/model"
	"github.com/avelora/slot-reservation/internal/reservation"
)

// fakeStore is an in-memory reservation.Store with the same
// compare-and-set semantics as the MySQL implementation.
type fakeStore struct {
	mu    sync.Mutex
	slots map[uint64]*model.Slot
	now   func() time.Time
}

func newFakeStore(now func() time.Time) *fakeStore {
	return &fakeStore{slots: make(map[uint64]*model.Slot), now: now}
}

func (s *fakeStore) GetSlot(_ context.Context, slotID uint64) (*model.Slot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sl, ok := s.slots[slotID]
	if !ok {
		return nil, errNotFound
	}
	cp := *sl
	return &cp, nil
}

func (s *fakeStore) AcquireHold(_ context.Context, slotID, userID uint64, deadline time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sl, ok := s.slots[slotID]
	if !ok {
		return false, nil
	}
	expired := sl.Status == model.SlotStatusHeld && sl.HoldDeadline != nil && !sl.HoldDeadline.After(s.now())
	ownHold := sl.Status == model.SlotStatusHeld && sl.HeldBy != nil && *sl.HeldBy == userID
	if sl.Status != model.SlotStatusAvailable && !expired && !ownHold {
		return false, nil
	}
	sl.Status = model.SlotStatusHeld
	sl.HeldBy = &userID
	sl.HoldDeadline = &deadline
	return true, nil
}

func (s *fakeStore) ReleaseHold(_ context.Context, slotID, userID uint64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sl, ok := s.slots[slotID]
	if !ok || sl.Status != model.SlotStatusHeld || sl.HeldBy == nil || *sl.HeldBy != userID {
		return false, nil
	}
	sl.Status = model.SlotStatusAvailable
	sl.HeldBy = nil
	sl.HoldDeadline = nil
	return true, nil
}

func (s *fakeStore) ReleaseOtherHolds(_ context.Context, userID, keepSlotID uint64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for id, sl := range s.slots {
		if id == keepSlotID || sl.Status != model.SlotStatusHeld || sl.HeldBy == nil || *sl.HeldBy != userID {
			continue
		}
		sl.Status = model.SlotStatusAvailable
		sl.HeldBy = nil
		sl.HoldDeadline = nil
		n++
	}
	return n, nil
}

func (s *fakeStore) Confirm(_ context.Context, slotID, userID uint64, b *model.Booking) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sl, ok := s.slots[slotID]
	if !ok || sl.Status != model.SlotStatusHeld || sl.HeldBy == nil || *sl.HeldBy != userID {
		return false, nil
	}
	if sl.HoldDeadline == nil || !sl.HoldDeadline.After(s.now()) {
		return false, nil
	}
	b.ID = 1
	sl.Status = model.SlotStatusBooked
	sl.HeldBy = nil
	sl.HoldDeadline = nil
	sl.BookingID = &b.ID
	return true, nil
}

var errNotFound = errors.New("slot not found")

func holdRequest(t *testing.T, h *CustomerHandler, method string, slotID uint64, userID interface{}) (*httptest.ResponseRecorder, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/v1/slots/:id/hold")
	c.SetParamNames("id")
	c.SetParamValues(strconv.FormatUint(slotID, 10))
	if userID != nil {
		c.Set("user_id", userID)
	}
	if method == http.MethodDelete {
		return rec, h.ReleaseSlot(c)
	}
	return rec, h.HoldSlot(c)
}

func TestHoldSlot(t *testing.T) {
	t.Parallel()

	base := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	newHandler := func(store *fakeStore) *CustomerHandler {
		clk := clock.NewFixed(base)
		return &CustomerHandler{
			Manager: reservation.NewManager(store, clk),
		}
	}

	t.Run("acquires an available slot", func(t *testing.T) {
		t.Parallel()
		clk := clock.NewFixed(base)
		store := newFakeStore(clk.Now)
		store.slots[41] = &model.Slot{ID: 41, Status: model.SlotStatusAvailable}
		h := newHandler(store)

		// JWT numeric claims arrive as float64 through the context.
		rec, err := holdRequest(t, h, http.MethodPost, 41, float64(7))
		if err != nil {
			t.Fatalf("HoldSlot returned error: %v", err)
		}
		if rec.Code != http.StatusCreated {
			t.Fatalf("status = %d, want %d (body %s)", rec.Code, http.StatusCreated, rec.Body)
		}
		var body struct {
			SlotID    uint64 `json:"slot_id"`
			ExpiresAt string `json:"expires_at"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		want := base.Add(reservation.DefaultHoldTTL).Format(time.RFC3339)
		if body.ExpiresAt != want {
			t.Errorf("expires_at = %q, want %q", body.ExpiresAt, want)
		}
		if body.SlotID != 41 {
			t.Errorf("slot_id = %d, want 41", body.SlotID)
		}
	})

	t.Run("holder re-posting their own hold gets 201, not conflict", func(t *testing.T) {
		t.Parallel()
		clk := clock.NewFixed(base)
		store := newFakeStore(clk.Now)
		holder := uint64(7)
		deadline := base.Add(3 * time.Minute)
		store.slots[41] = &model.Slot{ID: 41, Status: model.SlotStatusHeld, HeldBy: &holder, HoldDeadline: &deadline}
		h := newHandler(store)

		rec, err := holdRequest(t, h, http.MethodPost, 41, float64(7))
		if err != nil {
			t.Fatalf("HoldSlot returned error: %v", err)
		}
		if rec.Code != http.StatusCreated {
			t.Fatalf("status = %d, want %d (body %s)", rec.Code, http.StatusCreated, rec.Body)
		}
		var body struct {
			ExpiresAt string `json:"expires_at"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if want := base.Add(reservation.DefaultHoldTTL).Format(time.RFC3339); body.ExpiresAt != want {
			t.Errorf("expires_at = %q, want refreshed deadline %q", body.ExpiresAt, want)
		}
	})

	t.Run("conflict when someone else holds the slot", func(t *testing.T) {
		t.Parallel()
		clk := clock.NewFixed(base)
		store := newFakeStore(clk.Now)
		other := uint64(99)
		deadline := base.Add(5 * time.Minute)
		store.slots[41] = &model.Slot{ID: 41, Status: model.SlotStatusHeld, HeldBy: &other, HoldDeadline: &deadline}
		h := newHandler(store)

		rec, err := holdRequest(t, h, http.MethodPost, 41, float64(7))
		if err != nil {
			t.Fatalf("HoldSlot returned error: %v", err)
		}
		if rec.Code != http.StatusConflict {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusConflict)
		}
	})

	t.Run("unauthorized without a user in context", func(t *testing.T) {
		t.Parallel()
		store := newFakeStore(time.Now)
		store.slots[41] = &model.Slot{ID: 41, Status: model.SlotStatusAvailable}
		h := newHandler(store)

		rec, err := holdRequest(t, h, http.MethodPost, 41, nil)
		if err != nil {
			t.Fatalf("HoldSlot returned error: %v", err)
		}
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
		}
		if store.slots[41].Status != model.SlotStatusAvailable {
			t.Errorf("slot status changed on unauthorized request")
		}
	})
}

func TestReleaseSlot(t *testing.T) {
	t.Parallel()

	base := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	clk := clock.NewFixed(base)
	store := newFakeStore(clk.Now)
	holder := uint64(7)
	deadline := base.Add(5 * time.Minute)
	store.slots[41] = &model.Slot{ID: 41, Status: model.SlotStatusHeld, HeldBy: &holder, HoldDeadline: &deadline}
	h := &CustomerHandler{Manager: reservation.NewManager(store, clk)}

	rec, err := holdRequest(t, h, http.MethodDelete, 41, float64(7))
	if err != nil {
		t.Fatalf("ReleaseSlot returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	var body struct {
		Released bool `json:"released"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !body.Released {
		t.Error("released = false, want true")
	}

	// Releasing again is a no-op, not an error.
	rec, err = holdRequest(t, h, http.MethodDelete, 41, float64(7))
	if err != nil {
		t.Fatalf("second ReleaseSlot returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("second release status = %d, want %d", rec.Code, http.StatusOK)
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Released {
		t.Error("released = true on second release, want false")
	}
}
