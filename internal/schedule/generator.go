// Package schedule materializes bookable slots from provider
// availability templates and reclaims expired holds in the background.
package schedule

import (
	"context"
	"time"

	"github.com/avelora/slot-reservation/internal/model"
)

// TemplateSource supplies a provider's active weekly openings.
type TemplateSource interface {
	ActiveTemplates(ctx context.Context, providerID uint64) ([]model.AvailabilityTemplate, error)
}

// SlotWriter persists generated slots.  CreateBulk must be idempotent
// with respect to (provider, date, time): rows that already exist are
// skipped, never duplicated.  The MySQL implementation gets this from a
// unique key plus INSERT IGNORE.
type SlotWriter interface {
	CreateBulk(ctx context.Context, slots []model.Slot) error
}

// Generator expands availability templates into concrete slot rows over
// a forward window.  Safe to re-trigger at any time: generation is pure
// expansion plus an idempotent write.
type Generator struct {
	templates TemplateSource
	slots     SlotWriter
}

// NewGenerator constructs a Generator.
func NewGenerator(templates TemplateSource, slots SlotWriter) *Generator {
	if templates == nil || slots == nil {
		panic("nil dependency passed to NewGenerator")
	}
	return &Generator{templates: templates, slots: slots}
}

// EnsureWindow materializes slots for providerID covering days calendar
// days starting at from.  Each active template contributes one slot on
// every matching weekday in the window.  A provider with no active
// templates generates nothing, which downstream reads treat as "no
// availability".
func (g *Generator) EnsureWindow(ctx context.Context, providerID uint64, from time.Time, days int) error {
	tmpls, err := g.templates.ActiveTemplates(ctx, providerID)
	if err != nil {
		return err
	}
	if len(tmpls) == 0 || days <= 0 {
		return nil
	}

	byWeekday := make(map[int][]model.AvailabilityTemplate)
	for _, t := range tmpls {
		byWeekday[t.Weekday] = append(byWeekday[t.Weekday], t)
	}

	day := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	var out []model.Slot
	for i := 0; i < days; i++ {
		date := day.AddDate(0, 0, i)
		for _, t := range byWeekday[int(date.Weekday())] {
			out = append(out, model.Slot{
				ProviderID: providerID,
				ServiceID:  t.ServiceID,
				SlotDate:   date.Format("2006-01-02"),
				StartTime:  t.StartTime,
				Status:     model.SlotStatusAvailable,
			})
		}
	}
	return g.slots.CreateBulk(ctx, out)
}
