package capacity

import (
	"context"
	"fmt"

	"github.com/gdg-garage/crawl-registration-api/internal/models"
	"github.com/gdg-garage/crawl-registration-api/internal/store"
)

// LegacyCounter counts the flat registrations collection. Every document there
// holds a seat.
type LegacyCounter struct {
	store store.Store
}

func NewLegacyCounter(s store.Store) *LegacyCounter {
	return &LegacyCounter{store: s}
}

func (c *LegacyCounter) Count(ctx context.Context, cr Criteria) (int, error) {
	f := store.Filter{}
	if cr.Day != "" {
		f["crawlDate"] = string(cr.Day)
	}
	if !cr.LocationID.IsZero() {
		f["crawlLocation"] = cr.LocationID.String()
	}
	n, err := c.store.CountDocuments(ctx, store.Registrations, f)
	if err != nil {
		return 0, fmt.Errorf("legacy registrations: %w", err)
	}
	return int(n), nil
}

// EventScopedCounter counts confirmed entries of the eventRegistrations
// collection whose event is active and owns the requested day and location.
type EventScopedCounter struct {
	store    store.Store
	schedule models.Schedule
}

func NewEventScopedCounter(s store.Store, schedule models.Schedule) *EventScopedCounter {
	return &EventScopedCounter{store: s, schedule: schedule}
}

func (c *EventScopedCounter) Count(ctx context.Context, cr Criteria) (int, error) {
	var events []models.Event
	if err := c.store.Find(ctx, store.Events, store.Filter{"isActive": true}, &events); err != nil {
		return 0, fmt.Errorf("active events: %w", err)
	}

	owning := make(map[string]bool)
	for _, e := range events {
		if cr.Day != "" && c.schedule.LabelFor(e.Date) != cr.Day {
			continue
		}
		if !cr.LocationID.IsZero() && !e.HasLocation(cr.LocationID) {
			continue
		}
		owning[e.ID.String()] = true
	}
	if len(owning) == 0 {
		return 0, nil
	}

	var regs []models.EventRegistration
	err := c.store.Find(ctx, store.EventRegistrations, store.Filter{"status": string(models.StatusConfirmed)}, &regs)
	if err != nil {
		return 0, fmt.Errorf("event registrations: %w", err)
	}

	n := 0
	for _, r := range regs {
		if !owning[r.EventID.String()] {
			continue
		}
		if !cr.LocationID.IsZero() && !r.LocationID.Equal(cr.LocationID) {
			continue
		}
		n++
	}
	return n, nil
}
