// Package catalog reads and maintains the seed data: crawl events and the
// locations they visit.
package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/gdg-garage/crawl-registration-api/internal/models"
	"github.com/gdg-garage/crawl-registration-api/internal/store"
)

type Catalog struct {
	store    store.Store
	schedule models.Schedule
}

func New(s store.Store, schedule models.Schedule) *Catalog {
	return &Catalog{store: s, schedule: schedule}
}

func (c *Catalog) Schedule() models.Schedule { return c.schedule }

func (c *Catalog) ActiveEvents(ctx context.Context) ([]models.Event, error) {
	var events []models.Event
	if err := c.store.Find(ctx, store.Events, store.Filter{"isActive": true}, &events); err != nil {
		return nil, fmt.Errorf("load active events: %w", err)
	}
	return events, nil
}

func (c *Catalog) Locations(ctx context.Context) ([]models.Location, error) {
	var locations []models.Location
	if err := c.store.Find(ctx, store.Locations, store.Filter{}, &locations); err != nil {
		return nil, fmt.Errorf("load locations: %w", err)
	}
	return locations, nil
}

// FindLocation returns nil without error when the location does not exist.
func (c *Catalog) FindLocation(ctx context.Context, id models.ID) (*models.Location, error) {
	if id.IsZero() {
		return nil, nil
	}
	var loc models.Location
	err := c.store.FindOne(ctx, store.Locations, store.Filter{store.IDField: id}, &loc)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find location %s: %w", id, err)
	}
	return &loc, nil
}

// LocationsByID loads the given locations keyed by canonical id.
func (c *Catalog) LocationsByID(ctx context.Context, ids []models.ID) (map[string]models.Location, error) {
	out := make(map[string]models.Location, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var locations []models.Location
	if err := c.store.Find(ctx, store.Locations, store.Filter{store.IDField: store.InOf(ids)}, &locations); err != nil {
		return nil, fmt.Errorf("load locations: %w", err)
	}
	for _, l := range locations {
		out[l.ID.String()] = l
	}
	return out, nil
}

// LocationDays maps each location id visited by an active event to that
// event's day label. Events off the schedule map to DayUnknown.
func (c *Catalog) LocationDays(ctx context.Context) (map[string]models.DayLabel, error) {
	events, err := c.ActiveEvents(ctx)
	if err != nil {
		return nil, err
	}
	days := make(map[string]models.DayLabel)
	for _, e := range events {
		label := c.schedule.LabelFor(e.Date)
		for _, id := range e.LocationIDs {
			days[id.String()] = label
		}
	}
	return days, nil
}

// DayOf looks a location up in a LocationDays map.
func DayOf(days map[string]models.DayLabel, id models.ID) models.DayLabel {
	if d, ok := days[id.String()]; ok {
		return d
	}
	return models.DayUnknown
}

type EventWithLocations struct {
	models.Event
	Locations []models.Location `json:"locations"`
}

func (c *Catalog) EventsWithLocations(ctx context.Context) ([]EventWithLocations, error) {
	events, err := c.ActiveEvents(ctx)
	if err != nil {
		return nil, err
	}
	var ids []models.ID
	for _, e := range events {
		ids = append(ids, e.LocationIDs...)
	}
	byID, err := c.LocationsByID(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]EventWithLocations, 0, len(events))
	for _, e := range events {
		ev := EventWithLocations{Event: e, Locations: []models.Location{}}
		for _, id := range e.LocationIDs {
			if l, ok := byID[id.String()]; ok {
				ev.Locations = append(ev.Locations, l)
			}
		}
		out = append(out, ev)
	}
	return out, nil
}

// LocationsByDay groups locations by the label of the event visiting them.
// Every location also appears under "all".
func (c *Catalog) LocationsByDay(ctx context.Context) (map[string][]models.Location, error) {
	days, err := c.LocationDays(ctx)
	if err != nil {
		return nil, err
	}
	locations, err := c.Locations(ctx)
	if err != nil {
		return nil, err
	}

	out := map[string][]models.Location{"all": locations}
	for _, label := range c.schedule.Labels() {
		out[string(label)] = []models.Location{}
	}
	for _, l := range locations {
		label := DayOf(days, l.ID)
		if label == models.DayUnknown {
			continue
		}
		out[string(label)] = append(out[string(label)], l)
	}
	return out, nil
}

// SetMaxCapacity overrides the capacity of the named location and returns the
// number of registrations it currently holds.
func (c *Catalog) SetMaxCapacity(ctx context.Context, name string, n int) (int, error) {
	if n < 0 {
		return 0, fmt.Errorf("max capacity must not be negative")
	}
	var loc models.Location
	err := c.store.FindOne(ctx, store.Locations, store.Filter{"name": name}, &loc)
	if errors.Is(err, store.ErrNotFound) {
		return 0, fmt.Errorf("location %q: %w", name, store.ErrNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("find location %q: %w", name, err)
	}
	if _, err := c.store.UpdateOne(ctx, store.Locations, store.Filter{store.IDField: loc.ID}, map[string]any{"maxCapacity": n}); err != nil {
		return 0, fmt.Errorf("update location %q: %w", name, err)
	}
	count, err := c.store.CountDocuments(ctx, store.Registrations, store.Filter{"crawlLocation": loc.ID.String()})
	if err != nil {
		return 0, fmt.Errorf("count registrations for %q: %w", name, err)
	}
	return int(count), nil
}
