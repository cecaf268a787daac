package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gdg-garage/crawl-registration-api/internal/models"
	"github.com/gdg-garage/crawl-registration-api/internal/store"
)

var ErrSeedRefused = errors.New("refusing to reseed a populated production database")

// SeedOptions carries the event text that is configurable.
type SeedOptions struct {
	Production  bool
	Force       bool
	EventTime   string
	Description string
}

type SeedResult struct {
	Locations []models.ID `json:"locations"`
	Events    []models.ID `json:"events"`
}

type seedEvent struct {
	label     models.DayLabel
	locations []int
	where     string
}

var seedLocations = []models.Location{
	{
		Name:        "Manhattan Referral Center",
		Address:     "269 West 15th Street, Manhattan, NY 10011",
		Borough:     "Manhattan",
		Capacity:    20,
		Description: "P2G Referral Center & Adult Education Center",
		Coordinates: &models.Coordinates{Lat: 40.7589, Lng: -73.9851},
	},
	{
		Name:        "Queens Alternative School",
		Address:     "162-02 Hillside Avenue, Queens, NY 11372",
		Borough:     "Queens",
		Capacity:    20,
		Description: "P2G Referral Center & LYFE",
		Coordinates: &models.Coordinates{Lat: 40.7282, Lng: -73.7949},
	},
	{
		Name:        "Bronx D79 Center",
		Address:     "1010 Reverend James A. Polite Avenue, Bronx, NY 10462",
		Borough:     "The Bronx",
		Capacity:    20,
		Description: "P2G Referral Center & LYFE",
		Coordinates: &models.Coordinates{Lat: 40.8448, Lng: -73.8648},
	},
	{
		Name:        "Staten Island Learning Center",
		Address:     "365 Bay Street, Staten Island, NY 10301",
		Borough:     "Staten Island",
		Capacity:    20,
		Description: "P2G Referral Center & Adult Education Center",
		Coordinates: &models.Coordinates{Lat: 40.6415, Lng: -74.0776},
	},
	{
		Name:        "Brooklyn Alternative Programs",
		Address:     "67-69 Schermerhorn Street, Brooklyn, NY 11207",
		Borough:     "Brooklyn",
		Capacity:    15,
		Description: "P2G Referral Center & LYFE",
		Coordinates: &models.Coordinates{Lat: 40.6782, Lng: -73.9442},
	},
}

var seedEvents = []seedEvent{
	{label: models.DayTuesday, locations: []int{0, 1, 2}, where: "Manhattan, Queens, or The Bronx"},
	{label: models.DayThursday, locations: []int{3, 4}, where: "Staten Island or Brooklyn"},
}

// Seed replaces all locations and events with the fall crawl seed data.
// Registrations are left untouched.
func (c *Catalog) Seed(ctx context.Context, opts SeedOptions) (*SeedResult, error) {
	if opts.Production && !opts.Force {
		n, err := c.store.CountDocuments(ctx, store.Events, store.Filter{})
		if err != nil {
			return nil, fmt.Errorf("count events: %w", err)
		}
		if n > 0 {
			return nil, ErrSeedRefused
		}
	}

	if _, err := c.store.DeleteMany(ctx, store.Locations, store.Filter{}); err != nil {
		return nil, fmt.Errorf("clear locations: %w", err)
	}
	if _, err := c.store.DeleteMany(ctx, store.Events, store.Filter{}); err != nil {
		return nil, fmt.Errorf("clear events: %w", err)
	}

	docs := make([]any, 0, len(seedLocations))
	for _, l := range seedLocations {
		docs = append(docs, l)
	}
	locIDs, err := c.store.InsertMany(ctx, store.Locations, docs)
	if err != nil {
		return nil, fmt.Errorf("insert locations: %w", err)
	}

	now := time.Now()
	docs = docs[:0]
	for _, se := range seedEvents {
		date, ok := c.schedule.DateFor(se.label)
		if !ok {
			continue
		}
		ids := make([]models.ID, 0, len(se.locations))
		for _, i := range se.locations {
			ids = append(ids, locIDs[i])
		}
		docs = append(docs, models.Event{
			Title:          "District 79 Fall Crawls - " + se.label.Title(),
			Date:           date,
			Time:           opts.EventTime,
			EventType:      "site-crawl",
			LocationIDs:    ids,
			Description:    opts.Description + " in " + se.where,
			TargetAudience: "nycps-staff",
			MaxCapacity:    20,
			IsActive:       true,
			CreatedAt:      now,
			UpdatedAt:      now,
		})
	}
	eventIDs, err := c.store.InsertMany(ctx, store.Events, docs)
	if err != nil {
		return nil, fmt.Errorf("insert events: %w", err)
	}

	return &SeedResult{Locations: locIDs, Events: eventIDs}, nil
}
