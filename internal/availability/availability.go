// Package availability computes the public capacity views.
package availability

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/gdg-garage/crawl-registration-api/internal/capacity"
	"github.com/gdg-garage/crawl-registration-api/internal/catalog"
	"github.com/gdg-garage/crawl-registration-api/internal/models"
)

type LocationAvailability struct {
	LocationID     models.ID       `json:"locationId"`
	Name           string          `json:"name"`
	Address        string          `json:"address"`
	EventDate      models.DayLabel `json:"eventDate"`
	AvailableSpots int             `json:"availableSpots"`
	TotalSpots     int             `json:"totalSpots"`
	IsAvailable    bool            `json:"isAvailable"`
}

type DayAvailability struct {
	Total      int `json:"total"`
	Registered int `json:"registered"`
	Available  int `json:"available"`
}

// Aggregator reads the catalog and the ledgers; it never writes.
//
// Per-location numbers come from locations, which counts legacy registrations
// only. Day numbers come from days, which sums both registration shapes.
type Aggregator struct {
	catalog         *catalog.Catalog
	locations       capacity.Counter
	days            capacity.Counter
	defaultCapacity int
	dayCapacity     int
}

func New(c *catalog.Catalog, locations, days capacity.Counter, defaultCapacity, dayCapacity int) *Aggregator {
	return &Aggregator{
		catalog:         c,
		locations:       locations,
		days:            days,
		defaultCapacity: defaultCapacity,
		dayCapacity:     dayCapacity,
	}
}

func (a *Aggregator) Locations(ctx context.Context) ([]LocationAvailability, error) {
	days, err := a.catalog.LocationDays(ctx)
	if err != nil {
		return nil, err
	}
	locations, err := a.catalog.Locations(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]LocationAvailability, 0, len(locations))
	for _, l := range locations {
		registered, err := a.locations.Count(ctx, capacity.Criteria{LocationID: l.ID})
		if err != nil {
			return nil, fmt.Errorf("location %s: %w", l.ID, err)
		}
		snap := capacity.NewSnapshot(l.EffectiveCapacity(a.defaultCapacity), registered)
		out = append(out, LocationAvailability{
			LocationID:     l.ID,
			Name:           l.Name,
			Address:        l.Address,
			EventDate:      catalog.DayOf(days, l.ID),
			AvailableSpots: snap.Available,
			TotalSpots:     snap.Capacity,
			IsAvailable:    snap.IsAvailable(),
		})
	}

	SortByDay(a.catalog.Schedule(), out, func(la LocationAvailability) Key {
		return Key{Day: la.EventDate, Name: la.Name, ID: la.LocationID}
	})
	return out, nil
}

// Days reports capacity for every scheduled day label.
func (a *Aggregator) Days(ctx context.Context) (map[models.DayLabel]DayAvailability, error) {
	out := make(map[models.DayLabel]DayAvailability)
	for _, label := range a.catalog.Schedule().Labels() {
		registered, err := a.days.Count(ctx, capacity.Criteria{Day: label})
		if err != nil {
			return nil, fmt.Errorf("day %s: %w", label, err)
		}
		snap := capacity.NewSnapshot(a.dayCapacity, registered)
		out[label] = DayAvailability{
			Total:      snap.Capacity,
			Registered: snap.Registered,
			Available:  snap.Available,
		}
	}
	return out, nil
}

// Key is what location listings are ordered by.
type Key struct {
	Day  models.DayLabel
	Name string
	ID   models.ID
}

// SortByDay orders items by schedule position of their day, then
// case-insensitive name, then id. Unknown days go last.
func SortByDay[T any](schedule models.Schedule, items []T, key func(T) Key) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := key(items[i]), key(items[j])
		if ra, rb := schedule.Rank(a.Day), schedule.Rank(b.Day); ra != rb {
			return ra < rb
		}
		if na, nb := strings.ToLower(a.Name), strings.ToLower(b.Name); na != nb {
			return na < nb
		}
		return a.ID.String() < b.ID.String()
	})
}
