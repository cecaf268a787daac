// Package reporting builds the admin registration report.
package reporting

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/gdg-garage/crawl-registration-api/internal/availability"
	"github.com/gdg-garage/crawl-registration-api/internal/capacity"
	"github.com/gdg-garage/crawl-registration-api/internal/catalog"
	"github.com/gdg-garage/crawl-registration-api/internal/models"
	"github.com/gdg-garage/crawl-registration-api/internal/store"
)

// Gate checks the admin credential.
type Gate interface {
	CheckPassword(credential string) error
}

type Registrant struct {
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone,omitempty"`
	School       string    `json:"school"`
	RegisteredAt time.Time `json:"registeredAt"`
}

type LocationStats struct {
	LocationID        models.ID       `json:"id"`
	Name              string          `json:"name"`
	Address           string          `json:"address"`
	EventDate         models.DayLabel `json:"eventDate"`
	EventDateDisplay  string          `json:"eventDateDisplay"`
	RegistrationCount int             `json:"registrationCount"`
	MaxCapacity       int             `json:"maxCapacity"`
	AvailableSpots    int             `json:"availableSpots"`
	Registrations     []Registrant    `json:"registrations"`
}

type Report struct {
	TotalRegistrations int             `json:"totalRegistrations"`
	LocationStats      []LocationStats `json:"locationStats"`
}

type Reporter struct {
	store           store.Store
	catalog         *catalog.Catalog
	gate            Gate
	defaultCapacity int
}

func New(s store.Store, c *catalog.Catalog, gate Gate, defaultCapacity int) *Reporter {
	return &Reporter{store: s, catalog: c, gate: gate, defaultCapacity: defaultCapacity}
}

// Build checks the credential before reading anything.
func (r *Reporter) Build(ctx context.Context, credential string) (*Report, error) {
	if err := r.gate.CheckPassword(credential); err != nil {
		return nil, err
	}
	return r.Collect(ctx)
}

// Collect builds the report for a caller that is already authorised.
func (r *Reporter) Collect(ctx context.Context) (*Report, error) {
	schedule := r.catalog.Schedule()

	days, err := r.catalog.LocationDays(ctx)
	if err != nil {
		return nil, err
	}
	locations, err := r.catalog.Locations(ctx)
	if err != nil {
		return nil, err
	}
	var regs []models.Registration
	if err := r.store.Find(ctx, store.Registrations, store.Filter{}, &regs); err != nil {
		return nil, fmt.Errorf("load registrations: %w", err)
	}
	total, err := r.store.CountDocuments(ctx, store.Registrations, store.Filter{})
	if err != nil {
		return nil, fmt.Errorf("count registrations: %w", err)
	}

	byLocation := make(map[string][]models.Registration)
	for _, reg := range regs {
		byLocation[reg.CrawlLocation] = append(byLocation[reg.CrawlLocation], reg)
	}

	stats := make([]LocationStats, 0, len(locations))
	for _, l := range locations {
		held := byLocation[l.ID.String()]
		sort.SliceStable(held, func(i, j int) bool {
			if !held[i].CreatedAt.Equal(held[j].CreatedAt) {
				return held[i].CreatedAt.Before(held[j].CreatedAt)
			}
			return held[i].Email < held[j].Email
		})

		registrants := make([]Registrant, 0, len(held))
		for _, reg := range held {
			registrants = append(registrants, Registrant{
				FirstName:    reg.FirstName,
				LastName:     reg.LastName,
				Email:        reg.Email,
				Phone:        reg.Phone,
				School:       reg.School,
				RegisteredAt: reg.CreatedAt,
			})
		}

		label := catalog.DayOf(days, l.ID)
		snap := capacity.NewSnapshot(l.EffectiveCapacity(r.defaultCapacity), len(held))
		stats = append(stats, LocationStats{
			LocationID:        l.ID,
			Name:              l.Name,
			Address:           l.Address,
			EventDate:         label,
			EventDateDisplay:  schedule.ShortDisplay(label),
			RegistrationCount: snap.Registered,
			MaxCapacity:       snap.Capacity,
			AvailableSpots:    snap.Available,
			Registrations:     registrants,
		})
	}

	availability.SortByDay(schedule, stats, func(s LocationStats) availability.Key {
		return availability.Key{Day: s.EventDate, Name: s.Name, ID: s.LocationID}
	})

	return &Report{TotalRegistrations: int(total), LocationStats: stats}, nil
}

// ForDay narrows the report to locations visited on label.
func (r *Report) ForDay(label models.DayLabel) []LocationStats {
	var out []LocationStats
	for _, s := range r.LocationStats {
		if s.EventDate == label {
			out = append(out, s)
		}
	}
	return out
}
