// Package dbtest provides an in-memory document store and seeding helpers for
// tests.
package dbtest

import (
	"context"
	"testing"
	"time"

	"github.com/gdg-garage/crawl-registration-api/internal/database"
	"github.com/gdg-garage/crawl-registration-api/internal/models"
	"github.com/gdg-garage/crawl-registration-api/internal/store"
)

func Open(t testing.TB) *database.SQLStore {
	t.Helper()
	s, err := database.OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	t.Cleanup(func() { s.Close(context.Background()) })
	return s
}

func Insert(t testing.TB, s store.Store, collection string, doc any) models.ID {
	t.Helper()
	id, err := s.InsertOne(context.Background(), collection, doc)
	if err != nil {
		t.Fatalf("failed to insert into %s: %v", collection, err)
	}
	return id
}

func Location(t testing.TB, s store.Store, name string, maxCapacity *int) models.ID {
	t.Helper()
	return Insert(t, s, store.Locations, models.Location{
		Name:        name,
		Address:     name + " Street",
		Borough:     "Manhattan",
		Capacity:    20,
		MaxCapacity: maxCapacity,
	})
}

func Event(t testing.TB, s store.Store, date string, active bool, locations ...models.ID) models.ID {
	t.Helper()
	return Insert(t, s, store.Events, models.Event{
		Title:       "Crawl " + date,
		Date:        date,
		Time:        "10:00 AM - 12:00 PM",
		EventType:   "site-crawl",
		LocationIDs: locations,
		MaxCapacity: 20,
		IsActive:    active,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	})
}

func Registration(t testing.TB, s store.Store, email string, day models.DayLabel, location models.ID) models.ID {
	t.Helper()
	return Insert(t, s, store.Registrations, models.Registration{
		Email:         email,
		FirstName:     "Test",
		LastName:      email,
		School:        "P.S. 1",
		CrawlDate:     day,
		CrawlLocation: location.String(),
		CreatedAt:     time.Now(),
	})
}

func EventRegistration(t testing.TB, s store.Store, event, location models.ID, status models.RegistrationStatus) models.ID {
	t.Helper()
	return Insert(t, s, store.EventRegistrations, models.EventRegistration{
		Email:            "scoped-" + time.Now().Format(time.RFC3339Nano) + "@schools.nyc.gov",
		EventID:          event,
		LocationID:       location,
		RegistrationDate: time.Now(),
		Status:           status,
	})
}

func IntPtr(n int) *int { return &n }
