package admission

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/gdg-garage/crawl-registration-api/internal/availability"
	"github.com/gdg-garage/crawl-registration-api/internal/capacity"
	"github.com/gdg-garage/crawl-registration-api/internal/catalog"
	"github.com/gdg-garage/crawl-registration-api/internal/database/dbtest"
	"github.com/gdg-garage/crawl-registration-api/internal/locks"
	"github.com/gdg-garage/crawl-registration-api/internal/models"
	"github.com/gdg-garage/crawl-registration-api/internal/notifier"
	"github.com/gdg-garage/crawl-registration-api/internal/store"
)

func newController(t *testing.T, adminEmail string) (*Controller, store.Store) {
	t.Helper()
	s := dbtest.Open(t)
	c := catalog.New(s, models.DefaultSchedule())
	opts := Options{
		EmailDomain:      "@schools.nyc.gov",
		DayCapacity:      20,
		AdminEmail:       adminEmail,
		EventTime:        "10:00 AM - 12:00 PM",
		EventDescription: "Join us",
	}
	return New(s, c, capacity.NewLegacyCounter(s), locks.NewLocal(), opts, nil), s
}

func attempt(email string, day models.DayLabel, location models.ID) Attempt {
	return Attempt{
		Email:         email,
		FirstName:     "Ada",
		LastName:      "Lovelace",
		School:        "P.S. 1",
		CrawlDate:     day,
		CrawlLocation: location.String(),
	}
}

func wantReason(t *testing.T, err error, want models.Reason) {
	t.Helper()
	got, ok := models.ReasonOf(err)
	if !ok {
		t.Fatalf("expected rejection %s, got %v", want, err)
	}
	if got != want {
		t.Fatalf("expected rejection %s, got %s", want, got)
	}
}

func TestRegister_Success(t *testing.T) {
	ctl, s := newController(t, "admin@schools.nyc.gov")
	ctx := context.Background()
	loc := dbtest.Location(t, s, "Manhattan Referral Center", nil)
	dbtest.Registration(t, s, "other@schools.nyc.gov", models.DayTuesday, loc)

	adm, err := ctl.Register(ctx, attempt("ada@schools.nyc.gov", models.DayTuesday, loc))
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if adm.ID.IsZero() {
		t.Error("expected a registration id")
	}
	if adm.RemainingSpots != 18 {
		t.Errorf("expected 18 remaining spots, got %d", adm.RemainingSpots)
	}
	if adm.Registration.CrawlLocationName != "Manhattan Referral Center" {
		t.Errorf("expected denormalised location name, got %q", adm.Registration.CrawlLocationName)
	}
	if adm.Registration.CrawlLocationAddress != "Manhattan Referral Center Street" {
		t.Errorf("expected address from location, got %q", adm.Registration.CrawlLocationAddress)
	}

	var stored models.Registration
	if err := s.FindOne(ctx, store.Registrations, store.Filter{store.IDField: adm.ID}, &stored); err != nil {
		t.Fatalf("failed to load stored registration: %v", err)
	}
	if stored.Email != "ada@schools.nyc.gov" || stored.CreatedAt.IsZero() {
		t.Errorf("unexpected stored registration %+v", stored)
	}

	if len(adm.Effects) != 2 {
		t.Fatalf("expected confirmation and admin effects, got %d", len(adm.Effects))
	}
	if adm.Effects[0].Kind != notifier.KindConfirmation || adm.Effects[0].Message.To != "ada@schools.nyc.gov" {
		t.Errorf("unexpected confirmation effect %+v", adm.Effects[0])
	}
	if adm.Effects[1].Kind != notifier.KindAdminNotice || adm.Effects[1].Alert == nil || adm.Effects[1].Alert.RemainingSpots != 18 {
		t.Errorf("unexpected admin effect %+v", adm.Effects[1])
	}
}

func TestRegister_NoAdminEmail(t *testing.T) {
	ctl, s := newController(t, "")
	loc := dbtest.Location(t, s, "L1", nil)

	adm, err := ctl.Register(context.Background(), attempt("ada@schools.nyc.gov", models.DayTuesday, loc))
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if len(adm.Effects) != 1 || adm.Effects[0].Kind != notifier.KindConfirmation {
		t.Errorf("expected only the confirmation effect, got %+v", adm.Effects)
	}
}

func TestRegister_MissingLocationDoesNotBlock(t *testing.T) {
	ctl, _ := newController(t, "")
	a := attempt("ada@schools.nyc.gov", models.DayThursday, "no-such-location")
	a.CrawlLocationAddress = "1 Given Street"

	adm, err := ctl.Register(context.Background(), a)
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if adm.Registration.CrawlLocationName != "" {
		t.Errorf("expected empty location name, got %q", adm.Registration.CrawlLocationName)
	}
	if adm.Registration.CrawlLocationAddress != "1 Given Street" {
		t.Errorf("expected submitted address to be kept, got %q", adm.Registration.CrawlLocationAddress)
	}
}

func TestRegister_InvalidDomainWins(t *testing.T) {
	ctl, _ := newController(t, "")

	tests := []Attempt{
		{Email: "ada@gmail.com", FirstName: "Ada", LastName: "L", School: "S", CrawlDate: models.DayTuesday, CrawlLocation: "x"},
		{Email: "ada@gmail.com"},
		{},
		{Email: "ada@schools.nyc.gov.evil.com", FirstName: "Ada"},
	}
	for i, a := range tests {
		t.Run(fmt.Sprint(i), func(t *testing.T) {
			_, err := ctl.Register(context.Background(), a)
			wantReason(t, err, models.ReasonInvalidDomain)
		})
	}
}

func TestRegister_MissingFields(t *testing.T) {
	ctl, _ := newController(t, "")
	base := attempt("ada@schools.nyc.gov", models.DayTuesday, "loc")

	clear := []func(*Attempt){
		func(a *Attempt) { a.FirstName = "" },
		func(a *Attempt) { a.LastName = "  " },
		func(a *Attempt) { a.School = "" },
		func(a *Attempt) { a.CrawlDate = "" },
		func(a *Attempt) { a.CrawlLocation = "" },
	}
	for i, f := range clear {
		t.Run(fmt.Sprint(i), func(t *testing.T) {
			a := base
			f(&a)
			_, err := ctl.Register(context.Background(), a)
			wantReason(t, err, models.ReasonMissingFields)
		})
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	ctl, s := newController(t, "")
	ctx := context.Background()
	loc := dbtest.Location(t, s, "L1", nil)

	if _, err := ctl.Register(ctx, attempt("ada@schools.nyc.gov", models.DayTuesday, loc)); err != nil {
		t.Fatalf("first Register returned error: %v", err)
	}
	_, err := ctl.Register(ctx, attempt("ada@schools.nyc.gov", models.DayThursday, loc))
	wantReason(t, err, models.ReasonDuplicateEmail)

	// Matching is case-sensitive.
	if _, err := ctl.Register(ctx, attempt("Ada@schools.nyc.gov", models.DayTuesday, loc)); err != nil {
		t.Errorf("expected differently cased email to be accepted, got %v", err)
	}
}

func TestRegister_DayCapacity(t *testing.T) {
	ctl, s := newController(t, "")
	ctx := context.Background()
	l1 := dbtest.Location(t, s, "L1", nil)
	l2 := dbtest.Location(t, s, "L2", nil)
	for i := 0; i < 20; i++ {
		dbtest.Registration(t, s, fmt.Sprintf("t%d@schools.nyc.gov", i), models.DayTuesday, l1)
	}

	// Another location on the same day is still full.
	_, err := ctl.Register(ctx, attempt("new@schools.nyc.gov", models.DayTuesday, l2))
	wantReason(t, err, models.ReasonCapacityExceeded)

	n, _ := s.CountDocuments(ctx, store.Registrations, store.Filter{})
	if n != 20 {
		t.Errorf("expected no insert on rejection, got %d documents", n)
	}

	adm, err := ctl.Register(ctx, attempt("new@schools.nyc.gov", models.DayThursday, l2))
	if err != nil {
		t.Fatalf("expected thursday registration to succeed, got %v", err)
	}
	if adm.RemainingSpots != 19 {
		t.Errorf("expected 19 remaining spots, got %d", adm.RemainingSpots)
	}
}

func TestRegister_LastSeat(t *testing.T) {
	ctl, s := newController(t, "")
	loc := dbtest.Location(t, s, "L1", nil)
	for i := 0; i < 19; i++ {
		dbtest.Registration(t, s, fmt.Sprintf("t%d@schools.nyc.gov", i), models.DayTuesday, loc)
	}

	adm, err := ctl.Register(context.Background(), attempt("last@schools.nyc.gov", models.DayTuesday, loc))
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if adm.RemainingSpots != 0 {
		t.Errorf("expected 0 remaining spots, got %d", adm.RemainingSpots)
	}
}

func TestRegister_ConcurrentNeverOverbooks(t *testing.T) {
	ctl, s := newController(t, "")
	loc := dbtest.Location(t, s, "L1", nil)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		accepted int
	)
	for i := 0; i < 30; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := ctl.Register(context.Background(), attempt(fmt.Sprintf("p%d@schools.nyc.gov", i), models.DayTuesday, loc))
			if err == nil {
				mu.Lock()
				accepted++
				mu.Unlock()
				return
			}
			if reason, _ := models.ReasonOf(err); reason != models.ReasonCapacityExceeded {
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	if accepted != 20 {
		t.Errorf("expected exactly 20 admissions, got %d", accepted)
	}
}

type brokenStore struct{ store.Store }

func (brokenStore) FindOne(context.Context, string, store.Filter, any) error {
	return fmt.Errorf("find: %w", store.ErrUnavailable)
}

func TestRegister_StoreUnavailable(t *testing.T) {
	s := brokenStore{Store: dbtest.Open(t)}
	ctl := New(s, catalog.New(s, models.DefaultSchedule()), capacity.NewLegacyCounter(s), locks.Noop{}, Options{EmailDomain: "@schools.nyc.gov", DayCapacity: 20}, nil)

	_, err := ctl.Register(context.Background(), attempt("ada@schools.nyc.gov", models.DayTuesday, "loc"))
	if !errors.Is(err, store.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if _, ok := models.ReasonOf(err); ok {
		t.Error("store failure must not be reported as a rejection")
	}
}

// slowStore widens the window between the duplicate lookup and the insert.
type slowStore struct{ store.Store }

func (s slowStore) FindOne(ctx context.Context, collection string, filter store.Filter, out any) error {
	time.Sleep(50 * time.Millisecond)
	return s.Store.FindOne(ctx, collection, filter, out)
}

func TestRegister_SameEmailOnDifferentDaysConcurrently(t *testing.T) {
	base := dbtest.Open(t)
	s := slowStore{Store: base}
	ctl := New(s, catalog.New(s, models.DefaultSchedule()), capacity.NewLegacyCounter(s), locks.NewLocal(), Options{EmailDomain: "@schools.nyc.gov", DayCapacity: 20}, nil)
	loc := dbtest.Location(t, base, "L1", nil)

	days := []models.DayLabel{models.DayTuesday, models.DayThursday}
	errs := make([]error, len(days))
	var wg sync.WaitGroup
	for i, day := range days {
		wg.Add(1)
		go func(i int, day models.DayLabel) {
			defer wg.Done()
			_, errs[i] = ctl.Register(context.Background(), attempt("same@schools.nyc.gov", day, loc))
		}(i, day)
	}
	wg.Wait()

	accepted := 0
	for _, err := range errs {
		if err == nil {
			accepted++
			continue
		}
		wantReason(t, err, models.ReasonDuplicateEmail)
	}
	if accepted != 1 {
		t.Errorf("expected exactly one admission, got %d", accepted)
	}

	n, err := base.CountDocuments(context.Background(), store.Registrations, store.Filter{"email": "same@schools.nyc.gov"})
	if err != nil {
		t.Fatalf("CountDocuments returned error: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 stored registration, got %d", n)
	}
}

type recordingLocker struct {
	mu   sync.Mutex
	keys map[string]bool
}

func (l *recordingLocker) Lock(_ context.Context, key string) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.keys[key] = true
	return func() {}, nil
}

func TestRegister_LockKeyIgnoresClientInput(t *testing.T) {
	s := dbtest.Open(t)
	locker := &recordingLocker{keys: make(map[string]bool)}
	ctl := New(s, catalog.New(s, models.DefaultSchedule()), capacity.NewLegacyCounter(s), locker, Options{EmailDomain: "@schools.nyc.gov", DayCapacity: 20}, nil)
	loc := dbtest.Location(t, s, "L1", nil)

	for i, day := range []models.DayLabel{models.DayTuesday, models.DayThursday, "saturday", "x-1", "x-2"} {
		if _, err := ctl.Register(context.Background(), attempt(fmt.Sprintf("p%d@schools.nyc.gov", i), day, loc)); err != nil {
			t.Fatalf("%s: Register returned error: %v", day, err)
		}
	}
	if len(locker.keys) != 1 {
		t.Errorf("expected a single lock key, got %v", locker.keys)
	}
}

// Location capacity is informational: a full location still admits while the
// day has room.
func TestRegister_FullLocationStillAdmits(t *testing.T) {
	ctl, s := newController(t, "")
	ctx := context.Background()
	x := dbtest.Location(t, s, "X", dbtest.IntPtr(1))
	y := dbtest.Location(t, s, "Y", dbtest.IntPtr(1))
	dbtest.Event(t, s, "2024-10-28", true, x, y)

	schedule := models.DefaultSchedule()
	legacy := capacity.NewLegacyCounter(s)
	agg := availability.New(catalog.New(s, schedule), legacy, capacity.NewLedger(legacy, capacity.NewEventScopedCounter(s, schedule)), 20, 20)

	if _, err := ctl.Register(ctx, attempt("first@schools.nyc.gov", models.DayTuesday, x)); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	locations, err := agg.Locations(ctx)
	if err != nil {
		t.Fatalf("Locations returned error: %v", err)
	}
	var got *availability.LocationAvailability
	for i := range locations {
		if locations[i].LocationID == x {
			got = &locations[i]
		}
	}
	if got == nil {
		t.Fatal("expected X in availability")
	}
	if got.AvailableSpots != 0 || got.IsAvailable {
		t.Errorf("expected X to show full, got %+v", *got)
	}

	adm, err := ctl.Register(ctx, attempt("second@schools.nyc.gov", models.DayTuesday, x))
	if err != nil {
		t.Fatalf("expected second registration to full location to succeed, got %v", err)
	}
	if adm.RemainingSpots != 18 {
		t.Errorf("expected 18 remaining day spots, got %d", adm.RemainingSpots)
	}
}
