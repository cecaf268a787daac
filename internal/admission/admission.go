// Package admission decides whether a registration attempt is accepted and
// records it.
package admission

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gdg-garage/crawl-registration-api/internal/capacity"
	"github.com/gdg-garage/crawl-registration-api/internal/catalog"
	"github.com/gdg-garage/crawl-registration-api/internal/locks"
	"github.com/gdg-garage/crawl-registration-api/internal/models"
	"github.com/gdg-garage/crawl-registration-api/internal/notifier"
	"github.com/gdg-garage/crawl-registration-api/internal/store"
)

const SuccessMessage = "Registration successful! Check your email for confirmation."

// lockKey guards every admission. Email uniqueness spans all days, so the
// window cannot be narrowed to one day label.
const lockKey = "registrations"

type Attempt struct {
	Email                string
	FirstName            string
	LastName             string
	School               string
	Phone                string
	CrawlDate            models.DayLabel
	CrawlLocation        string
	CrawlLocationAddress string
}

type Admission struct {
	ID             models.ID
	RemainingSpots int
	Registration   models.Registration
	Effects        []notifier.Effect
}

type Options struct {
	EmailDomain      string
	DayCapacity      int
	AdminEmail       string
	EventTime        string
	EventDescription string
}

type Controller struct {
	store   store.Store
	catalog *catalog.Catalog
	days    capacity.Counter
	locker  locks.Locker
	opts    Options
	logger  *slog.Logger
	now     func() time.Time
}

// New builds a controller. days counts the seats taken per day label and is
// the only capacity gate.
func New(s store.Store, c *catalog.Catalog, days capacity.Counter, locker locks.Locker, opts Options, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		store:   s,
		catalog: c,
		days:    days,
		locker:  locker,
		opts:    opts,
		logger:  logger,
		now:     time.Now,
	}
}

// Register runs the admission pipeline. Rejections are *models.Rejection;
// anything else is a store failure.
func (c *Controller) Register(ctx context.Context, a Attempt) (*Admission, error) {
	if a.Email == "" || !strings.HasSuffix(a.Email, c.opts.EmailDomain) {
		return nil, models.Reject(models.ReasonInvalidDomain, "Only %s email addresses are allowed", c.opts.EmailDomain)
	}
	if blank(a.FirstName, a.LastName, a.School, string(a.CrawlDate), a.CrawlLocation) {
		return nil, models.Reject(models.ReasonMissingFields, "All fields are required")
	}

	release, err := c.locker.Lock(ctx, lockKey)
	if err != nil {
		return nil, fmt.Errorf("admission lock: %w", err)
	}
	reg, count, err := c.admit(ctx, a)
	release()
	if err != nil {
		return nil, err
	}

	after, err := c.days.Count(ctx, capacity.Criteria{Day: a.CrawlDate})
	if err != nil {
		c.logger.WarnContext(ctx, "recount after registration failed", slog.Any("error", err))
		after = count + 1
	}
	remaining := c.opts.DayCapacity - after

	return &Admission{
		ID:             reg.ID,
		RemainingSpots: remaining,
		Registration:   reg,
		Effects:        c.effects(reg, remaining),
	}, nil
}

// admit is the check-then-insert window and must run under the admission lock.
func (c *Controller) admit(ctx context.Context, a Attempt) (models.Registration, int, error) {
	var existing models.Registration
	err := c.store.FindOne(ctx, store.Registrations, store.Filter{"email": a.Email}, &existing)
	switch {
	case err == nil:
		return models.Registration{}, 0, models.Reject(models.ReasonDuplicateEmail, "Email is already registered")
	case !errors.Is(err, store.ErrNotFound):
		return models.Registration{}, 0, fmt.Errorf("duplicate check: %w", err)
	}

	count, err := c.days.Count(ctx, capacity.Criteria{Day: a.CrawlDate})
	if err != nil {
		return models.Registration{}, 0, fmt.Errorf("day capacity: %w", err)
	}
	if count >= c.opts.DayCapacity {
		return models.Registration{}, 0, models.Reject(models.ReasonCapacityExceeded, "No spots available for this date")
	}

	reg := models.Registration{
		Email:                a.Email,
		FirstName:            a.FirstName,
		LastName:             a.LastName,
		School:               a.School,
		Phone:                a.Phone,
		CrawlDate:            a.CrawlDate,
		CrawlLocation:        a.CrawlLocation,
		CrawlLocationAddress: a.CrawlLocationAddress,
		CreatedAt:            c.now(),
	}
	loc, err := c.catalog.FindLocation(ctx, models.ID(a.CrawlLocation))
	if err != nil {
		c.logger.WarnContext(ctx, "location lookup failed", slog.String("location", a.CrawlLocation), slog.Any("error", err))
	}
	if loc != nil {
		reg.CrawlLocationName = loc.Name
		if reg.CrawlLocationAddress == "" {
			reg.CrawlLocationAddress = loc.Address
		}
	}

	id, err := c.store.InsertOne(ctx, store.Registrations, reg)
	if err != nil {
		return models.Registration{}, 0, fmt.Errorf("insert registration: %w", err)
	}
	reg.ID = id
	return reg, count, nil
}

func (c *Controller) effects(reg models.Registration, remaining int) []notifier.Effect {
	schedule := c.catalog.Schedule()
	locationName := reg.CrawlLocationName
	if locationName == "" {
		locationName = reg.CrawlLocation
	}

	var effects []notifier.Effect
	msg, err := notifier.Confirmation(reg.Email, notifier.ConfirmationData{
		FirstName:       reg.FirstName,
		LastName:        reg.LastName,
		DateDisplay:     schedule.Display(reg.CrawlDate),
		Time:            c.opts.EventTime,
		Description:     c.opts.EventDescription,
		LocationName:    locationName,
		LocationAddress: reg.CrawlLocationAddress,
	})
	if err != nil {
		c.logger.Error("render confirmation", slog.Any("error", err))
	} else {
		effects = append(effects, notifier.Effect{Kind: notifier.KindConfirmation, Message: msg})
	}

	if c.opts.AdminEmail == "" {
		return effects
	}
	msg, err = notifier.AdminNotification(c.opts.AdminEmail, notifier.AdminData{
		FirstName:      reg.FirstName,
		LastName:       reg.LastName,
		Email:          reg.Email,
		School:         reg.School,
		DateDisplay:    schedule.Display(reg.CrawlDate),
		LocationName:   locationName,
		RemainingSpots: remaining,
		DayCapacity:    c.opts.DayCapacity,
		RegisteredAt:   reg.CreatedAt,
	})
	if err != nil {
		c.logger.Error("render admin notification", slog.Any("error", err))
		return effects
	}
	return append(effects, notifier.Effect{
		Kind:    notifier.KindAdminNotice,
		Message: msg,
		Alert: &notifier.Alert{
			Registration:   reg,
			DayDisplay:     schedule.Display(reg.CrawlDate),
			RemainingSpots: remaining,
			DayCapacity:    c.opts.DayCapacity,
		},
	})
}

func blank(fields ...string) bool {
	for _, f := range fields {
		if strings.TrimSpace(f) == "" {
			return true
		}
	}
	return false
}
