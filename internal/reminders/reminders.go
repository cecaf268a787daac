// Package reminders mails the day-before reminder to every registrant of a
// crawl day.
package reminders

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gdg-garage/crawl-registration-api/internal/catalog"
	"github.com/gdg-garage/crawl-registration-api/internal/mailer"
	"github.com/gdg-garage/crawl-registration-api/internal/models"
	"github.com/gdg-garage/crawl-registration-api/internal/notifier"
	"github.com/gdg-garage/crawl-registration-api/internal/store"
	"golang.org/x/time/rate"
)

type Gate interface {
	CheckPassword(credential string) error
}

type Result struct {
	Email     string `json:"email"`
	Name      string `json:"name"`
	Location  string `json:"location"`
	MessageID string `json:"messageId"`
	Status    string `json:"status"`
}

type Failure struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Error string `json:"error"`
}

type Summary struct {
	Message            string    `json:"message"`
	EmailsSent         int       `json:"emailsSent"`
	TotalRegistrations int       `json:"totalRegistrations"`
	Results            []Result  `json:"results"`
	Errors             []Failure `json:"errors"`
}

type Sender struct {
	store     store.Store
	catalog   *catalog.Catalog
	mailer    mailer.Mailer
	gate      Gate
	eventTime string
	interval  time.Duration
	logger    *slog.Logger
}

// New paces sends to one per interval; zero disables pacing.
func New(s store.Store, c *catalog.Catalog, m mailer.Mailer, gate Gate, eventTime string, interval time.Duration, logger *slog.Logger) *Sender {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sender{
		store:     s,
		catalog:   c,
		mailer:    m,
		gate:      gate,
		eventTime: eventTime,
		interval:  interval,
		logger:    logger,
	}
}

func (s *Sender) Send(ctx context.Context, credential string, label models.DayLabel) (*Summary, error) {
	if err := s.gate.CheckPassword(credential); err != nil {
		return nil, err
	}
	schedule := s.catalog.Schedule()
	if !schedule.Known(label) {
		return nil, models.Reject(models.ReasonInvalidEventType, "Invalid event type. Must be %s", joinLabels(schedule.Labels()))
	}

	var regs []models.Registration
	if err := s.store.Find(ctx, store.Registrations, store.Filter{"crawlDate": string(label)}, &regs); err != nil {
		return nil, fmt.Errorf("load registrations: %w", err)
	}
	summary := &Summary{
		TotalRegistrations: len(regs),
		Results:            []Result{},
		Errors:             []Failure{},
	}
	if len(regs) == 0 {
		summary.Message = fmt.Sprintf("No registrations found for %s event", label)
		return summary, nil
	}

	ids := make([]models.ID, 0, len(regs))
	seen := make(map[string]bool)
	for _, r := range regs {
		if !seen[r.CrawlLocation] {
			seen[r.CrawlLocation] = true
			ids = append(ids, models.ID(r.CrawlLocation))
		}
	}
	locations, err := s.catalog.LocationsByID(ctx, ids)
	if err != nil {
		return nil, err
	}

	limit := rate.Inf
	if s.interval > 0 {
		limit = rate.Every(s.interval)
	}
	limiter := rate.NewLimiter(limit, 1)

	for _, r := range regs {
		loc, ok := locations[r.CrawlLocation]
		if !ok {
			summary.Errors = append(summary.Errors, Failure{Email: r.Email, Name: r.FullName(), Error: "Location not found"})
			continue
		}
		if err := limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("reminder pacing: %w", err)
		}

		msg, err := notifier.Reminder(r.Email, notifier.ReminderData{
			FirstName:       r.FirstName,
			LastName:        r.LastName,
			DateDisplay:     schedule.Display(label),
			ShortDate:       schedule.ShortDisplay(label),
			Time:            s.eventTime,
			LocationName:    loc.Name,
			LocationAddress: loc.Address,
		})
		if err == nil {
			var receipt mailer.Receipt
			receipt, err = s.mailer.Send(ctx, msg)
			if err == nil {
				summary.Results = append(summary.Results, Result{
					Email:     r.Email,
					Name:      r.FullName(),
					Location:  loc.Name,
					MessageID: receipt.MessageID,
					Status:    "sent",
				})
				continue
			}
		}
		s.logger.WarnContext(ctx, "reminder not sent", slog.String("to", r.Email), slog.Any("error", err))
		summary.Errors = append(summary.Errors, Failure{Email: r.Email, Name: r.FullName(), Error: err.Error()})
	}

	summary.EmailsSent = len(summary.Results)
	summary.Message = fmt.Sprintf("Reminder emails processed for %s event", label)
	return summary, nil
}

func joinLabels(labels []models.DayLabel) string {
	switch len(labels) {
	case 0:
		return ""
	case 1:
		return string(labels[0])
	}
	out := ""
	for i, l := range labels {
		switch {
		case i == 0:
		case i == len(labels)-1:
			out += " or "
		default:
			out += ", "
		}
		out += string(l)
	}
	return out
}
