// Package notifier renders registration email and runs the side effects of an
// admission once it has been committed.
package notifier

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gdg-garage/crawl-registration-api/internal/mailer"
	"github.com/gdg-garage/crawl-registration-api/internal/models"
)

type Kind string

const (
	KindConfirmation Kind = "confirmation"
	KindAdminNotice  Kind = "admin_notification"
)

// Alert is the chat summary of a new registration.
type Alert struct {
	Registration   models.Registration
	DayDisplay     string
	RemainingSpots int
	DayCapacity    int
}

// Effect is one deferred action. Message is mailed; Alert, when set, is
// also posted to the chat notifier.
type Effect struct {
	Kind    Kind
	Message mailer.Message
	Alert   *Alert
}

// Notifier posts registration alerts to a chat channel.
type Notifier interface {
	NotifyRegistration(alert Alert) error
}

// Dispatcher executes effects. Each one is attempted independently and
// failures are only logged.
type Dispatcher struct {
	mailer   mailer.Mailer
	notifier Notifier
	logger   *slog.Logger
}

// NewDispatcher accepts a nil notifier when chat alerts are off.
func NewDispatcher(m mailer.Mailer, n Notifier, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{mailer: m, notifier: n, logger: logger}
}

func (d *Dispatcher) Run(ctx context.Context, effects []Effect) []error {
	var errs []error
	for _, e := range effects {
		receipt, err := d.mailer.Send(ctx, e.Message)
		if err != nil {
			d.logger.ErrorContext(ctx, "email effect failed",
				slog.String("kind", string(e.Kind)),
				slog.String("to", e.Message.To),
				slog.Any("error", err),
			)
			errs = append(errs, fmt.Errorf("%s to %s: %w", e.Kind, e.Message.To, err))
		} else {
			d.logger.InfoContext(ctx, "email sent",
				slog.String("kind", string(e.Kind)),
				slog.String("to", e.Message.To),
				slog.String("message_id", receipt.MessageID),
			)
		}

		if e.Alert == nil || d.notifier == nil {
			continue
		}
		if err := d.notifier.NotifyRegistration(*e.Alert); err != nil {
			d.logger.WarnContext(ctx, "registration alert failed", slog.Any("error", err))
			errs = append(errs, fmt.Errorf("alert: %w", err))
		}
	}
	return errs
}
