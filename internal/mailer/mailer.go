// Package mailer delivers HTML email through a configurable transport.
package mailer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/gdg-garage/crawl-registration-api/internal/config"
	"github.com/google/uuid"
)

var ErrDeliveryFailed = errors.New("mail delivery failed")

type Message struct {
	To      string
	Subject string
	HTML    string
}

type Receipt struct {
	MessageID string
}

type Mailer interface {
	Send(ctx context.Context, msg Message) (Receipt, error)
}

// New builds the transport named by EMAIL_SERVICE.
func New(cfg *config.Config, logger *slog.Logger) (Mailer, error) {
	switch cfg.EmailService {
	case "smtp", "":
		return NewSMTP(SMTPConfig{
			Host:     cfg.EmailHost,
			Port:     cfg.EmailPort,
			Username: cfg.EmailUser,
			Password: cfg.EmailPassword,
			From:     cfg.Sender(),
			FromName: cfg.EmailFromName,
		}), nil
	case "sendgrid":
		if cfg.SendGridAPIKey == "" {
			return nil, fmt.Errorf("EMAIL_SERVICE=sendgrid requires SENDGRID_API_KEY")
		}
		return NewSendGrid(context.Background(), cfg.SendGridAPIURL, cfg.SendGridAPIKey, cfg.Sender(), cfg.EmailFromName), nil
	case "log":
		return NewLog(logger), nil
	default:
		return nil, fmt.Errorf("unknown EMAIL_SERVICE %q", cfg.EmailService)
	}
}

// Log only records what would have been sent.
type Log struct {
	logger *slog.Logger
}

func NewLog(logger *slog.Logger) *Log {
	if logger == nil {
		logger = slog.Default()
	}
	return &Log{logger: logger}
}

func (l *Log) Send(ctx context.Context, msg Message) (Receipt, error) {
	id := "log-" + uuid.NewString()
	l.logger.InfoContext(ctx, "email not sent, log transport",
		slog.String("to", msg.To),
		slog.String("subject", msg.Subject),
		slog.String("message_id", id),
	)
	return Receipt{MessageID: id}, nil
}
