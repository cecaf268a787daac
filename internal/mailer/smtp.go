package mailer

import (
	"context"
	"fmt"

	"github.com/wneessen/go-mail"
)

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
}

type SMTP struct {
	cfg SMTPConfig
}

func NewSMTP(cfg SMTPConfig) *SMTP {
	return &SMTP{cfg: cfg}
}

func (s *SMTP) Send(ctx context.Context, msg Message) (Receipt, error) {
	m := mail.NewMsg()
	if err := m.FromFormat(s.cfg.FromName, s.cfg.From); err != nil {
		return Receipt{}, fmt.Errorf("%w: from: %w", ErrDeliveryFailed, err)
	}
	if err := m.To(msg.To); err != nil {
		return Receipt{}, fmt.Errorf("%w: to %s: %w", ErrDeliveryFailed, msg.To, err)
	}
	m.Subject(msg.Subject)
	m.SetBodyString(mail.TypeTextHTML, msg.HTML)
	m.SetMessageID()

	opts := []mail.Option{
		mail.WithPort(s.cfg.Port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if s.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(s.cfg.Username),
			mail.WithPassword(s.cfg.Password),
		)
	}
	client, err := mail.NewClient(s.cfg.Host, opts...)
	if err != nil {
		return Receipt{}, fmt.Errorf("%w: smtp client: %w", ErrDeliveryFailed, err)
	}
	if err := client.DialAndSendWithContext(ctx, m); err != nil {
		return Receipt{}, fmt.Errorf("%w: send to %s: %w", ErrDeliveryFailed, msg.To, err)
	}

	var id string
	if ids := m.GetGenHeader(mail.HeaderMessageID); len(ids) > 0 {
		id = ids[0]
	}
	return Receipt{MessageID: id}, nil
}
