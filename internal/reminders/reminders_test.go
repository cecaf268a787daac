package reminders

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/gdg-garage/crawl-registration-api/internal/catalog"
	"github.com/gdg-garage/crawl-registration-api/internal/database/dbtest"
	"github.com/gdg-garage/crawl-registration-api/internal/mailer"
	"github.com/gdg-garage/crawl-registration-api/internal/models"
	"github.com/gdg-garage/crawl-registration-api/internal/store"
)

var errDenied = errors.New("denied")

type passwordGate string

func (g passwordGate) CheckPassword(credential string) error {
	if credential == "" || credential != string(g) {
		return errDenied
	}
	return nil
}

type recordingMailer struct {
	sent []mailer.Message
}

func (m *recordingMailer) Send(_ context.Context, msg mailer.Message) (mailer.Receipt, error) {
	m.sent = append(m.sent, msg)
	return mailer.Receipt{MessageID: fmt.Sprintf("m%d", len(m.sent))}, nil
}

type flakyMailer struct {
	recordingMailer
	fail string
}

func (m *flakyMailer) Send(ctx context.Context, msg mailer.Message) (mailer.Receipt, error) {
	if msg.To == m.fail {
		return mailer.Receipt{}, fmt.Errorf("%w: mailbox full", mailer.ErrDeliveryFailed)
	}
	return m.recordingMailer.Send(ctx, msg)
}

func newSender(s store.Store, m mailer.Mailer) *Sender {
	return New(s, catalog.New(s, models.DefaultSchedule()), m, passwordGate("district79admin"), "10:00 AM - 12:00 PM", 0, nil)
}

func TestSend_Unauthorized(t *testing.T) {
	_, err := newSender(dbtest.Open(t), &recordingMailer{}).Send(context.Background(), "nope", models.DayTuesday)
	if !errors.Is(err, errDenied) {
		t.Fatalf("expected denial, got %v", err)
	}
}

func TestSend_InvalidEventType(t *testing.T) {
	_, err := newSender(dbtest.Open(t), &recordingMailer{}).Send(context.Background(), "district79admin", "friday")
	reason, ok := models.ReasonOf(err)
	if !ok || reason != models.ReasonInvalidEventType {
		t.Fatalf("expected invalid event type, got %v", err)
	}
	if err.(*models.Rejection).Message != "Invalid event type. Must be tuesday or thursday" {
		t.Errorf("unexpected message %q", err.(*models.Rejection).Message)
	}
}

func TestSend_NoRegistrations(t *testing.T) {
	m := &recordingMailer{}
	summary, err := newSender(dbtest.Open(t), m).Send(context.Background(), "district79admin", models.DayThursday)
	if err != nil {
		t.Fatalf("Send returned error: %v", err)
	}
	if summary.EmailsSent != 0 || summary.Message != "No registrations found for thursday event" {
		t.Errorf("unexpected summary %+v", summary)
	}
	if len(m.sent) != 0 {
		t.Errorf("expected nothing sent, got %d", len(m.sent))
	}
}

func TestSend_ScenarioD(t *testing.T) {
	s := dbtest.Open(t)
	loc := dbtest.Location(t, s, "Bronx D79 Center", nil)
	for i := 0; i < 4; i++ {
		dbtest.Registration(t, s, fmt.Sprintf("p%d@schools.nyc.gov", i), models.DayTuesday, loc)
	}
	dbtest.Registration(t, s, "lost@schools.nyc.gov", models.DayTuesday, "gone")
	dbtest.Registration(t, s, "thursday@schools.nyc.gov", models.DayThursday, loc)

	m := &recordingMailer{}
	summary, err := newSender(s, m).Send(context.Background(), "district79admin", models.DayTuesday)
	if err != nil {
		t.Fatalf("Send returned error: %v", err)
	}

	if summary.TotalRegistrations != 5 || summary.EmailsSent != 4 {
		t.Errorf("expected 4 of 5 sent, got %d of %d", summary.EmailsSent, summary.TotalRegistrations)
	}
	if len(summary.Errors) != 1 || summary.Errors[0].Email != "lost@schools.nyc.gov" || summary.Errors[0].Error != "Location not found" {
		t.Errorf("unexpected errors %+v", summary.Errors)
	}
	if summary.Results[0].Status != "sent" || summary.Results[0].Location != "Bronx D79 Center" || summary.Results[0].MessageID != "m1" {
		t.Errorf("unexpected result %+v", summary.Results[0])
	}
	if m.sent[0].Subject != "Reminder: D79 Fall Crawl Tomorrow - Tuesday, Oct 28" {
		t.Errorf("unexpected subject %q", m.sent[0].Subject)
	}
}

func TestSend_FailedSendContinues(t *testing.T) {
	s := dbtest.Open(t)
	loc := dbtest.Location(t, s, "L1", nil)
	dbtest.Registration(t, s, "a@schools.nyc.gov", models.DayThursday, loc)
	dbtest.Registration(t, s, "b@schools.nyc.gov", models.DayThursday, loc)
	dbtest.Registration(t, s, "c@schools.nyc.gov", models.DayThursday, loc)

	m := &flakyMailer{fail: "b@schools.nyc.gov"}
	summary, err := newSender(s, m).Send(context.Background(), "district79admin", models.DayThursday)
	if err != nil {
		t.Fatalf("Send returned error: %v", err)
	}
	if summary.EmailsSent != 2 || len(summary.Errors) != 1 || summary.Errors[0].Email != "b@schools.nyc.gov" {
		t.Errorf("unexpected summary %+v", summary)
	}
}
