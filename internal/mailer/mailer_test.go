package mailer

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gdg-garage/crawl-registration-api/internal/config"
)

func TestSendGrid_Send(t *testing.T) {
	var got sgRequest
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		w.Header().Set("X-Message-Id", "sg-123")
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	sg := NewSendGrid(context.Background(), srv.URL, "SG.key", "crawls@schools.nyc.gov", "District 79 Fall Crawls")
	receipt, err := sg.Send(context.Background(), Message{To: "a@schools.nyc.gov", Subject: "Hi", HTML: "<p>Hi</p>"})
	if err != nil {
		t.Fatalf("Send returned error: %v", err)
	}

	if receipt.MessageID != "sg-123" {
		t.Errorf("expected message id sg-123, got %q", receipt.MessageID)
	}
	if auth != "Bearer SG.key" {
		t.Errorf("expected bearer auth, got %q", auth)
	}
	if got.Personalizations[0].To[0].Email != "a@schools.nyc.gov" {
		t.Errorf("unexpected recipient %+v", got.Personalizations)
	}
	if got.From.Name != "District 79 Fall Crawls" || got.Content[0].Type != "text/html" {
		t.Errorf("unexpected payload %+v", got)
	}
}

func TestSendGrid_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"errors":[{"message":"bad key"}]}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	sg := NewSendGrid(context.Background(), srv.URL, "bad", "from@x", "")
	_, err := sg.Send(context.Background(), Message{To: "a@schools.nyc.gov"})
	if !errors.Is(err, ErrDeliveryFailed) {
		t.Fatalf("expected ErrDeliveryFailed, got %v", err)
	}
	if !strings.Contains(err.Error(), "401") {
		t.Errorf("expected status in error, got %v", err)
	}
}

func TestSMTP_InvalidRecipient(t *testing.T) {
	s := NewSMTP(SMTPConfig{Host: "localhost", Port: 25, From: "from@schools.nyc.gov"})
	_, err := s.Send(context.Background(), Message{To: "not an address"})
	if !errors.Is(err, ErrDeliveryFailed) {
		t.Fatalf("expected ErrDeliveryFailed, got %v", err)
	}
}

func TestLog_Send(t *testing.T) {
	receipt, err := NewLog(nil).Send(context.Background(), Message{To: "a@schools.nyc.gov", Subject: "Hi"})
	if err != nil {
		t.Fatalf("Send returned error: %v", err)
	}
	if !strings.HasPrefix(receipt.MessageID, "log-") {
		t.Errorf("unexpected message id %q", receipt.MessageID)
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.Config
		wantErr bool
	}{
		{"smtp", config.Config{EmailService: "smtp", EmailHost: "smtp.example.com", EmailPort: 587}, false},
		{"sendgrid", config.Config{EmailService: "sendgrid", SendGridAPIKey: "k"}, false},
		{"sendgrid without key", config.Config{EmailService: "sendgrid"}, true},
		{"log", config.Config{EmailService: "log"}, false},
		{"pigeon", config.Config{EmailService: "pigeon"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(&tt.cfg, nil)
			if (err != nil) != tt.wantErr {
				t.Errorf("expected error=%v, got %v", tt.wantErr, err)
			}
		})
	}
}
