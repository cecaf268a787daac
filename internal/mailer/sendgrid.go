package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/oauth2"
)

type sgAddress struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type sgContent struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type sgPersonalization struct {
	To []sgAddress `json:"to"`
}

type sgRequest struct {
	Personalizations []sgPersonalization `json:"personalizations"`
	From             sgAddress           `json:"from"`
	Subject          string              `json:"subject"`
	Content          []sgContent         `json:"content"`
}

// SendGrid posts to the v3 mail send endpoint. The API key travels as an
// OAuth2 bearer token.
type SendGrid struct {
	client   *http.Client
	url      string
	from     string
	fromName string
}

func NewSendGrid(ctx context.Context, url, apiKey, from, fromName string) *SendGrid {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: apiKey, TokenType: "Bearer"})
	return &SendGrid{
		client:   oauth2.NewClient(ctx, ts),
		url:      url,
		from:     from,
		fromName: fromName,
	}
}

func (s *SendGrid) Send(ctx context.Context, msg Message) (Receipt, error) {
	body, err := json.Marshal(sgRequest{
		Personalizations: []sgPersonalization{{To: []sgAddress{{Email: msg.To}}}},
		From:             sgAddress{Email: s.from, Name: s.fromName},
		Subject:          msg.Subject,
		Content:          []sgContent{{Type: "text/html", Value: msg.HTML}},
	})
	if err != nil {
		return Receipt{}, fmt.Errorf("%w: encode: %w", ErrDeliveryFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return Receipt{}, fmt.Errorf("%w: %w", ErrDeliveryFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return Receipt{}, fmt.Errorf("%w: send to %s: %w", ErrDeliveryFailed, msg.To, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return Receipt{}, fmt.Errorf("%w: sendgrid status %d: %s", ErrDeliveryFailed, resp.StatusCode, bytes.TrimSpace(detail))
	}
	return Receipt{MessageID: resp.Header.Get("X-Message-Id")}, nil
}
