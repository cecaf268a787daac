package handlers

import (
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gdg-garage/crawl-registration-api/internal/auth"
	"github.com/gdg-garage/crawl-registration-api/internal/models"
)

// APIError is the body of every failed response: {"error": ..., "code": ...}.
type APIError struct {
	Status  int      `json:"-"`
	Message string   `json:"error"`
	Code    string   `json:"code,omitempty"`
	Details []string `json:"details,omitempty"`
}

func (e *APIError) Error() string  { return e.Message }
func (e *APIError) GetStatus() int { return e.Status }

func init() {
	huma.NewError = func(status int, msg string, errs ...error) huma.StatusError {
		e := &APIError{Status: status, Message: msg, Code: codeFor(status)}
		for _, err := range errs {
			if err != nil {
				e.Details = append(e.Details, err.Error())
			}
		}
		return e
	}
}

func codeFor(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "bad_request"
	case http.StatusUnauthorized:
		return "unauthorized"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusUnprocessableEntity:
		return "validation_failed"
	case http.StatusTooManyRequests:
		return "rate_limited"
	default:
		if status >= 500 {
			return "internal_error"
		}
		return ""
	}
}

// apiError maps domain errors onto HTTP. Anything unrecognised is a 500
// carrying only the fallback message.
func apiError(err error, fallback string) error {
	var rej *models.Rejection
	if errors.As(err, &rej) {
		return &APIError{Status: http.StatusBadRequest, Message: rej.Message, Code: string(rej.Reason)}
	}
	if errors.Is(err, auth.ErrUnauthorized) {
		return &APIError{Status: http.StatusUnauthorized, Message: "Invalid password", Code: "unauthorized"}
	}
	var se huma.StatusError
	if errors.As(err, &se) {
		return se
	}
	return &APIError{Status: http.StatusInternalServerError, Message: fallback, Code: "internal_error"}
}
