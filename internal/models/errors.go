package models

import (
	"errors"
	"fmt"
)

// Reason is the stable code attached to a user-facing rejection.
type Reason string

const (
	ReasonInvalidDomain    Reason = "invalid_domain"
	ReasonMissingFields    Reason = "missing_fields"
	ReasonDuplicateEmail   Reason = "duplicate_email"
	ReasonCapacityExceeded Reason = "capacity_exceeded"
	ReasonInvalidEventType Reason = "invalid_event_type"
)

// Rejection is a validation failure returned to the caller as-is.
type Rejection struct {
	Reason  Reason
	Message string
}

func (r *Rejection) Error() string {
	return fmt.Sprintf("%s: %s", r.Reason, r.Message)
}

func Reject(reason Reason, format string, args ...any) *Rejection {
	return &Rejection{Reason: reason, Message: fmt.Sprintf(format, args...)}
}

// ReasonOf extracts the rejection reason from err, if any.
func ReasonOf(err error) (Reason, bool) {
	var r *Rejection
	if errors.As(err, &r) {
		return r.Reason, true
	}
	return "", false
}
