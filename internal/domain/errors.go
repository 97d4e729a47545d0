package domain

import (
	"errors"
	"fmt"
)

// ValidationError marks a malformed request or webhook payload; handlers map
// it to a 4xx response.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func NewValidationError(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// NotFoundError marks a lookup miss (unknown payment id, address or
// appointment reference); handlers map it to 404.
type NotFoundError struct {
	What string
}

func (e *NotFoundError) Error() string { return e.What + " not found" }

// ExternalServiceError wraps a failure of an outbound collaborator (rate
// quote or payment-address API). Payment creation fails closed on it.
type ExternalServiceError struct {
	Service string
	Err     error
}

func (e *ExternalServiceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Service, e.Err)
}

func (e *ExternalServiceError) Unwrap() error { return e.Err }

// Booking conflict sentinels, surfaced to callers as a SlotUnavailable
// result rather than a failure.
var (
	ErrSlotTaken = errors.New("slot_overlap")
	ErrDayFull   = errors.New("day_full")
)

// SlotUnavailable reasons.
const (
	UnavailableOverlap      = "OVERLAP"
	UnavailableDayFull      = "DAY_FULL"
	UnavailableOutsideHours = "OUTSIDE_HOURS"
	UnavailableTooSoon      = "TOO_SOON"
)

// SlotUnavailable is the structured result returned when a booking request
// loses to the overlap or daily-cap rules. It is a value, not an error: the
// interactive caller re-renders fresh availability from it.
type SlotUnavailable struct {
	Reason string `json:"reason"`
}
