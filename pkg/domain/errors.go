package domain

import (
	"errors"
	"fmt"
)

// Validation sentinels. They are always wrapped in a *ValidationError.
var (
	ErrEmptyName          = errors.New("empty name")
	ErrInvalidName        = errors.New("invalid name")
	ErrUnknownCategory    = errors.New("unknown category")
	ErrUnknownItem        = errors.New("unknown item")
	ErrQuantityOutOfRange = errors.New("quantity out of range")
	ErrEmptyCart          = errors.New("cart is empty")
	ErrNoCategory         = errors.New("no category selected")
)

// ErrIllegalAction is returned when an action is not offered by the current step.
var ErrIllegalAction = errors.New("illegal action for step")

// ErrInvariantViolation marks a broken session invariant. It signals misuse
// of the flow contract by the host, not a user mistake.
var ErrInvariantViolation = errors.New("invariant violation")

// ErrInvalidCatalog is returned when a menu definition cannot be used.
var ErrInvalidCatalog = errors.New("invalid catalog")

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// User-facing messages for the name step.
const (
	MsgEmptyName   = "Please enter a valid name."
	MsgInvalidName = "Name must only contain letters and spaces."
)

// ValidationError is a rejected user input. Message is short and meant to be
// shown next to the offending field.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NewValidationError builds a ValidationError for field.
func NewValidationError(field, message string, err error) *ValidationError {
	return &ValidationError{Field: field, Message: message, Err: err}
}

// IllegalActionError describes an action that the current step does not accept.
type IllegalActionError struct {
	Step   Step
	Action string
}

func (e *IllegalActionError) Error() string {
	return fmt.Sprintf("action %q is not allowed in step %q", e.Action, e.Step)
}

func (e *IllegalActionError) Unwrap() error {
	return ErrIllegalAction
}

// InvariantError reports which invariant was broken and where.
type InvariantError struct {
	Step   Step
	Detail string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("invariant violation at step %q: %s", e.Step, e.Detail)
}

func (e *InvariantError) Unwrap() error {
	return ErrInvariantViolation
}

// UserMessage extracts the message a host should show for err.
// It returns false for errors that are not meant for the customer.
func UserMessage(err error) (string, bool) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr.Message, true
	}
	return "", false
}
