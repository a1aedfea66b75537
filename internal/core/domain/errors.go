package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Booking and inventory errors. Handlers map these onto HTTP statuses with
// errors.Is, services never retry on them.
var (
	ErrCarNotFound       = errors.New("car not found")
	ErrCarUnavailable    = errors.New("car not available for test drive")
	ErrSlotConflict      = errors.New("this time slot is already booked")
	ErrBookingNotFound   = errors.New("booking not found")
	ErrForbidden         = errors.New("not allowed to modify this booking")
	ErrAlreadyCancelled  = errors.New("booking is already cancelled")
	ErrAlreadyCompleted  = errors.New("cannot cancel a completed booking")
	ErrInvalidTransition = errors.New("invalid booking status transition")
	ErrNoValidImages     = errors.New("no valid images were uploaded")
)

// Extraction pipeline errors.
var (
	ErrAIConfiguration = errors.New("generative model is not configured")
	ErrModelInvocation = errors.New("generative model call failed")
	ErrParse           = errors.New("failed to parse model response")
)

// MissingFieldsError rejects a model response that lacks required fields.
type MissingFieldsError struct {
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return fmt.Sprintf("model response missing required fields: %s", strings.Join(e.Fields, ", "))
}

// FieldError is a single caller-correctable violation on a named field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors collects every violated field rather than stopping at
// the first, so a form can show one error per field.
type ValidationErrors []FieldError

func (e ValidationErrors) Error() string {
	msgs := make([]string, len(e))
	for i, fe := range e {
		msgs[i] = fe.Error()
	}
	return strings.Join(msgs, "; ")
}
