package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors used across all layers.
var (
	ErrNotFound               = errors.New("not found")
	ErrAlreadyExists          = errors.New("already exists")
	ErrValidation             = errors.New("validation error")
	ErrInvalidTransition      = errors.New("invalid transition")
	ErrGuardFailed            = errors.New("guard failed")
	ErrConcurrentModification = errors.New("concurrent modification")
)

// FieldError describes a validation error for a specific field.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError contains a list of field-level validation errors.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("validation: %s — %s", e.Errors[0].Field, e.Errors[0].Message)
	}
	return fmt.Sprintf("validation: %d errors", len(e.Errors))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError creates a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Errors: []FieldError{{Field: field, Message: message}},
	}
}

// InvalidTransitionError is returned when a caller requests a state change
// the verification state machine does not permit. It names both states so
// the caller can see exactly what was attempted. Not retriable.
type InvalidTransitionError struct {
	From VerificationStatus
	To   VerificationStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition: %s -> %s", e.From, e.To)
}

func (e *InvalidTransitionError) Unwrap() error { return ErrInvalidTransition }

// Guard names used in GuardFailedError. Kept as constants so callers can
// branch on which guard blocked a transition.
const (
	GuardDocumentUploaded  = "document_uploaded"
	GuardDocumentsApproved = "documents_approved"
	GuardFraudSignal       = "fraud_signal"
)

// GuardFailedError is returned when a transition is structurally legal but a
// business guard blocks it (incomplete documents, fraud suspicion). Distinct
// from InvalidTransitionError: the attempt was expected and actionable, and
// the caller must surface which guard failed.
type GuardFailedError struct {
	Guard  string
	Reason string
}

func (e *GuardFailedError) Error() string {
	return fmt.Sprintf("guard %s failed: %s", e.Guard, e.Reason)
}

func (e *GuardFailedError) Unwrap() error { return ErrGuardFailed }
