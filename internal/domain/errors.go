package domain

import "errors"

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation failed")
	ErrConflict     = errors.New("already exists")
	ErrGateway      = errors.New("payment gateway error")

	ErrInvalidPaymentTransition = errors.New("invalid payment status transition")
	ErrDuplicateOrderNumber     = errors.New("duplicate order number")
)

// ValidationError carries the offending field so handlers can report it.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}
