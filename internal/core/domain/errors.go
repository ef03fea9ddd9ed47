package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrValidation      = errors.New("validation failed")
	ErrNotFound        = errors.New("not found")
	ErrForbidden       = errors.New("access forbidden")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrConflict        = errors.New("conflict")

	ErrAccountNotFound    = fmt.Errorf("account %w", ErrNotFound)
	ErrListingNotFound    = fmt.Errorf("PG %w", ErrNotFound)
	ErrBookingNotFound    = fmt.Errorf("booking %w", ErrNotFound)
	ErrImageNotFound      = fmt.Errorf("image %w", ErrNotFound)
	ErrInvalidCredentials = fmt.Errorf("invalid credentials: %w", ErrUnauthenticated)
	ErrEmailTaken         = fmt.Errorf("email already registered: %w", ErrConflict)
)

// ValidationError lists the offending fields of a rejected input.
// errors.Is(err, ErrValidation) holds for every ValidationError.
type ValidationError struct {
	Fields  []string
	Message string
}

// NewValidationError builds a ValidationError for the given fields.
func NewValidationError(message string, fields ...string) *ValidationError {
	return &ValidationError{Fields: fields, Message: message}
}

func (e *ValidationError) Error() string {
	switch {
	case e.Message != "" && len(e.Fields) > 0:
		return e.Message + ": " + strings.Join(e.Fields, ", ")
	case e.Message != "":
		return e.Message
	case len(e.Fields) > 0:
		return "missing required fields: " + strings.Join(e.Fields, ", ")
	default:
		return ErrValidation.Error()
	}
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
