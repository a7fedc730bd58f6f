package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks malformed input at the remote boundary.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound is returned when no favorite exists for (userId, movieId).
	ErrNotFound = errors.New("favorite not found")
	// ErrUnavailable covers transport failures and unexpected remote statuses.
	ErrUnavailable = errors.New("remote store unavailable")
	// ErrNotConfigured is returned by the API when persistence is not set up.
	ErrNotConfigured = errors.New("server persistence is not configured")
	// ErrInvalidRating is returned for a rating that is not a finite number.
	ErrInvalidRating = errors.New("rating must be a finite number")
)

// ValidationError describes which input field was rejected.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Is makes errors.Is(err, ErrValidation) true for any *ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// NewValidationError builds a ValidationError.
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}
