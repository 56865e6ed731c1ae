package domain

import (
	"errors"
	"fmt"
	"time"
)

// ErrForbidden is returned when a session calls an operation its role does
// not allow.
var ErrForbidden = errors.New("operation not permitted for this session")

// ErrNotFound is returned by the service layer when a keyed read finds no row.
var ErrNotFound = errors.New("not found")

// ValidationError reports a caller-supplied value rejected before any SQL is
// issued.
type ValidationError struct {
	Field  string
	Reason string
}

func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// DataAccessError wraps a store failure with the operation that caused it.
type DataAccessError struct {
	Op  string
	Err error
}

func (e *DataAccessError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *DataAccessError) Unwrap() error {
	return e.Err
}

// IsValidation reports whether err is, or wraps, a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsDataAccess reports whether err is, or wraps, a *DataAccessError.
func IsDataAccess(err error) bool {
	var de *DataAccessError
	return errors.As(err, &de)
}

// ParseDate validates a YYYY-MM-DD value for field.
func ParseDate(field, value string) (time.Time, error) {
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, NewValidationError(field, "must be a date formatted YYYY-MM-DD")
	}
	return t, nil
}

func validateOptionalDate(field, value string) error {
	if value == "" {
		return nil
	}
	_, err := ParseDate(field, value)
	return err
}
