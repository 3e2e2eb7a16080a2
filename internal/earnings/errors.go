package earnings

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateEntry is returned when the day already has a record.
	ErrDuplicateEntry = errors.New("an entry for this day already exists")
	// ErrNotFound is returned when an id matches nothing.
	ErrNotFound = errors.New("record not found")
	// ErrInsufficientSavings is returned when a withdrawal exceeds the jar.
	ErrInsufficientSavings = errors.New("insufficient savings")
)

// ValidationError rejects input before any state is touched.
type ValidationError struct {
	Field  string
	Reason string
	Err    error // optional sentinel, e.g. ErrDuplicateEntry
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func invalid(field string, err error) *ValidationError {
	return &ValidationError{Field: field, Reason: err.Error()}
}

// PersistenceError wraps a store failure. Nothing is retried; the whole
// operation can be repeated by the caller.
type PersistenceError struct {
	Op  string // load / save
	Key string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Key, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
