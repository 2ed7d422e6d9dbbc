package store

import (
	"errors"
	"fmt"
)

// ErrNotFound marks a lookup whose id has no entity behind it. It is a
// normal outcome for reads and a caller error for updates and deletes.
var ErrNotFound = errors.New("not found")

// ErrConflict marks a create whose explicit id already exists.
var ErrConflict = errors.New("already exists")

// ValidationError rejects a mutation before any file is written.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Reason)
}

func validationErr(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
