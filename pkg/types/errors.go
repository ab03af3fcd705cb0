package types

import (
	"errors"
	"fmt"
)

// Backend lifecycle errors.
var (
	ErrBackendDetached = errors.New("backend is detached")
	ErrAlreadyAttached = errors.New("backend is already attached")
	ErrInvalidSnapshot = errors.New("snapshot is not a SQLite database image")
)

// Record store errors.
var (
	ErrNotFound      = errors.New("record not found")
	ErrInvalidID     = errors.New("invalid record ID")
	ErrInvalidData   = errors.New("invalid record data")
	ErrInvalidFilter = errors.New("invalid filter")
	ErrInvalidFlag   = errors.New("invalid export flag")
)

// StoreError reports a failure raised by the SQL engine: bad SQL, a foreign
// key or NOT NULL violation, a type mismatch, or a failed commit. Err keeps
// the engine's original error so errors.Is and errors.As reach it.
type StoreError struct {
	Op    string // Operation, e.g. "create", "update", "delete system".
	Table string // Table or view name; empty for database-wide operations.
	Err   error
}

func (e *StoreError) Error() string {
	if e.Table == "" {
		return fmt.Sprintf("store %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("store %s %s: %v", e.Op, e.Table, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// IsStoreError reports whether err is, or wraps, a *StoreError.
func IsStoreError(err error) bool {
	var se *StoreError
	return errors.As(err, &se)
}

// invalidf wraps ErrInvalidData with a field-specific message.
func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalidData}, args...)...)
}
