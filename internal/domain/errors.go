// internal/domain/errors.go
package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors surfaced by the aggregator and the snapshot store.
var (
	ErrInvalidRange       = errors.New("invalid date range: end before start")
	ErrSnapshotNotFound   = errors.New("snapshot not found")
	ErrCorruptSnapshot    = errors.New("snapshot artifact is corrupt")
	ErrNoSnapshotInWindow = errors.New("no snapshot in requested window")
)

// ValidationError reports a missing or malformed request field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid field %q: %s", e.Field, e.Reason)
}

// NewValidationError builds a ValidationError for a single field.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// NotFoundError reports a referenced entity that does not exist. An empty
// result set is never a NotFoundError.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Entity, e.ID)
}

// ConflictError reports a business-rule violation.
type ConflictError struct {
	Reason string
}

func (e *ConflictError) Error() string {
	return e.Reason
}

// StorageError wraps a disk or filesystem failure. It is the only class
// treated as potentially fatal to the in-flight operation.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage failure during %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
