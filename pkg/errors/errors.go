// Package errors holds the error kinds shared by every module.
//
// Module-level sentinels are built with New so that callers can match
// either the precise sentinel or its kind:
//
//	errors.Is(err, service.ErrTenderNotFound) // precise
//	errors.Is(err, apperrors.ErrNotFound)     // kind
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ── Kinds ──

var (
	ErrValidation       = errors.New("validation failed")
	ErrPermissionDenied = errors.New("permission denied")
	ErrNotFound         = errors.New("not found")
	ErrConflict         = errors.New("conflict")
	ErrStorage          = errors.New("storage failure")

	// ErrOptimisticLock the row was changed by another request
	ErrOptimisticLock = New(ErrConflict, "record was modified by another request, reload and retry")
)

// Error is a sentinel with a human message and a kind.
type Error struct {
	Kind error
	Msg  string
}

// New creates a sentinel of the given kind.
func New(kind error, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

func (e *Error) Error() string { return e.Msg }

func (e *Error) Unwrap() error { return e.Kind }

// ValidationError lists the offending request fields.
type ValidationError struct {
	Fields []string
	Reason string
}

// Validation builds a ValidationError for the given fields.
func Validation(reason string, fields ...string) *ValidationError {
	return &ValidationError{Fields: fields, Reason: reason}
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Reason, strings.Join(e.Fields, ", "))
}

// Is makes every ValidationError match ErrValidation.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Storage wraps a persistence failure so the cause stays inspectable
// while the kind is ErrStorage.
func Storage(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStorage, op, err)
}

// KindOf returns the kind of err, or nil when it has none.
func KindOf(err error) error {
	for _, k := range []error{ErrValidation, ErrPermissionDenied, ErrNotFound, ErrConflict, ErrStorage} {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}
