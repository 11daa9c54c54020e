// Package apperr defines the error taxonomy shared by the repositories,
// services and HTTP layer. Invariant violations are detected close to
// the store and surfaced as ErrConflict; they are semantic, not
// transient, so callers must not retry them. ErrUnavailable is the only
// class safe to retry with backoff.
package apperr

import "errors"

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidInput = errors.New("invalid input")
	ErrInvalidState = errors.New("invalid state")
	ErrUnavailable  = errors.New("store unavailable")
)

// ConflictError carries the precise reason a claim submission or review
// lost its race. These are expected, frequent outcomes in a multi-user
// race, so the reason is shown to the end user verbatim.
type ConflictError struct {
	Reason string
}

func (e *ConflictError) Error() string {
	if e.Reason == "" {
		return ErrConflict.Error()
	}
	return e.Reason
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// Conflict builds a ConflictError with the given user-facing reason.
func Conflict(reason string) error {
	return &ConflictError{Reason: reason}
}
