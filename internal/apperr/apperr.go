// Package apperr defines the error taxonomy shared by the review core.
//
// Errors are sentinel values meant to be wrapped with context and checked with
// errors.Is, so services can classify a failure without depending on the
// package that produced it.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks malformed or out-of-range input. Nothing is written
	// when a validation error is returned.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound marks an absent record, review or response.
	ErrNotFound = errors.New("not found")
	// ErrOwnership marks an access by a caller who does not own the record.
	ErrOwnership = errors.New("caller does not own this record")
	// ErrConflict marks a duplicate pending review for the same calendar date.
	ErrConflict = errors.New("conflicting review already scheduled")
	// ErrScheduling marks a question review advance with no linked
	// programmed review to carry the schedule.
	ErrScheduling = errors.New("no linked programmed review")
)

// Validationf wraps ErrValidation with a formatted message.
func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrValidation}, args...)...)
}

// NotFoundf wraps ErrNotFound with a formatted message.
func NotFoundf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrNotFound}, args...)...)
}
