// Package common provides shared utilities and types used across the application.
package common

import (
	"errors"
	"fmt"
)

// Common application errors.
var (
	// Identifier validation errors. These are user-correctable: a document
	// or partner carries a malformed value, and the caller should surface
	// the message verbatim instead of treating it as a fault.
	ErrEmptyInput         = errors.New("input contains no digits")
	ErrFormat             = errors.New("invalid format")
	ErrCheckDigitMismatch = errors.New("check digit mismatch")

	// Database errors.
	ErrNotFound       = errors.New("not found")
	ErrDuplicateEntry = errors.New("duplicate entry")

	// Reconciliation errors. ErrReconciliationRejected marks a recoverable
	// business-rule failure from the commit path; the engine demotes it to
	// a no-match outcome instead of aborting the caller's transaction.
	ErrReconciliationRejected = errors.New("reconciliation rejected")

	// Configuration errors.
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// UserError represents an error that should be shown to the user.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
	}
	return e.UserMessage
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a new user-friendly error.
func NewUserError(userMessage string, err error) error {
	return &UserError{
		UserMessage: userMessage,
		Err:         err,
	}
}

// IsUserCorrectable reports whether an error stems from invalid user input
// rather than a programming or infrastructure fault.
func IsUserCorrectable(err error) bool {
	if errors.Is(err, ErrEmptyInput) ||
		errors.Is(err, ErrFormat) ||
		errors.Is(err, ErrCheckDigitMismatch) {
		return true
	}

	var userErr *UserError
	return errors.As(err, &userErr)
}
