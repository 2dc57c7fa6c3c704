// Package common provides shared errors and helpers used across the application.
package common

import (
	"errors"
	"fmt"
)

// Common application errors.
var (
	// Storage errors.
	ErrNotFound       = errors.New("not found")
	ErrDuplicateEntry = errors.New("duplicate entry")

	// Guardrail errors.
	ErrConsentRequired = errors.New("user consent not granted")
	ErrIneligible      = errors.New("user not eligible for recommendations")

	// Pipeline errors.
	ErrNoSignals     = errors.New("no signals detected")
	ErrUnknownWindow = errors.New("unsupported analysis window")

	// Configuration errors. These are fatal at load time.
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// UserError represents an error that should be shown to an operator verbatim.
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

// NewUserError creates a new operator-friendly error.
func NewUserError(userMessage string, err error) error {
	return &UserError{
		UserMessage: userMessage,
		Err:         err,
	}
}

// IsConfigError reports whether err is a fatal rule-table or config problem.
func IsConfigError(err error) bool {
	return errors.Is(err, ErrMissingConfig) || errors.Is(err, ErrInvalidConfig)
}
