// Package common provides shared utilities and types used across the application.
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
	ErrStorage        = errors.New("storage failure")

	// Model and dataset errors.
	ErrDatasetNotFound = errors.New("dataset not found")
	ErrModelNotFound   = errors.New("model artifacts not found")
	ErrSchemaMismatch  = errors.New("feature schema mismatch")

	// Request errors.
	ErrInvalidInput = errors.New("invalid input")

	// Auth errors.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Configuration errors.
	ErrMissingConfig = errors.New("missing configuration")
	ErrMisconfigured = errors.New("server misconfigured")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// UserError represents an error that should be shown to the caller.
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
