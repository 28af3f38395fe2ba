package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/vaishrk/pcos-care/internal/model"
)

// Validation errors.
var (
	ErrNilContext    = errors.New("context cannot be nil")
	ErrEmptyString   = errors.New("string parameter cannot be empty")
	ErrNilParameter  = errors.New("parameter cannot be nil")
	ErrInvalidUserID = errors.New("user id must be positive")
	ErrInvalidRecord = errors.New("invalid prediction record")
	ErrInvalidUser   = errors.New("invalid user account")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

func validateUserID(id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidUserID, id)
	}
	return nil
}

// validatePrediction validates a prediction record before persistence.
func validatePrediction(record *model.PredictionRecord) error {
	if record == nil {
		return fmt.Errorf("%w: record", ErrNilParameter)
	}
	if err := validateUserID(record.UserID); err != nil {
		return err
	}
	switch record.PCOSRisk {
	case model.RiskHigh, model.RiskLow:
	default:
		return fmt.Errorf("%w: unknown risk label %q", ErrInvalidRecord, record.PCOSRisk)
	}
	if record.Confidence < 0 || record.Confidence > 100 {
		return fmt.Errorf("%w: confidence must be between 0 and 100", ErrInvalidRecord)
	}
	return nil
}

// validateUser validates a user account before persistence.
func validateUser(user *model.UserAccount) error {
	if user == nil {
		return fmt.Errorf("%w: user", ErrNilParameter)
	}
	if strings.TrimSpace(user.Name) == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidUser)
	}
	if strings.TrimSpace(user.Email) == "" {
		return fmt.Errorf("%w: missing email", ErrInvalidUser)
	}
	if user.PasswordHash == "" {
		return fmt.Errorf("%w: missing password hash", ErrInvalidUser)
	}
	return nil
}
