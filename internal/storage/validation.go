package storage

import (
	"context"
	"errors"
	"fmt"
)

// Validation errors returned before touching the database.
var (
	ErrEmptyValue = errors.New("value cannot be empty")
	ErrNilValue   = errors.New("value cannot be nil")
)

func validateContext(ctx context.Context) error {
	if ctx == nil {
		return fmt.Errorf("%w: context", ErrNilValue)
	}
	return ctx.Err()
}

func validateString(value, name string) error {
	if value == "" {
		return fmt.Errorf("%w: %s", ErrEmptyValue, name)
	}
	return nil
}

func validateWindowDays(days int) error {
	if days <= 0 {
		return fmt.Errorf("%w: windowDays must be positive, got %d", ErrEmptyValue, days)
	}
	return nil
}
