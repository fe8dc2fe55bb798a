package errors

import (
	"errors"
	"fmt"
)

// Common error types for the identity bridge
var (
	// Callback errors
	ErrInvalidState = errors.New("invalid state")
	ErrMissingCode  = errors.New("missing authorization code")

	// Provider errors
	ErrUpstream      = errors.New("upstream provider error")
	ErrMissingConfig = errors.New("missing configuration")

	// Local session errors
	ErrInvalidToken = errors.New("invalid token")
	ErrNoToken      = errors.New("no token")

	// Storage errors
	ErrNotFound     = errors.New("not found")
	ErrUnknownField = errors.New("unknown field")
	ErrInvalidInput = errors.New("invalid input")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
