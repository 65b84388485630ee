// Package services implements the dashboard's business logic: identity
// resolution across the two profile schemas, the dashboard read model,
// backfill of time series and recommendations, NASA ingestion, and
// sign-up/sign-in.
//
// This file centralizes the service-level error taxonomy. Translation into
// HTTP status codes is performed once, in the handler layer.
package services

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks missing or malformed input. Concrete messages wrap
	// it with %w so callers can test with errors.Is.
	ErrValidation = errors.New("validation failed")

	// ErrConflict is returned when a sign-up email (or username) is already
	// registered in either schema.
	ErrConflict = errors.New("user already exists")

	// ErrInvalidCredentials is returned when no profile matches the email or
	// the password does not verify.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUserNotFound is returned when an id resolves in neither schema.
	ErrUserNotFound = errors.New("user not found")

	// ErrLegacyProfile is returned for operations that need the current
	// schema (farm coordinates, ingestion) when the id resolved as legacy.
	ErrLegacyProfile = errors.New("operation not supported for legacy profiles")

	// ErrIdempotencyMismatch is returned when an Idempotency-Key is reused
	// with a request that differs from the one it first accompanied.
	ErrIdempotencyMismatch = errors.New("idempotency key reused with a different request")

	// ErrNoCoordinates is returned by ingestion when the profile has no farm
	// location yet.
	ErrNoCoordinates = errors.New("farm coordinates not set")
)

// DependencyError wraps a failure of the store or the external provider.
type DependencyError struct {
	Op  string
	Err error
}

func (e *DependencyError) Error() string { return e.Op + ": " + e.Err.Error() }

// Unwrap exposes the underlying error.
func (e *DependencyError) Unwrap() error { return e.Err }

// dependency wraps err as a DependencyError unless it is nil, already one,
// or part of the taxonomy above.
func dependency(op string, err error) error {
	if err == nil {
		return nil
	}
	var de *DependencyError
	if errors.As(err, &de) || isDomainError(err) {
		return err
	}
	return &DependencyError{Op: op, Err: err}
}

func isDomainError(err error) bool {
	for _, target := range []error{
		ErrValidation, ErrConflict, ErrInvalidCredentials,
		ErrUserNotFound, ErrLegacyProfile, ErrNoCoordinates,
		ErrIdempotencyMismatch,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
