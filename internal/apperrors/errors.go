// Package apperrors defines the error classes the service layer reports.
//
// Handlers map them onto HTTP statuses; the notification scheduler routes on
// them too: ErrValidation on a single task is log-and-continue, while a
// repository failure aborts the current sweep iteration.
package apperrors

import "errors"

var (
	// ErrUnauthorized: the caller is authenticated but not allowed to do this.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNotFound: the referenced task or user does not exist.
	ErrNotFound = errors.New("not found")
	// ErrValidation: bad input (malformed deadline time, duplicate share, self-share).
	ErrValidation = errors.New("validation failed")
	// ErrUnavailable: the backing store failed; safe to retry on the next tick.
	ErrUnavailable = errors.New("repository unavailable")
)
