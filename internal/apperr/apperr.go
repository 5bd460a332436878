// Package apperr defines the error classes the service layer reports.
// Handlers map these to HTTP status codes; everything else wraps them
// with fmt.Errorf and %w.
package apperr

import "errors"

var (
	// ErrInvalidInput rejects malformed or out-of-range input before
	// any external call is made.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized covers both "resource not owned by caller" and
	// "resource does not exist" for mutations, so callers cannot probe
	// for other users' records.
	ErrUnauthorized = errors.New("not authorized")

	ErrNotFound = errors.New("not found")

	// ErrConflict signals a stale optimistic-concurrency version.
	ErrConflict = errors.New("conflict")

	// ErrGateway wraps payment gateway rejections and failures.
	ErrGateway = errors.New("payment gateway error")
)
