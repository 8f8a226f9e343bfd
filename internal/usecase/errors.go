package usecase

import "errors"

// Gateways and services wrap these with fmt.Errorf("%w: ...") so the HTTP
// layer and ActionResult classification can use errors.Is.
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("resource not found")
	// ErrUnauthorized means the caller is not signed in.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden means the store or a local check refused the caller,
	// e.g. not their turn or not the commissioner.
	ErrForbidden = errors.New("forbidden")
	// ErrConflict covers full contestants, duplicate picks and in-flight
	// duplicates.
	ErrConflict              = errors.New("conflict")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
)
