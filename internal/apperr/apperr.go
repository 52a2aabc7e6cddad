package apperr

import "errors"

var (
	// ErrNotFound is the sentinel for missing resources.
	ErrNotFound = errors.New("not found")
	// ErrPermissionDenied is the sentinel for callers acting on resources they do not own.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrValidation is the sentinel for malformed input.
	ErrValidation = errors.New("validation failed")
	// ErrConflict is the sentinel for unique-key collisions on create.
	ErrConflict = errors.New("conflict")
	// ErrUnauthorized is the sentinel for missing or invalid credentials.
	ErrUnauthorized = errors.New("unauthorized")
)
