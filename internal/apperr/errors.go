package apperr

import "errors"

// Sentinel errors shared across the service and controller layers.
// The error middleware maps each one to an HTTP status and a user-facing
// message; everything else is treated as an internal error.
var (
	// ErrUnauthenticated means the session cookie is missing, invalid or expired.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrForbidden means the caller is authenticated but does not own the resource.
	ErrForbidden = errors.New("forbidden")

	// ErrNotFound means the targeted notebook or note does not exist.
	ErrNotFound = errors.New("not found")

	// ErrPersistence means a write was rejected after authorization succeeded.
	ErrPersistence = errors.New("persistence failure")
)
