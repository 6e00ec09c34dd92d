// Package common defines the sentinel errors shared across the service,
// repository and transport layers. Callers match them with errors.Is.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound           = errors.New("not found")
	ErrEmailConflict      = errors.New("email already exists")
	ErrCatalogUnavailable = errors.New("catalog unavailable")

	// Blob store errors.
	ErrObjectNotFound   = errors.New("object not found")
	ErrStoreUnavailable = errors.New("store unavailable")

	// Service-level errors.
	ErrInternal         = errors.New("internal error")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrForbidden        = errors.New("forbidden")
	ErrMalformedPayload = errors.New("malformed payload")

	// Recovery-code lifecycle errors.
	ErrInvalidCode = errors.New("code is not valid")
	ErrCodeExpired = errors.New("code is already expired")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
)
