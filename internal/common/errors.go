// Package common defines shared constants and sentinel errors used across
// Inkwell components. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound       = errors.New("not found")
	ErrorDuplicateEmail = errors.New("email already registered")
	ErrorDuplicateTitle = errors.New("title already taken")

	// Service-level errors (generic/internal flow control).
	ErrorInternal  = errors.New("internal error")
	ErrorForbidden = errors.New("forbidden")

	// Login failures. The two cases stay distinct all the way to the
	// user, matching the behavior the product shipped with.
	ErrorUnknownEmail  = errors.New("unknown email")
	ErrorWrongPassword = errors.New("wrong password")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Session lifecycle errors.
	ErrSessionExpired = errors.New("session expired")
)
