// Package common defines shared constants and sentinel errors used across
// the client and server layers of bizdesk. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")
	ErrConflict   = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal   = errors.New("internal error")
	ErrInvalidInput = errors.New("invalid input")

	// Identity errors.
	ErrInvalidCredential    = errors.New("invalid credential")
	ErrInvalidAssertion     = errors.New("invalid identity assertion")
	ErrInvalidOrExpiredCode = errors.New("invalid or expired code")

	// Session token and authorization errors.
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrTokenExpired    = errors.New("token expired")
	ErrForbidden       = errors.New("forbidden")

	// Multi-agent composition errors.
	ErrUpstreamFailure = errors.New("upstream failure")
)
