// Package common defines shared constants and sentinel errors used across
// PhotoGlow components. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")
	ErrorConflict = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Identity errors. One value covers both "no such account" and
	// "wrong password" so callers cannot enumerate accounts.
	ErrorInvalidCredentials = errors.New("invalid credentials")

	// Ledger errors.
	ErrorInsufficientCredits = errors.New("insufficient credits")

	// Checkout / webhook errors.
	ErrorInvalidPlan      = errors.New("invalid plan")
	ErrorSignatureInvalid = errors.New("invalid webhook signature")

	// Image-enhancement errors.
	ErrorUpstreamTimeout = errors.New("upstream timeout")
	ErrorUpstreamFailure = errors.New("upstream failure")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
)
