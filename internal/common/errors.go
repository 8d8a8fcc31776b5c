// Package common defines shared constants and sentinel errors used across
// the client layers of gophtasks. Callers should use errors.Is to match these
// values.
package common

import "errors"

var (
	// Client-local form validation; never sent to the server.
	ErrValidation = errors.New("validation error")

	// Refresh failed or no refresh token is available. The session is gone.
	ErrAuthRequired = errors.New("authentication required")

	// Transport-level failure (DNS, connection refused, offline).
	ErrNetwork = errors.New("network error")

	// Task is not present in the local cache.
	ErrNotFound = errors.New("not found")

	// Operation needs a signed-in user.
	ErrNotAuthenticated = errors.New("not authenticated")
)
