// Package common contains shared constants and sentinel errors used across
// gophtasks components.
package common

// Header names attached to outbound API requests.
const (
	AuthorizationHeader = "Authorization"
	BearerPrefix        = "Bearer "
	ContentTypeHeader   = "Content-Type"
	ContentTypeJSON     = "application/json"
	RequestIDHeader     = "X-Request-ID"
)

// Durable storage keys for the bearer credentials.
const (
	AccessTokenKey  = "access_token"
	RefreshTokenKey = "refresh_token"
)
