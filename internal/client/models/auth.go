package models

import "time"

// TokenPair is the bearer credential pair issued by the backend.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// User is the identity decoded from the current access token.
type User struct {
	ID        string
	Email     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// APIError is the error body the backend sends with non-2xx responses.
type APIError struct {
	Detail string `json:"detail"`
}
