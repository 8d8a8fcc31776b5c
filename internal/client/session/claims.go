package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/dmitrijs2005/gophtasks/internal/client/models"
	"github.com/golang-jwt/jwt/v5"
)

var ErrNoSubject = errors.New("token has no subject")

// UnknownEmail is shown when the token carries no email claim.
const UnknownEmail = "unknown@example.com"

// DecodeUser reads the identity claims of an access token. The signature is
// not verified; the backend does that on every request.
func DecodeUser(token string) (models.User, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return models.User{}, fmt.Errorf("decode access token: %w", err)
	}

	sub := claimString(claims["sub"])
	if sub == "" {
		return models.User{}, ErrNoSubject
	}

	u := models.User{ID: sub, Email: claimString(claims["email"])}
	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		u.IssuedAt = iat.Time
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		u.ExpiresAt = exp.Time
	}
	return u, nil
}

// claimString accepts string and numeric claims; some backends emit integer
// user ids.
func claimString(v any) string {
	switch v := v.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case json.Number:
		return v.String()
	}
	return ""
}
