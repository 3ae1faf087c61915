package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the subset of a hotel API token worth showing to an operator.
type Claims struct {
	Subject   string
	TokenType string // "access" or "refresh" when the issuer sets it
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Expired reports whether the token expiry is known and in the past.
func (c *Claims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && now.After(c.ExpiresAt)
}

// Inspect decodes the claims of a JWT without verifying its signature.
// The client never holds the signing key; this is for display and
// diagnostics only and must not be used for authorization decisions.
func Inspect(token string) (*Claims, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("decoding token: %w", err)
	}

	out := &Claims{}
	out.Subject, _ = claims.GetSubject()
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		out.ExpiresAt = exp.Time
	}
	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		out.IssuedAt = iat.Time
	}
	if typ, ok := claims["type"].(string); ok {
		out.TokenType = typ
	}
	return out, nil
}
