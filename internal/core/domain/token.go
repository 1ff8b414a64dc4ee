package domain

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims is what the client can read out of a bearer token without
// the signing key. It is for display only; the backend stays the authority.
type TokenClaims struct {
	UserID    int64
	Role      Role
	ExpiresAt time.Time
}

// Expired reports whether the token's exp claim lies before now. Tokens
// without an exp claim never expire client-side.
func (c TokenClaims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && now.After(c.ExpiresAt)
}

type tokenPayload struct {
	UserID int64  `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// PeekToken decodes the claims of a JWT bearer token without verifying
// its signature.
func PeekToken(token string) (TokenClaims, error) {
	var payload tokenPayload
	if _, _, err := jwt.NewParser().ParseUnverified(token, &payload); err != nil {
		return TokenClaims{}, fmt.Errorf("peek token: %w", err)
	}
	claims := TokenClaims{UserID: payload.UserID, Role: Role(payload.Role)}
	if payload.ExpiresAt != nil {
		claims.ExpiresAt = payload.ExpiresAt.Time.UTC()
	}
	return claims, nil
}
