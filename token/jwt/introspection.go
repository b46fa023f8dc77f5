package jwt

import (
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-bank-session/internal/errors"
)

// TokenIntrospection is what a client can learn from an access token without
// the signing key. Nothing here is trusted; it is for display only.
type TokenIntrospection struct {
	TokenType string
	UserID    int64
	Username  string
	Role      string
	IssuedAt  time.Time
	ExpiresAt time.Time
	ID        string
}

// Expired reports whether the token's exp claim is in the past. Tokens
// without exp never expire by this check.
func (ti *TokenIntrospection) Expired() bool {
	return !ti.ExpiresAt.IsZero() && NowTimeFunc().After(ti.ExpiresAt)
}

// Inspect decodes an access token without verifying its signature.
func Inspect(rawToken string) (*TokenIntrospection, error) {
	if strings.TrimSpace(rawToken) == "" {
		return nil, errors.ErrInvalidToken
	}

	claims := &Claims{}
	if _, _, err := jwtlib.NewParser().ParseUnverified(rawToken, claims); err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidToken, "%v", err)
	}

	ti := &TokenIntrospection{
		TokenType: claims.TokenType,
		UserID:    claims.UserID,
		Username:  claims.Username,
		Role:      claims.Role,
		ID:        claims.ID,
	}
	if claims.IssuedAt != nil {
		ti.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		ti.ExpiresAt = claims.ExpiresAt.Time
	}
	return ti, nil
}
