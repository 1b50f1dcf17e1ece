package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token subjects. Every token we sign carries one of these in its sub claim
// so a token minted for one purpose cannot be replayed for another.
const (
	SubjectAccessToken   = "access_token"
	SubjectRefreshToken  = "refresh_token"
	SubjectRegisterToken = "register_token"
)

// Token lifetimes and rotation thresholds.
const (
	// DefaultTokenTTL applies when a caller does not pick a lifetime.
	DefaultTokenTTL = 7 * 24 * time.Hour
	// AccessTokenTTL is the single request window credential lifetime.
	AccessTokenTTL = time.Hour
	// RefreshTokenTTL keeps a session alive without re-authentication.
	RefreshTokenTTL = 30 * 24 * time.Hour
	// RegisterTokenTTL bridges the OAuth callback and the registration form.
	RegisterTokenTTL = time.Hour

	// AccessRenewThreshold triggers proactive rotation when an access token
	// has less than this lifetime remaining.
	AccessRenewThreshold = 30 * time.Minute
	// RefreshRenewThreshold re-mints the refresh token itself when its
	// remaining lifetime drops below this.
	RefreshRenewThreshold = 15 * 24 * time.Hour
)

// AccessClaims is the payload of a short-lived access token.
type AccessClaims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id"`
}

// RefreshClaims is the payload of a long-lived refresh token. TokenID points
// at the AuthToken row minted when the refresh token was issued and anchors
// revocation.
type RefreshClaims struct {
	jwt.RegisteredClaims
	UserID  string `json:"user_id"`
	TokenID string `json:"token_id"`
}

// Expiration returns the exp claim time or zero when absent.
func (c *AccessClaims) Expiration() time.Time {
	if c.ExpiresAt != nil {
		return c.ExpiresAt.Time
	}
	return time.Time{}
}

// RemainingLife reports how long the access token stays valid from now.
func (c *AccessClaims) RemainingLife(now time.Time) time.Duration {
	return c.Expiration().Sub(now)
}

// Expiration returns the exp claim time or zero when absent.
func (c *RefreshClaims) Expiration() time.Time {
	if c.ExpiresAt != nil {
		return c.ExpiresAt.Time
	}
	return time.Time{}
}

// RemainingLife reports how long the refresh token stays valid from now.
func (c *RefreshClaims) RemainingLife(now time.Time) time.Duration {
	return c.Expiration().Sub(now)
}

// NewRegisteredClaims stamps issuer, subject, iat, and exp the way every
// token in the system carries them.
func NewRegisteredClaims(issuer, subject string, ttl time.Duration) jwt.RegisteredClaims {
	now := time.Now()
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
}
