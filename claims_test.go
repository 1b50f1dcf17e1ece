package auth_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"

	"github.com/developergarten/garten-auth"
)

func TestNewRegisteredClaims(t *testing.T) {
	claims := auth.NewRegisteredClaims("test-issuer", auth.SubjectAccessToken, auth.AccessTokenTTL)

	assert.Equal(t, "test-issuer", claims.Issuer)
	assert.Equal(t, auth.SubjectAccessToken, claims.Subject)
	assert.NotNil(t, claims.IssuedAt)
	assert.NotNil(t, claims.ExpiresAt)
	assert.WithinDuration(t, time.Now().Add(auth.AccessTokenTTL), claims.ExpiresAt.Time, 5*time.Second)
}

func TestNewRegisteredClaimsDefaultTTL(t *testing.T) {
	claims := auth.NewRegisteredClaims("test-issuer", "anything", 0)

	assert.WithinDuration(t, time.Now().Add(auth.DefaultTokenTTL), claims.ExpiresAt.Time, 5*time.Second)
}

func TestAccessClaimsRemainingLife(t *testing.T) {
	now := time.Now()
	claims := &auth.AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(45 * time.Minute)),
		},
	}

	remaining := claims.RemainingLife(now)
	assert.Equal(t, 45*time.Minute, remaining.Round(time.Minute))
	assert.False(t, remaining < auth.AccessRenewThreshold)

	// past the renewal threshold
	remaining = claims.RemainingLife(now.Add(20 * time.Minute))
	assert.True(t, remaining < auth.AccessRenewThreshold)
}

func TestRefreshClaimsRemainingLife(t *testing.T) {
	now := time.Now()
	claims := &auth.RefreshClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(auth.RefreshTokenTTL)),
		},
	}

	assert.False(t, claims.RemainingLife(now) < auth.RefreshRenewThreshold)
	assert.True(t, claims.RemainingLife(now.Add(16*24*time.Hour)) < auth.RefreshRenewThreshold)
}

func TestClaimsExpirationAbsent(t *testing.T) {
	access := &auth.AccessClaims{}
	assert.True(t, access.Expiration().IsZero())
	assert.True(t, access.RemainingLife(time.Now()) < 0)

	refresh := &auth.RefreshClaims{}
	assert.True(t, refresh.Expiration().IsZero())
}

func TestTokenLifetimeConstants(t *testing.T) {
	assert.Equal(t, time.Hour, auth.AccessTokenTTL)
	assert.Equal(t, 30*24*time.Hour, auth.RefreshTokenTTL)
	assert.Equal(t, time.Hour, auth.RegisterTokenTTL)
	assert.Equal(t, 7*24*time.Hour, auth.DefaultTokenTTL)
	assert.Equal(t, 30*time.Minute, auth.AccessRenewThreshold)
	assert.Equal(t, 15*24*time.Hour, auth.RefreshRenewThreshold)
}
