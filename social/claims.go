package social

import (
	"github.com/golang-jwt/jwt/v5"

	"github.com/developergarten/garten-auth"
)

// RegisterClaims is the payload of the pending-registration token. It bridges
// the provider callback and the registration form without persisting anything:
// the whole pending state rides in the signed token.
type RegisterClaims struct {
	jwt.RegisteredClaims
	Profile     Profile `json:"profile"`
	Provider    string  `json:"provider"`
	AccessToken string  `json:"accessToken"`
}

// NewRegisterClaims builds a 1h pending-registration claim set.
func NewRegisterClaims(issuer string, profile Profile, provider, accessToken string) *RegisterClaims {
	return &RegisterClaims{
		RegisteredClaims: auth.NewRegisteredClaims(issuer, auth.SubjectRegisterToken, auth.RegisterTokenTTL),
		Profile:          profile,
		Provider:         provider,
		AccessToken:      accessToken,
	}
}
