package social

import (
	"context"
)

// ProviderGithub is the only provider the platform currently federates with.
const ProviderGithub = "github"

// Provider is an OAuth2 identity provider the callback flow can drive.
type Provider interface {
	// Name returns the provider identifier (e.g. "github").
	Name() string

	// AuthCodeURL returns the provider authorization URL. The next argument
	// is the client-side path to land on after the callback completes and is
	// carried through the redirect_uri.
	AuthCodeURL(next string) string

	// Exchange trades an authorization code for an access token.
	Exchange(ctx context.Context, code string) (*Token, error)

	// UserInfo fetches and normalizes the user's profile.
	UserInfo(ctx context.Context, token *Token) (*Profile, error)
}

// Token is a provider OAuth2 token response.
type Token struct {
	AccessToken string
	TokenType   string
	Scopes      []string
}

// Profile is the normalized identity a provider reports for a user. UID is
// the provider-side numeric id and is the only field identity matching keys
// on; the rest seeds the registration form.
type Profile struct {
	UID       int64  `json:"uid"`
	Email     string `json:"email"`
	Thumbnail string `json:"thumbnail"`
	Name      string `json:"name"`
	Username  string `json:"username"`
}

// Providers is the registry the resolver and controller look providers up in.
type Providers map[string]Provider

// Get returns the named provider or ErrProviderNotSupported.
func (p Providers) Get(name string) (Provider, error) {
	provider, ok := p[name]
	if !ok || provider == nil {
		return nil, ErrProviderNotSupported
	}
	return provider, nil
}

// IsSupportedProvider reports whether the platform federates with the named
// provider.
func IsSupportedProvider(name string) bool {
	return name == ProviderGithub
}
