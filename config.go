package auth

import (
	"sync"

	"github.com/caarlos0/env/v11"
	goerrors "github.com/goliatone/go-errors"
	"github.com/joho/godotenv"
)

// DefaultIssuer is the platform identifier stamped into every token we sign.
const DefaultIssuer = "developergarten.io"

// EnvConfig resolves auth configuration from the process environment once at
// startup. It satisfies Config and is immutable after LoadConfig returns.
type EnvConfig struct {
	SigningKey         string `env:"SECRET_KEY"`
	Issuer             string `env:"TOKEN_ISSUER" envDefault:"developergarten.io"`
	SigningMethod      string `env:"TOKEN_SIGNING_METHOD" envDefault:"HS256"`
	ContextKey         string `env:"AUTH_CONTEXT_KEY" envDefault:"user_id"`
	AuthScheme         string `env:"AUTH_SCHEME" envDefault:"Bearer"`
	ClientHost         string `env:"CLIENT_HOST" envDefault:"developergarten.io"`
	APIHost            string `env:"API_HOST" envDefault:"api.developergarten.io"`
	GithubClientID     string `env:"GITHUB_ID"`
	GithubClientSecret string `env:"GITHUB_SECRET"`
	Environment        string `env:"APP_ENV" envDefault:"development"`
}

var dotenvOnce sync.Once

// LoadConfig reads the environment into an EnvConfig. A missing signing key is
// a fatal configuration error unless we are running in development mode.
func LoadConfig() (*EnvConfig, error) {
	dotenvOnce.Do(func() {
		// a missing .env file is fine, real env vars win either way
		_ = godotenv.Load()
	})

	cfg := &EnvConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to parse auth environment")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate enforces startup invariants that env parsing alone cannot express.
func (c *EnvConfig) Validate() error {
	if c.SigningKey == "" && !c.IsDevelopment() {
		return ErrMissingSigningKey
	}
	return nil
}

func (c *EnvConfig) GetSigningKey() string { return c.SigningKey }

func (c *EnvConfig) GetSigningMethod() string { return c.SigningMethod }

func (c *EnvConfig) GetIssuer() string { return c.Issuer }

func (c *EnvConfig) GetContextKey() string { return c.ContextKey }

func (c *EnvConfig) GetAuthScheme() string { return c.AuthScheme }

func (c *EnvConfig) GetClientHost() string { return c.ClientHost }

func (c *EnvConfig) GetAPIHost() string { return c.APIHost }

func (c *EnvConfig) GetGithubClientID() string { return c.GithubClientID }

func (c *EnvConfig) GetGithubClientSecret() string { return c.GithubClientSecret }

func (c *EnvConfig) IsDevelopment() bool { return c.Environment == "development" }

var _ Config = (*EnvConfig)(nil)
