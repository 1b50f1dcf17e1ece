package github

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/developergarten/garten-auth/social"
)

const (
	defaultAuthURL   = "https://github.com/login/oauth/authorize"
	defaultTokenURL  = "https://github.com/login/oauth/access_token"
	defaultUserURL   = "https://api.github.com/user"
	defaultEmailsURL = "https://api.github.com/user/emails"
)

// Config holds GitHub OAuth configuration. CallbackURL is our callback
// endpoint; the next path is appended to it as a query parameter so it
// survives the round trip through GitHub.
type Config struct {
	ClientID     string
	ClientSecret string
	CallbackURL  string
	Scopes       []string

	AuthURL   string
	TokenURL  string
	UserURL   string
	EmailsURL string

	HTTPClient *http.Client
}

// DefaultScopes returns the scopes the login flow needs.
func DefaultScopes() []string {
	return []string{"user:email"}
}

// Provider implements social.Provider for GitHub.
type Provider struct {
	config     Config
	httpClient *http.Client
}

// New creates a GitHub provider.
func New(cfg Config) *Provider {
	if len(cfg.Scopes) == 0 {
		cfg.Scopes = DefaultScopes()
	}
	if cfg.AuthURL == "" {
		cfg.AuthURL = defaultAuthURL
	}
	if cfg.TokenURL == "" {
		cfg.TokenURL = defaultTokenURL
	}
	if cfg.UserURL == "" {
		cfg.UserURL = defaultUserURL
	}
	if cfg.EmailsURL == "" {
		cfg.EmailsURL = defaultEmailsURL
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	return &Provider{
		config:     cfg,
		httpClient: client,
	}
}

// Name implements social.Provider.
func (p *Provider) Name() string {
	return social.ProviderGithub
}

// AuthCodeURL implements social.Provider.
func (p *Provider) AuthCodeURL(next string) string {
	redirectURI := p.config.CallbackURL
	if next != "" {
		sep := "?"
		if strings.Contains(redirectURI, "?") {
			sep = "&"
		}
		redirectURI += sep + "next=" + url.QueryEscape(next)
	}

	params := url.Values{
		"client_id":    {p.config.ClientID},
		"redirect_uri": {redirectURI},
		"scope":        {strings.Join(p.config.Scopes, " ")},
	}

	return p.config.AuthURL + "?" + params.Encode()
}

// Exchange implements social.Provider.
func (p *Provider) Exchange(ctx context.Context, code string) (*social.Token, error) {
	data := url.Values{
		"client_id":     {p.config.ClientID},
		"client_secret": {p.config.ClientSecret},
		"code":          {code},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.config.TokenURL, strings.NewReader(data.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, providerError("exchange", 0, "", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, providerError("exchange", resp.StatusCode, "", err)
	}

	var tokenResp githubTokenResponse
	if err := json.Unmarshal(body, &tokenResp); err != nil {
		return nil, providerError("exchange", resp.StatusCode, "failed to decode token response", err)
	}

	if resp.StatusCode != http.StatusOK || tokenResp.Error != "" {
		msg := tokenResp.ErrorDesc
		if msg == "" {
			msg = tokenResp.Error
		}
		return nil, providerError("exchange", resp.StatusCode, msg, nil)
	}
	if tokenResp.AccessToken == "" {
		return nil, providerError("exchange", resp.StatusCode, "missing access token", nil)
	}

	return &social.Token{
		AccessToken: tokenResp.AccessToken,
		TokenType:   tokenResp.TokenType,
		Scopes:      splitCommaScopes(tokenResp.Scope),
	}, nil
}

// UserInfo implements social.Provider. The primary verified email is fetched
// separately because the user document hides private addresses.
func (p *Provider) UserInfo(ctx context.Context, token *social.Token) (*social.Profile, error) {
	user, err := p.fetchUser(ctx, token.AccessToken)
	if err != nil {
		return nil, err
	}

	email, err := p.fetchPrimaryEmail(ctx, token.AccessToken)
	if err != nil {
		email = user.Email
	}

	return mapProfile(user, email), nil
}

func (p *Provider) fetchUser(ctx context.Context, accessToken string) (*githubUser, error) {
	body, status, err := p.get(ctx, p.config.UserURL, accessToken)
	if err != nil {
		return nil, providerError("user_info", status, "", err)
	}
	if status != http.StatusOK {
		return nil, providerError("user_info", status, apiErrorMessage(body), nil)
	}

	var user githubUser
	if err := json.Unmarshal(body, &user); err != nil {
		return nil, providerError("user_info", status, "failed to decode user response", err)
	}

	return &user, nil
}

func (p *Provider) fetchPrimaryEmail(ctx context.Context, accessToken string) (string, error) {
	body, status, err := p.get(ctx, p.config.EmailsURL, accessToken)
	if err != nil {
		return "", providerError("emails", status, "", err)
	}
	if status != http.StatusOK {
		return "", providerError("emails", status, apiErrorMessage(body), nil)
	}

	var emails []githubEmail
	if err := json.Unmarshal(body, &emails); err != nil {
		return "", providerError("emails", status, "failed to decode emails response", err)
	}

	for _, e := range emails {
		if e.Primary {
			return e.Email, nil
		}
	}
	for _, e := range emails {
		if e.Verified {
			return e.Email, nil
		}
	}

	return "", providerError("emails", status, "no usable email found", nil)
}

func (p *Provider) get(ctx context.Context, endpoint, accessToken string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/vnd.github.v3+json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, err
	}

	return body, resp.StatusCode, nil
}

type githubTokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	Scope       string `json:"scope"`
	Error       string `json:"error"`
	ErrorDesc   string `json:"error_description"`
}

type githubAPIError struct {
	Message string `json:"message"`
}

func apiErrorMessage(body []byte) string {
	var apiErr githubAPIError
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Message != "" {
		return apiErr.Message
	}

	msg := strings.TrimSpace(string(body))
	if msg == "" {
		return "github request failed"
	}

	return msg
}

func splitCommaScopes(scopes string) []string {
	if scopes == "" {
		return nil
	}

	parts := strings.Split(scopes, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}

	return out
}

func providerError(operation string, status int, message string, err error) *social.ProviderError {
	return &social.ProviderError{
		Provider:  social.ProviderGithub,
		Operation: operation,
		Status:    status,
		Message:   message,
		Err:       err,
	}
}
