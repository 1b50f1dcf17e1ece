package social

import (
	"context"
	stderrors "errors"
	"strconv"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"

	"github.com/developergarten/garten-auth"
)

// Resolution outcomes. A callback either logs an existing user in, logs in a
// user matched by email, or leaves a pending registration behind.
const (
	ResolutionLogin      = "login"
	ResolutionEmailLogin = "email_login"
	ResolutionRegister   = "register"
)

// Resolution is the outcome of running a provider callback through the
// identity matcher. Login kinds carry the user and a fresh token pair; the
// register kind carries the signed pending-registration token instead.
type Resolution struct {
	Kind          string
	User          *auth.User
	Tokens        *auth.TokenPair
	RegisterToken string
	Profile       *Profile
}

// LoggedIn reports whether the resolution produced an authenticated session.
func (r *Resolution) LoggedIn() bool {
	return r != nil && (r.Kind == ResolutionLogin || r.Kind == ResolutionEmailLogin)
}

// IdentityResolver turns a provider authorization code into a Resolution.
type IdentityResolver struct {
	providers    Providers
	accounts     SocialAccounts
	repo         auth.RepositoryManager
	tokenService auth.TokenService
	issuer       string
	logger       auth.Logger
}

// NewIdentityResolver wires the callback state machine.
func NewIdentityResolver(
	providers Providers,
	accounts SocialAccounts,
	repo auth.RepositoryManager,
	tokenService auth.TokenService,
	issuer string,
	logger auth.Logger,
) *IdentityResolver {
	if issuer == "" {
		issuer = auth.DefaultIssuer
	}
	if logger == nil {
		logger = auth.NewDefaultLogger()
	}

	return &IdentityResolver{
		providers:    providers,
		accounts:     accounts,
		repo:         repo,
		tokenService: tokenService,
		issuer:       issuer,
		logger:       logger,
	}
}

// Resolve runs the full callback flow: exchange the code, fetch the profile,
// and match it against known identities.
func (ir *IdentityResolver) Resolve(ctx context.Context, providerName, code string) (*Resolution, error) {
	if code == "" {
		return nil, ErrMissingCode
	}

	provider, err := ir.providers.Get(providerName)
	if err != nil {
		return nil, err
	}

	token, err := provider.Exchange(ctx, code)
	if err != nil {
		return nil, wrapProviderFailure(ErrTokenExchangeFailed, providerName, err)
	}

	profile, err := provider.UserInfo(ctx, token)
	if err != nil {
		return nil, wrapProviderFailure(ErrUserInfoFailed, providerName, err)
	}

	return ir.Match(ctx, providerName, token.AccessToken, profile)
}

// Match applies the identity matching rules to an already-fetched profile:
// linked account wins, then email, then pending registration.
func (ir *IdentityResolver) Match(ctx context.Context, providerName, providerToken string, profile *Profile) (*Resolution, error) {
	if profile == nil {
		return nil, ErrUserInfoFailed
	}

	socialID := strconv.FormatInt(profile.UID, 10)

	account, err := ir.accounts.FindBySocialID(ctx, providerName, socialID)
	if err == nil {
		return ir.loginLinked(ctx, account, profile)
	}
	if !repository.IsRecordNotFound(err) {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "social account lookup failed")
	}

	if profile.Email != "" {
		user, err := ir.repo.Users().FindUserByEmail(ctx, profile.Email)
		if err == nil {
			return ir.loginByEmail(ctx, user, profile)
		}
		if !repository.IsRecordNotFound(err) {
			return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "user email lookup failed")
		}
	}

	return ir.pendingRegistration(providerName, providerToken, profile)
}

func (ir *IdentityResolver) loginLinked(ctx context.Context, account *SocialAccount, profile *Profile) (*Resolution, error) {
	user, err := ir.repo.Users().FindUserByID(ctx, account.UserID)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			ir.logger.Error("social account points at missing user",
				"provider", account.Provider,
				"social_id", account.SocialID,
				"user_id", account.UserID,
			)
			return nil, ErrOrphanedSocialAccount.Clone().WithMetadata(map[string]any{
				"provider":  account.Provider,
				"social_id": account.SocialID,
				"user_id":   account.UserID,
			})
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "user lookup failed")
	}

	tokens, err := auth.IssueUserTokens(ctx, ir.repo, ir.tokenService, user)
	if err != nil {
		return nil, err
	}

	return &Resolution{
		Kind:    ResolutionLogin,
		User:    user,
		Tokens:  tokens,
		Profile: profile,
	}, nil
}

// loginByEmail logs in a user whose email matches the provider profile. No
// SocialAccount row is written: every later login for this user takes the
// same email branch.
func (ir *IdentityResolver) loginByEmail(ctx context.Context, user *auth.User, profile *Profile) (*Resolution, error) {
	tokens, err := auth.IssueUserTokens(ctx, ir.repo, ir.tokenService, user)
	if err != nil {
		return nil, err
	}

	ir.logger.Info("implicit social login via email match",
		"user_id", user.ID.String(),
		"email", profile.Email,
	)

	return &Resolution{
		Kind:    ResolutionEmailLogin,
		User:    user,
		Tokens:  tokens,
		Profile: profile,
	}, nil
}

func (ir *IdentityResolver) pendingRegistration(providerName, providerToken string, profile *Profile) (*Resolution, error) {
	claims := NewRegisterClaims(ir.issuer, *profile, providerName, providerToken)

	registerToken, err := ir.tokenService.SignClaims(claims)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to sign register token")
	}

	return &Resolution{
		Kind:          ResolutionRegister,
		RegisterToken: registerToken,
		Profile:       profile,
	}, nil
}

func wrapProviderFailure(base *goerrors.Error, providerName string, err error) error {
	clone := base.Clone()
	if clone == nil {
		clone = base
	}
	if err != nil {
		clone.Source = err
	}

	meta := map[string]any{"provider": providerName}
	var perr *ProviderError
	if stderrors.As(err, &perr) && perr != nil {
		for k, v := range perr.Metadata() {
			meta[k] = v
		}
	}

	return clone.WithMetadata(meta)
}
