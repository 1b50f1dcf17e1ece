package auth

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
)

// TokenPair is the credential set a login or rotation hands back.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// IssueUserTokens mints a full fresh pair for a user: a new AuthToken issuance
// row, a 30d refresh token bound to it, and a 1h access token. Used by every
// login path (OAuth uid match, email match, and finished registration).
func IssueUserTokens(ctx context.Context, repo RepositoryManager, ts TokenService, user *User) (*TokenPair, error) {
	if user == nil {
		return nil, ErrIdentityNotFound
	}

	record, err := repo.AuthTokens().Mint(ctx, user.ID)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to record token issuance")
	}

	refreshToken, err := ts.NewRefreshToken(user.ID.String(), record.ID.String())
	if err != nil {
		return nil, err
	}

	accessToken, err := ts.NewAccessToken(user.ID.String())
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// RotationResult carries the outcome of a successful refresh consumption.
type RotationResult struct {
	UserID string
	Tokens TokenPair
	// RefreshRenewed is true when the refresh token string itself changed.
	RefreshRenewed bool
}

// TokenRotator implements the refresh protocol: a valid, non-revoked refresh
// token always yields a fresh access token, and a new refresh token when the
// old one has less than the renewal threshold left.
type TokenRotator struct {
	repo         RepositoryManager
	tokenService TokenService
	logger       Logger
	now          func() time.Time
}

// NewTokenRotator wires the rotation protocol against the given stores.
func NewTokenRotator(repo RepositoryManager, ts TokenService, logger Logger) *TokenRotator {
	if logger == nil {
		logger = defLogger{}
	}
	return &TokenRotator{
		repo:         repo,
		tokenService: ts,
		logger:       logger,
		now:          time.Now,
	}
}

// WithClock overrides the rotation clock, used by tests to pin boundaries.
func (r *TokenRotator) WithClock(now func() time.Time) *TokenRotator {
	if now != nil {
		r.now = now
	}
	return r
}

// Rotate consumes a refresh token and mints replacement credentials.
func (r *TokenRotator) Rotate(ctx context.Context, refreshToken string) (*RotationResult, error) {
	claims, err := r.tokenService.DecodeRefresh(refreshToken)
	if err != nil {
		return nil, err
	}

	user, err := r.repo.Users().FindUserByID(ctx, claims.UserID)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, ErrIdentityNotFound
		}
		return nil, err
	}

	live, err := r.repo.AuthTokens().Exists(ctx, claims.TokenID)
	if err != nil {
		return nil, err
	}
	if !live {
		r.logger.Warn("rotation rejected, token issuance revoked", "token_id", claims.TokenID)
		return nil, ErrTokenRevoked
	}

	result := &RotationResult{
		UserID: user.ID.String(),
		Tokens: TokenPair{RefreshToken: refreshToken},
	}

	// renew the refresh token itself only when it is past the threshold,
	// keeping the same token_id so the issuance record stays the anchor
	if claims.RemainingLife(r.now()) < RefreshRenewThreshold {
		renewed, err := r.tokenService.NewRefreshToken(user.ID.String(), claims.TokenID)
		if err != nil {
			return nil, err
		}
		result.Tokens.RefreshToken = renewed
		result.RefreshRenewed = true
	}

	accessToken, err := r.tokenService.NewAccessToken(user.ID.String())
	if err != nil {
		return nil, err
	}
	result.Tokens.AccessToken = accessToken

	return result, nil
}
