package social

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/uptrace/bun"

	"github.com/developergarten/garten-auth"
)

var usernameFormat = regexp.MustCompile(`^[a-z0-9-_]+$`)

// RegisterForm is the payload the registration form posts alongside the
// pending-registration cookie.
type RegisterForm struct {
	DisplayName string `json:"display_name" form:"display_name"`
	Username    string `json:"username" form:"username"`
	ShortBio    string `json:"short_bio" form:"short_bio"`
}

// Validate enforces the profile constraints before anything is persisted.
func (f RegisterForm) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.DisplayName, validation.Required, validation.Length(1, 45)),
		validation.Field(&f.Username,
			validation.Required,
			validation.Match(usernameFormat),
			validation.Length(3, 16),
		),
		validation.Field(&f.ShortBio, validation.Length(0, 140)),
	)
}

// ProvisionResult is the materialized account a finished registration yields.
type ProvisionResult struct {
	User    *auth.User        `json:"user"`
	Profile *auth.UserProfile `json:"profile"`
	Tokens  *auth.TokenPair   `json:"tokens"`
}

// AccountProvisioner consumes a pending-registration token plus the form
// payload and creates the account rows in one unit of work.
type AccountProvisioner struct {
	repo         auth.RepositoryManager
	accounts     SocialAccounts
	tokenService auth.TokenService
	logger       auth.Logger
}

// NewAccountProvisioner wires the registration finalizer.
func NewAccountProvisioner(
	repo auth.RepositoryManager,
	accounts SocialAccounts,
	tokenService auth.TokenService,
	logger auth.Logger,
) *AccountProvisioner {
	if logger == nil {
		logger = auth.NewDefaultLogger()
	}

	return &AccountProvisioner{
		repo:         repo,
		accounts:     accounts,
		tokenService: tokenService,
		logger:       logger,
	}
}

// Provision validates, checks for collisions, and creates User, SocialAccount,
// UserProfile, and UserMeta atomically. Validation and decoding happen before
// any write; a rollback leaves no partial account behind.
func (p *AccountProvisioner) Provision(ctx context.Context, registerToken string, form RegisterForm) (*ProvisionResult, error) {
	if registerToken == "" {
		return nil, ErrMissingRegisterToken
	}

	if err := form.Validate(); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid registration payload").
			WithCode(goerrors.CodeBadRequest)
	}

	claims := &RegisterClaims{}
	if err := p.tokenService.Decode(registerToken, claims, auth.SubjectRegisterToken); err != nil {
		invalid := ErrInvalidRegisterToken.Clone()
		invalid.Source = err
		return nil, invalid
	}

	email := claims.Profile.Email

	if existing, err := p.repo.Users().FindConflicting(ctx, form.Username, email); err == nil {
		return nil, NewConflictError(conflictFieldFor(existing, email))
	} else if !repository.IsRecordNotFound(err) {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "conflict check failed")
	}

	var user *auth.User
	var profile *auth.UserProfile

	err := p.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		// every social registration starts certified, email or not
		record := &auth.User{
			Username:    form.Username,
			IsCertified: true,
		}
		if email != "" {
			record.Email = &email
			// deterministic id keeps re-imports of the same identity stable
			if id, err := hashid.NewUUID(email); err == nil {
				record.ID = id
			}
		}

		created, err := p.repo.Users().CreateTx(ctx, tx, record)
		if err != nil {
			return err
		}
		user = created

		account := &SocialAccount{
			UserID:      created.ID.String(),
			Provider:    claims.Provider,
			SocialID:    strconv.FormatInt(claims.Profile.UID, 10),
			AccessToken: claims.AccessToken,
		}
		if _, err := p.accounts.CreateTx(ctx, tx, account); err != nil {
			return err
		}

		profileRecord := &auth.UserProfile{
			DisplayName: form.DisplayName,
			ShortBio:    form.ShortBio,
			UserID:      created.ID,
		}
		if claims.Profile.Thumbnail != "" {
			thumbnail := claims.Profile.Thumbnail
			profileRecord.Thumbnail = &thumbnail
		}

		profile, err = p.repo.UserProfiles().CreateTx(ctx, tx, profileRecord)
		if err != nil {
			return err
		}

		_, err = p.repo.UserMetas().CreateTx(ctx, tx, &auth.UserMeta{
			UserID: created.ID,
		})
		return err
	})
	if err != nil {
		// a concurrent registration can slip past the pre-check; the unique
		// constraints surface it here and it maps to the same conflict
		if isUniqueViolation(err) {
			return nil, p.writeTimeConflict(ctx, form.Username, email)
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to provision account")
	}

	tokens, err := auth.IssueUserTokens(ctx, p.repo, p.tokenService, user)
	if err != nil {
		return nil, err
	}

	p.logger.Info("provisioned social account",
		"user_id", user.ID.String(),
		"username", user.Username,
		"provider", claims.Provider,
	)

	return &ProvisionResult{
		User:    user,
		Profile: profile,
		Tokens:  tokens,
	}, nil
}

func (p *AccountProvisioner) writeTimeConflict(ctx context.Context, username, email string) error {
	if existing, err := p.repo.Users().FindConflicting(ctx, username, email); err == nil {
		return NewConflictError(conflictFieldFor(existing, email))
	}
	return NewConflictError("username")
}

// conflictFieldFor names the colliding field the way clients expect: "email"
// when the existing row holds the incoming email, "username" otherwise.
func conflictFieldFor(existing *auth.User, email string) string {
	if existing != nil && email != "" && existing.EmailString() == email {
		return "email"
	}
	return "username"
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint") ||
		strings.Contains(msg, "duplicate key")
}
