package auth

import (
	"context"
	"strings"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// AuthTokens tracks refresh token issuances. A refresh token is honored only
// while its row exists; deleting rows is how sessions get revoked.
type AuthTokens interface {
	repository.Repository[*AuthToken]

	Mint(ctx context.Context, userID uuid.UUID) (*AuthToken, error)
	MintTx(ctx context.Context, tx bun.IDB, userID uuid.UUID) (*AuthToken, error)
	Exists(ctx context.Context, tokenID string) (bool, error)
	Revoke(ctx context.Context, tokenID string) error
}

type authTokens struct {
	repository.Repository[*AuthToken]
	db *bun.DB
}

var _ AuthTokens = (*authTokens)(nil)

func NewAuthTokensRepository(db *bun.DB) AuthTokens {
	repo := repository.NewRepository[*AuthToken](db, repository.ModelHandlers[*AuthToken]{
		NewRecord: func() *AuthToken { return &AuthToken{} },
		GetID: func(t *AuthToken) uuid.UUID {
			if t == nil {
				return uuid.Nil
			}
			return t.ID
		},
		SetID: func(t *AuthToken, id uuid.UUID) {
			if t != nil {
				t.ID = id
			}
		},
	})

	return &authTokens{
		Repository: repo,
		db:         db,
	}
}

// Mint creates the issuance record whose ID rides in a refresh token.
func (a *authTokens) Mint(ctx context.Context, userID uuid.UUID) (*AuthToken, error) {
	return a.MintTx(ctx, a.db, userID)
}

func (a *authTokens) MintTx(ctx context.Context, tx bun.IDB, userID uuid.UUID) (*AuthToken, error) {
	record := &AuthToken{
		ID:     uuid.New(),
		UserID: userID,
	}
	return a.Repository.CreateTx(ctx, tx, record)
}

// Exists reports whether the issuance behind a token_id claim is still live.
func (a *authTokens) Exists(ctx context.Context, tokenID string) (bool, error) {
	id, err := uuid.Parse(strings.TrimSpace(tokenID))
	if err != nil {
		return false, nil
	}

	count, err := a.db.NewSelect().
		Model((*AuthToken)(nil)).
		Where("?TableAlias.id = ?", id).
		Count(ctx)
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

// Revoke deletes the issuance record, invalidating its refresh token.
func (a *authTokens) Revoke(ctx context.Context, tokenID string) error {
	id, err := uuid.Parse(strings.TrimSpace(tokenID))
	if err != nil {
		return nil
	}

	_, err = a.db.NewDelete().
		Model((*AuthToken)(nil)).
		Where("?TableAlias.id = ?", id).
		Exec(ctx)

	return err
}
