package repository

import (
	"context"
	"time"

	repo "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/developergarten/garten-auth/social"
)

// SocialAccountModel is the Bun model for social account links.
type SocialAccountModel struct {
	bun.BaseModel `bun:"table:social_accounts,alias:sac"`

	ID          uuid.UUID  `bun:"id,pk,nullzero,type:uuid"`
	UserID      uuid.UUID  `bun:"fk_user_id,notnull,type:uuid"`
	Provider    string     `bun:"provider,notnull"`
	SocialID    string     `bun:"social_id,notnull"`
	AccessToken string     `bun:"access_token"`
	CreatedAt   *time.Time `bun:"created_at,nullzero,default:current_timestamp"`
	UpdatedAt   *time.Time `bun:"updated_at,nullzero,default:current_timestamp"`
}

// SocialAccountRepository implements social.SocialAccounts using Bun.
type SocialAccountRepository struct {
	db *bun.DB
}

var _ social.SocialAccounts = (*SocialAccountRepository)(nil)

// NewSocialAccountRepository creates a new repository.
func NewSocialAccountRepository(db *bun.DB) *SocialAccountRepository {
	return &SocialAccountRepository{db: db}
}

// FindBySocialID implements social.SocialAccounts.
func (r *SocialAccountRepository) FindBySocialID(ctx context.Context, provider, socialID string) (*social.SocialAccount, error) {
	model := &SocialAccountModel{}
	err := r.db.NewSelect().
		Model(model).
		Where("provider = ? AND social_id = ?", provider, socialID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if repo.IsRecordNotFound(err) {
			return nil, repo.NewRecordNotFound().WithMetadata(map[string]any{
				"provider":  provider,
				"social_id": socialID,
			})
		}
		return nil, err
	}

	return r.toSocialAccount(model), nil
}

// Create implements social.SocialAccounts.
func (r *SocialAccountRepository) Create(ctx context.Context, account *social.SocialAccount) (*social.SocialAccount, error) {
	return r.CreateTx(ctx, r.db, account)
}

// CreateTx implements social.SocialAccounts, writing through the caller's
// transaction handle.
func (r *SocialAccountRepository) CreateTx(ctx context.Context, tx bun.IDB, account *social.SocialAccount) (*social.SocialAccount, error) {
	model := r.fromSocialAccount(account)

	if _, err := tx.NewInsert().Model(model).Exec(ctx); err != nil {
		return nil, err
	}

	return r.toSocialAccount(model), nil
}

func (r *SocialAccountRepository) toSocialAccount(m *SocialAccountModel) *social.SocialAccount {
	if m == nil {
		return nil
	}

	account := &social.SocialAccount{
		ID:          m.ID.String(),
		UserID:      m.UserID.String(),
		Provider:    m.Provider,
		SocialID:    m.SocialID,
		AccessToken: m.AccessToken,
	}
	if m.CreatedAt != nil {
		account.CreatedAt = *m.CreatedAt
	}
	if m.UpdatedAt != nil {
		account.UpdatedAt = *m.UpdatedAt
	}

	return account
}

func (r *SocialAccountRepository) fromSocialAccount(a *social.SocialAccount) *SocialAccountModel {
	model := &SocialAccountModel{}
	if a == nil {
		model.ID = uuid.New()
		return model
	}

	if a.ID != "" {
		if parsed, err := uuid.Parse(a.ID); err == nil {
			model.ID = parsed
		}
	}
	if model.ID == uuid.Nil {
		model.ID = uuid.New()
	}

	if a.UserID != "" {
		if parsed, err := uuid.Parse(a.UserID); err == nil {
			model.UserID = parsed
		}
	}

	model.Provider = a.Provider
	model.SocialID = a.SocialID
	model.AccessToken = a.AccessToken

	return model
}
