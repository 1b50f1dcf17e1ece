package social

import (
	"context"
	"time"

	"github.com/uptrace/bun"
)

// SocialAccount links a platform user to a provider identity. SocialID is the
// provider-side user id; (Provider, SocialID) is unique.
type SocialAccount struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Provider    string    `json:"provider"`
	SocialID    string    `json:"social_id"`
	AccessToken string    `json:"-"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// SocialAccounts manages social account persistence. CreateTx takes the
// transaction handle so provisioning can write the account in the same unit
// as the user rows.
type SocialAccounts interface {
	FindBySocialID(ctx context.Context, provider, socialID string) (*SocialAccount, error)
	Create(ctx context.Context, account *SocialAccount) (*SocialAccount, error)
	CreateTx(ctx context.Context, tx bun.IDB, account *SocialAccount) (*SocialAccount, error)
}
