package repository

import (
	"errors"

	"github.com/uptrace/bun"

	"github.com/developergarten/garten-auth"
	"github.com/developergarten/garten-auth/social"
)

// Stores bundles the persistence layer built over one bun handle: the core
// repository manager plus the social account store.
type Stores struct {
	Manager        auth.RepositoryManager
	SocialAccounts social.SocialAccounts
}

// NewStores assembles and validates the full persistence layer.
func NewStores(db *bun.DB) (*Stores, error) {
	if db == nil {
		return nil, errors.New("stores require a database handle")
	}

	manager := auth.NewRepositoryManager(db)
	if err := manager.Validate(); err != nil {
		return nil, err
	}

	return &Stores{
		Manager:        manager,
		SocialAccounts: NewSocialAccountRepository(db),
	}, nil
}
