package auth

import (
	"context"
	"database/sql"
	"errors"
	"log"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// RepositoryManager exposes all repositories the auth core writes through,
// plus the transaction boundary used by provisioning.
type RepositoryManager interface {
	repository.Validator
	repository.TransactionManager
	Users() Users
	UserProfiles() repository.Repository[*UserProfile]
	UserMetas() repository.Repository[*UserMeta]
	AuthTokens() AuthTokens
}

func NewUserProfilesRepository(db *bun.DB) repository.Repository[*UserProfile] {
	handlers := repository.ModelHandlers[*UserProfile]{
		NewRecord: func() *UserProfile {
			return &UserProfile{}
		},
		GetID: func(record *UserProfile) uuid.UUID {
			if record == nil {
				return uuid.Nil
			}
			return record.ID
		},
		SetID: func(record *UserProfile, id uuid.UUID) {
			record.ID = id
		},
		GetIdentifier: func() string {
			return "fk_user_id"
		},
	}
	return repository.NewRepository(db, handlers)
}

func NewUserMetasRepository(db *bun.DB) repository.Repository[*UserMeta] {
	handlers := repository.ModelHandlers[*UserMeta]{
		NewRecord: func() *UserMeta {
			return &UserMeta{}
		},
		GetID: func(record *UserMeta) uuid.UUID {
			if record == nil {
				return uuid.Nil
			}
			return record.ID
		},
		SetID: func(record *UserMeta, id uuid.UUID) {
			record.ID = id
		},
		GetIdentifier: func() string {
			return "fk_user_id"
		},
	}
	return repository.NewRepository(db, handlers)
}

type mngr struct {
	db           *bun.DB
	users        Users
	userProfiles repository.Repository[*UserProfile]
	userMetas    repository.Repository[*UserMeta]
	authTokens   AuthTokens
}

func NewRepositoryManager(db *bun.DB) RepositoryManager {
	return &mngr{
		db:           db,
		users:        NewUsersRepository(db),
		userProfiles: NewUserProfilesRepository(db),
		userMetas:    NewUserMetasRepository(db),
		authTokens:   NewAuthTokensRepository(db),
	}
}

func (m mngr) Validate() error {
	if m.users == nil {
		return errors.New("repository users should be initialized")
	}

	if m.userProfiles == nil {
		return errors.New("repository userProfiles should be initialized")
	}

	if m.userMetas == nil {
		return errors.New("repository userMetas should be initialized")
	}

	if m.authTokens == nil {
		return errors.New("repository authTokens should be initialized")
	}

	return nil
}

func (m mngr) MustValidate() {
	if err := m.Validate(); err != nil {
		log.Panic(err)
	}
}

func (m mngr) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return m.db.RunInTx(ctx, opts, f)
	}
}

func (m mngr) Users() Users {
	return m.users
}

func (m mngr) UserProfiles() repository.Repository[*UserProfile] {
	return m.userProfiles
}

func (m mngr) UserMetas() repository.Repository[*UserMeta] {
	return m.userMetas
}

func (m mngr) AuthTokens() AuthTokens {
	return m.authTokens
}
