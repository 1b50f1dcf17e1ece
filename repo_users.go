package auth

import (
	"context"
	"strings"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Users is the persistence contract the token and social flows need from the
// user table. Tx variants exist so provisioning can run inside one unit of work.
type Users interface {
	repository.Repository[*User]

	FindUserByID(ctx context.Context, id string) (*User, error)
	FindUserByEmail(ctx context.Context, email string) (*User, error)
	FindConflicting(ctx context.Context, username, email string) (*User, error)
	FindConflictingTx(ctx context.Context, tx bun.IDB, username, email string) (*User, error)
	Create(ctx context.Context, record *User, criteria ...repository.InsertCriteria) (*User, error)
	CreateTx(ctx context.Context, tx bun.IDB, record *User, criteria ...repository.InsertCriteria) (*User, error)
}

type users struct {
	repository.Repository[*User]
	db *bun.DB
}

var (
	_ Users                        = (*users)(nil)
	_ repository.Repository[*User] = (*users)(nil)
	_ UserResolver                 = (*users)(nil)
)

func NewUsersRepository(db *bun.DB) Users {
	repo := repository.NewRepository[*User](db, repository.ModelHandlers[*User]{
		NewRecord: func() *User { return &User{} },
		GetID: func(u *User) uuid.UUID {
			if u == nil {
				return uuid.Nil
			}
			return u.ID
		},
		SetID: func(u *User, id uuid.UUID) {
			if u != nil {
				u.ID = id
			}
		},
		GetIdentifier: func() string {
			return "username"
		},
	})

	return &users{
		Repository: repo,
		db:         db,
	}
}

// FindUserByID resolves the user a token's user_id claim points at.
func (a *users) FindUserByID(ctx context.Context, id string) (*User, error) {
	uid, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return nil, repository.NewRecordNotFound().
			WithMetadata(map[string]any{"id": id})
	}

	record := &User{}
	err = a.db.NewSelect().
		Model(record).
		Where("?TableAlias.id = ?", uid).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{"id": id})
		}
		return nil, err
	}

	return record, nil
}

// FindUserByEmail looks up a user by email, used for the implicit link branch
// of the OAuth callback. Rows with NULL email never match.
func (a *users) FindUserByEmail(ctx context.Context, email string) (*User, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, repository.NewRecordNotFound()
	}

	record := &User{}
	err := a.db.NewSelect().
		Model(record).
		Where("?TableAlias.email = ?", email).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{"email": email})
		}
		return nil, err
	}

	return record, nil
}

// FindConflicting returns a user colliding with the given username or email.
// An empty email only matches on username, mirroring the nullable column.
func (a *users) FindConflicting(ctx context.Context, username, email string) (*User, error) {
	return a.FindConflictingTx(ctx, a.db, username, email)
}

func (a *users) FindConflictingTx(ctx context.Context, tx bun.IDB, username, email string) (*User, error) {
	record := &User{}
	q := tx.NewSelect().Model(record)

	if email != "" {
		q = q.WhereGroup(" AND ", func(sq *bun.SelectQuery) *bun.SelectQuery {
			return sq.
				Where("?TableAlias.username = ?", username).
				WhereOr("?TableAlias.email = ?", email)
		})
	} else {
		q = q.Where("?TableAlias.username = ?", username)
	}

	err := q.Limit(1).Scan(ctx)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{
					"username": username,
					"email":    email,
				})
		}
		return nil, err
	}

	return record, nil
}

func (a *users) Create(ctx context.Context, record *User, criteria ...repository.InsertCriteria) (*User, error) {
	return a.CreateTx(ctx, a.db, record, criteria...)
}

func (a *users) CreateTx(ctx context.Context, tx bun.IDB, record *User, criteria ...repository.InsertCriteria) (*User, error) {
	prepareUserDefaults(record)
	return a.Repository.CreateTx(ctx, tx, record, criteria...)
}

func prepareUserDefaults(record *User) {
	if record == nil {
		return
	}

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
}
