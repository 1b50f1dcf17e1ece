package social_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"github.com/developergarten/garten-auth"
	"github.com/developergarten/garten-auth/repository"
	"github.com/developergarten/garten-auth/social"

	_ "github.com/mattn/go-sqlite3"
)

const (
	createUsersTable = `CREATE TABLE users (
    id TEXT NOT NULL PRIMARY KEY,
    username TEXT NOT NULL UNIQUE,
    email TEXT UNIQUE,
    is_certified BOOLEAN NOT NULL DEFAULT 0,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);`
	createUserProfilesTable = `CREATE TABLE user_profiles (
    id TEXT NOT NULL PRIMARY KEY,
    display_name TEXT NOT NULL,
    short_bio TEXT,
    thumbnail TEXT,
    fk_user_id TEXT NOT NULL UNIQUE,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    FOREIGN KEY (fk_user_id) REFERENCES users (id) ON DELETE CASCADE
);`
	createUserMetasTable = `CREATE TABLE user_metas (
    id TEXT NOT NULL PRIMARY KEY,
    fk_user_id TEXT NOT NULL UNIQUE,
    email_notification BOOLEAN NOT NULL DEFAULT 0,
    email_promotion BOOLEAN NOT NULL DEFAULT 0,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    FOREIGN KEY (fk_user_id) REFERENCES users (id) ON DELETE CASCADE
);`
	createAuthTokensTable = `CREATE TABLE auth_tokens (
    id TEXT NOT NULL PRIMARY KEY,
    fk_user_id TEXT NOT NULL,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    FOREIGN KEY (fk_user_id) REFERENCES users (id) ON DELETE CASCADE
);`
	createSocialAccountsTable = `CREATE TABLE social_accounts (
    id TEXT NOT NULL PRIMARY KEY,
    fk_user_id TEXT NOT NULL,
    provider TEXT NOT NULL,
    social_id TEXT NOT NULL,
    access_token TEXT,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    FOREIGN KEY (fk_user_id) REFERENCES users (id) ON DELETE CASCADE,
    CONSTRAINT uq_social_accounts_provider_social_id UNIQUE (provider, social_id)
);`
)

// socialFixture bundles the persistence layer and token service the social
// flows run against in tests.
type socialFixture struct {
	db     *bun.DB
	stores *repository.Stores
	ts     auth.TokenService
}

func setupSocialFixture(t *testing.T) *socialFixture {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)

	bunDB := bun.NewDB(db, sqlitedialect.New())

	_, err = bunDB.Exec("PRAGMA foreign_keys = ON;")
	require.NoError(t, err)

	for _, ddl := range []string{
		createUsersTable,
		createUserProfilesTable,
		createUserMetasTable,
		createAuthTokensTable,
		createSocialAccountsTable,
	} {
		_, err = bunDB.Exec(ddl)
		require.NoError(t, err)
	}

	t.Cleanup(func() {
		_ = bunDB.Close()
		_ = db.Close()
	})

	stores, err := repository.NewStores(bunDB)
	require.NoError(t, err)

	return &socialFixture{
		db:     bunDB,
		stores: stores,
		ts:     auth.NewTokenService([]byte("social-test-key"), auth.DefaultIssuer, nil),
	}
}

func (f *socialFixture) seedUser(t *testing.T, username, email string) *auth.User {
	t.Helper()

	record := &auth.User{Username: username}
	if email != "" {
		record.Email = &email
	}

	created, err := f.stores.Manager.Users().Create(context.Background(), record)
	require.NoError(t, err)
	return created
}

func (f *socialFixture) linkAccount(t *testing.T, user *auth.User, provider, socialID string) *social.SocialAccount {
	t.Helper()

	account, err := f.stores.SocialAccounts.Create(context.Background(), &social.SocialAccount{
		UserID:   user.ID.String(),
		Provider: provider,
		SocialID: socialID,
	})
	require.NoError(t, err)
	return account
}

func (f *socialFixture) resolver(providers social.Providers) *social.IdentityResolver {
	return social.NewIdentityResolver(
		providers,
		f.stores.SocialAccounts,
		f.stores.Manager,
		f.ts,
		auth.DefaultIssuer,
		nil,
	)
}

func (f *socialFixture) provisioner() *social.AccountProvisioner {
	return social.NewAccountProvisioner(f.stores.Manager, f.stores.SocialAccounts, f.ts, nil)
}

// fakeProvider scripts the provider side of the callback flow.
type fakeProvider struct {
	name        string
	authBase    string
	token       *social.Token
	profile     *social.Profile
	exchangeErr error
	userInfoErr error
	lastCode    string
}

func (p *fakeProvider) Name() string {
	return p.name
}

func (p *fakeProvider) AuthCodeURL(next string) string {
	return p.authBase + "?next=" + next
}

func (p *fakeProvider) Exchange(ctx context.Context, code string) (*social.Token, error) {
	p.lastCode = code
	if p.exchangeErr != nil {
		return nil, p.exchangeErr
	}
	return p.token, nil
}

func (p *fakeProvider) UserInfo(ctx context.Context, token *social.Token) (*social.Profile, error) {
	if p.userInfoErr != nil {
		return nil, p.userInfoErr
	}
	return p.profile, nil
}

func githubFake(profile *social.Profile) *fakeProvider {
	return &fakeProvider{
		name:     social.ProviderGithub,
		authBase: "https://github.test/authorize",
		token:    &social.Token{AccessToken: "gho_test"},
		profile:  profile,
	}
}

func testProviders(p social.Provider) social.Providers {
	return social.Providers{p.Name(): p}
}
