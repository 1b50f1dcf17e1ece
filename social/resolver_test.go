package social_test

import (
	"context"
	stderrors "errors"
	"strconv"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/developergarten/garten-auth"
	"github.com/developergarten/garten-auth/social"
)

func githubProfile() *social.Profile {
	return &social.Profile{
		UID:       7919,
		Email:     "octo@example.com",
		Thumbnail: "https://avatars.test/u/7919",
		Name:      "Octo Cat",
		Username:  "octocat",
	}
}

func TestResolveLinkedAccountLogsIn(t *testing.T) {
	f := setupSocialFixture(t)
	ctx := context.Background()

	profile := githubProfile()
	user := f.seedUser(t, "octocat", "octo@example.com")
	f.linkAccount(t, user, social.ProviderGithub, strconv.FormatInt(profile.UID, 10))

	resolver := f.resolver(testProviders(githubFake(profile)))

	resolution, err := resolver.Resolve(ctx, social.ProviderGithub, "auth-code")
	require.NoError(t, err)

	assert.Equal(t, social.ResolutionLogin, resolution.Kind)
	assert.True(t, resolution.LoggedIn())
	require.NotNil(t, resolution.User)
	assert.Equal(t, user.ID, resolution.User.ID)

	require.NotNil(t, resolution.Tokens)
	access, err := f.ts.DecodeAccess(resolution.Tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID.String(), access.UserID)
}

func TestResolveEmailMatchLogsInWithoutLinking(t *testing.T) {
	f := setupSocialFixture(t)
	ctx := context.Background()

	profile := githubProfile()
	user := f.seedUser(t, "someone-else", "octo@example.com")

	resolver := f.resolver(testProviders(githubFake(profile)))

	resolution, err := resolver.Resolve(ctx, social.ProviderGithub, "auth-code")
	require.NoError(t, err)

	assert.Equal(t, social.ResolutionEmailLogin, resolution.Kind)
	assert.True(t, resolution.LoggedIn())
	require.NotNil(t, resolution.User)
	assert.Equal(t, user.ID, resolution.User.ID)
	require.NotNil(t, resolution.Tokens)

	// the email match must not write a social account link
	_, err = f.stores.SocialAccounts.FindBySocialID(ctx, social.ProviderGithub, strconv.FormatInt(profile.UID, 10))
	require.Error(t, err, "email login leaves no social account behind")
}

func TestResolveUnknownIdentityParksRegistration(t *testing.T) {
	f := setupSocialFixture(t)
	ctx := context.Background()

	profile := githubProfile()
	resolver := f.resolver(testProviders(githubFake(profile)))

	resolution, err := resolver.Resolve(ctx, social.ProviderGithub, "auth-code")
	require.NoError(t, err)

	assert.Equal(t, social.ResolutionRegister, resolution.Kind)
	assert.False(t, resolution.LoggedIn())
	assert.Nil(t, resolution.User)
	assert.Nil(t, resolution.Tokens)
	require.NotEmpty(t, resolution.RegisterToken)

	claims := &social.RegisterClaims{}
	require.NoError(t, f.ts.Decode(resolution.RegisterToken, claims, auth.SubjectRegisterToken))
	assert.Equal(t, auth.SubjectRegisterToken, claims.Subject)
	assert.Equal(t, *profile, claims.Profile)
	assert.Equal(t, social.ProviderGithub, claims.Provider)
	assert.Equal(t, "gho_test", claims.AccessToken)
}

func TestResolveProfileWithoutEmailSkipsEmailMatch(t *testing.T) {
	f := setupSocialFixture(t)

	profile := githubProfile()
	profile.Email = ""

	// an existing user cannot be matched without an email
	f.seedUser(t, "octocat", "octo@example.com")

	resolver := f.resolver(testProviders(githubFake(profile)))

	resolution, err := resolver.Resolve(context.Background(), social.ProviderGithub, "auth-code")
	require.NoError(t, err)
	assert.Equal(t, social.ResolutionRegister, resolution.Kind)
}

func TestResolveMissingCode(t *testing.T) {
	f := setupSocialFixture(t)
	resolver := f.resolver(testProviders(githubFake(githubProfile())))

	_, err := resolver.Resolve(context.Background(), social.ProviderGithub, "")
	assert.ErrorIs(t, err, social.ErrMissingCode)
}

func TestResolveUnsupportedProvider(t *testing.T) {
	f := setupSocialFixture(t)
	resolver := f.resolver(testProviders(githubFake(githubProfile())))

	_, err := resolver.Resolve(context.Background(), "myspace", "auth-code")
	assert.ErrorIs(t, err, social.ErrProviderNotSupported)
}

func TestResolveExchangeFailure(t *testing.T) {
	f := setupSocialFixture(t)

	provider := githubFake(githubProfile())
	provider.exchangeErr = stderrors.New("upstream said no")

	resolver := f.resolver(testProviders(provider))

	_, err := resolver.Resolve(context.Background(), social.ProviderGithub, "auth-code")
	require.Error(t, err)

	var rich *goerrors.Error
	require.True(t, stderrors.As(err, &rich))
	assert.Equal(t, social.TextCodeTokenExchangeFail, rich.TextCode)
	assert.Equal(t, social.ProviderGithub, rich.Metadata["provider"])
}

func TestResolveUserInfoFailure(t *testing.T) {
	f := setupSocialFixture(t)

	provider := githubFake(githubProfile())
	provider.userInfoErr = stderrors.New("profile unavailable")

	resolver := f.resolver(testProviders(provider))

	_, err := resolver.Resolve(context.Background(), social.ProviderGithub, "auth-code")
	require.Error(t, err)

	var rich *goerrors.Error
	require.True(t, stderrors.As(err, &rich))
	assert.Equal(t, social.TextCodeUserInfoFail, rich.TextCode)
}

func TestResolveOrphanedAccount(t *testing.T) {
	f := setupSocialFixture(t)
	ctx := context.Background()

	profile := githubProfile()
	user := f.seedUser(t, "octocat", "octo@example.com")
	f.linkAccount(t, user, social.ProviderGithub, strconv.FormatInt(profile.UID, 10))

	// simulate corruption: drop the user while keeping the link row
	_, err := f.db.Exec("PRAGMA foreign_keys = OFF;")
	require.NoError(t, err)
	_, err = f.db.Exec("DELETE FROM users WHERE id = ?", user.ID.String())
	require.NoError(t, err)

	resolver := f.resolver(testProviders(githubFake(profile)))

	_, err = resolver.Resolve(ctx, social.ProviderGithub, "auth-code")
	require.Error(t, err)

	var rich *goerrors.Error
	require.True(t, stderrors.As(err, &rich))
	assert.Equal(t, social.TextCodeOrphanedAccount, rich.TextCode)
}

func TestMatchNilProfile(t *testing.T) {
	f := setupSocialFixture(t)
	resolver := f.resolver(testProviders(githubFake(nil)))

	_, err := resolver.Match(context.Background(), social.ProviderGithub, "gho_test", nil)
	assert.ErrorIs(t, err, social.ErrUserInfoFailed)
}
