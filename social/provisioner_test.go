package social_test

import (
	"context"
	stderrors "errors"
	"strconv"
	"strings"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/developergarten/garten-auth"
	"github.com/developergarten/garten-auth/social"
)

func registerToken(t *testing.T, f *socialFixture, profile *social.Profile) string {
	t.Helper()

	claims := social.NewRegisterClaims(auth.DefaultIssuer, *profile, social.ProviderGithub, "gho_test")
	token, err := f.ts.SignClaims(claims)
	require.NoError(t, err)
	return token
}

func validForm() social.RegisterForm {
	return social.RegisterForm{
		DisplayName: "Octo Cat",
		Username:    "octocat",
		ShortBio:    "eight arms, one keyboard",
	}
}

func (f *socialFixture) countRows(t *testing.T, table string) int {
	t.Helper()

	var count int
	err := f.db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&count)
	require.NoError(t, err)
	return count
}

func TestProvisionCreatesAccount(t *testing.T) {
	f := setupSocialFixture(t)
	ctx := context.Background()

	profile := githubProfile()
	token := registerToken(t, f, profile)

	result, err := f.provisioner().Provision(ctx, token, validForm())
	require.NoError(t, err)

	require.NotNil(t, result.User)
	assert.Equal(t, "octocat", result.User.Username)
	assert.Equal(t, "octo@example.com", result.User.EmailString())
	assert.True(t, result.User.IsCertified)

	require.NotNil(t, result.Profile)
	assert.Equal(t, "Octo Cat", result.Profile.DisplayName)
	assert.Equal(t, "eight arms, one keyboard", result.Profile.ShortBio)
	require.NotNil(t, result.Profile.Thumbnail)
	assert.Equal(t, profile.Thumbnail, *result.Profile.Thumbnail)
	assert.Equal(t, result.User.ID, result.Profile.UserID)

	require.NotNil(t, result.Tokens)
	access, err := f.ts.DecodeAccess(result.Tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, result.User.ID.String(), access.UserID)

	account, err := f.stores.SocialAccounts.FindBySocialID(ctx, social.ProviderGithub, strconv.FormatInt(profile.UID, 10))
	require.NoError(t, err)
	assert.Equal(t, result.User.ID.String(), account.UserID)
	assert.Equal(t, "gho_test", account.AccessToken)

	assert.Equal(t, 1, f.countRows(t, "user_metas"))
}

func TestProvisionWithoutEmail(t *testing.T) {
	f := setupSocialFixture(t)

	profile := githubProfile()
	profile.Email = ""
	token := registerToken(t, f, profile)

	result, err := f.provisioner().Provision(context.Background(), token, validForm())
	require.NoError(t, err)

	assert.Nil(t, result.User.Email)
	assert.True(t, result.User.IsCertified, "a social registration is certified even without an email")
}

func TestProvisionMissingToken(t *testing.T) {
	f := setupSocialFixture(t)

	_, err := f.provisioner().Provision(context.Background(), "", validForm())
	assert.ErrorIs(t, err, social.ErrMissingRegisterToken)
}

func TestProvisionInvalidToken(t *testing.T) {
	f := setupSocialFixture(t)

	_, err := f.provisioner().Provision(context.Background(), "not-a-token", validForm())
	require.Error(t, err)

	var rich *goerrors.Error
	require.True(t, stderrors.As(err, &rich))
	assert.Equal(t, social.TextCodeInvalidRegisterToken, rich.TextCode)
}

func TestProvisionRejectsForeignSubjectToken(t *testing.T) {
	f := setupSocialFixture(t)
	user := f.seedUser(t, "resident", "resident@example.com")

	// a session token presented as the registration credential must not
	// decode into pending-registration claims
	access, err := f.ts.NewAccessToken(user.ID.String())
	require.NoError(t, err)

	_, err = f.provisioner().Provision(context.Background(), access, validForm())
	require.Error(t, err)

	var rich *goerrors.Error
	require.True(t, stderrors.As(err, &rich))
	assert.Equal(t, social.TextCodeInvalidRegisterToken, rich.TextCode)
	assert.Equal(t, 1, f.countRows(t, "users"))
}

func TestProvisionValidatesBeforeTokenDecode(t *testing.T) {
	f := setupSocialFixture(t)

	form := validForm()
	form.Username = "ab"

	// a broken form wins over a broken token
	_, err := f.provisioner().Provision(context.Background(), "not-a-token", form)
	require.Error(t, err)

	var rich *goerrors.Error
	require.True(t, stderrors.As(err, &rich))
	assert.Equal(t, goerrors.CategoryValidation, rich.Category)
}

func TestProvisionValidation(t *testing.T) {
	f := setupSocialFixture(t)
	ctx := context.Background()
	token := registerToken(t, f, githubProfile())

	tests := []struct {
		name   string
		mutate func(*social.RegisterForm)
	}{
		{
			name:   "display name required",
			mutate: func(form *social.RegisterForm) { form.DisplayName = "" },
		},
		{
			name:   "display name too long",
			mutate: func(form *social.RegisterForm) { form.DisplayName = strings.Repeat("a", 46) },
		},
		{
			name:   "username too short",
			mutate: func(form *social.RegisterForm) { form.Username = "ab" },
		},
		{
			name:   "username too long",
			mutate: func(form *social.RegisterForm) { form.Username = strings.Repeat("a", 17) },
		},
		{
			name:   "username bad characters",
			mutate: func(form *social.RegisterForm) { form.Username = "Octo Cat" },
		},
		{
			name:   "bio too long",
			mutate: func(form *social.RegisterForm) { form.ShortBio = strings.Repeat("b", 141) },
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			form := validForm()
			tc.mutate(&form)

			_, err := f.provisioner().Provision(ctx, token, form)
			require.Error(t, err)

			var rich *goerrors.Error
			require.True(t, stderrors.As(err, &rich))
			assert.Equal(t, goerrors.CategoryValidation, rich.Category)
			assert.Equal(t, goerrors.CodeBadRequest, rich.Code)
		})
	}

	assert.Equal(t, 0, f.countRows(t, "users"), "validation failures must not write")
}

func TestProvisionUsernameConflict(t *testing.T) {
	f := setupSocialFixture(t)

	f.seedUser(t, "octocat", "someone-else@example.com")
	token := registerToken(t, f, githubProfile())

	_, err := f.provisioner().Provision(context.Background(), token, validForm())
	require.Error(t, err)
	assert.Equal(t, "username", social.ConflictField(err))
}

func TestProvisionEmailConflict(t *testing.T) {
	f := setupSocialFixture(t)

	f.seedUser(t, "different-name", "octo@example.com")
	token := registerToken(t, f, githubProfile())

	form := validForm()
	form.Username = "freshname"

	_, err := f.provisioner().Provision(context.Background(), token, form)
	require.Error(t, err)
	assert.Equal(t, "email", social.ConflictField(err))
}

func TestProvisionRollsBackOnWriteFailure(t *testing.T) {
	f := setupSocialFixture(t)
	ctx := context.Background()

	profile := githubProfile()

	// occupy the provider identity so the social account insert collides
	squatter := f.seedUser(t, "squatter", "")
	f.linkAccount(t, squatter, social.ProviderGithub, strconv.FormatInt(profile.UID, 10))

	token := registerToken(t, f, profile)
	form := validForm()
	form.Username = "freshname"

	_, err := f.provisioner().Provision(ctx, token, form)
	require.Error(t, err)

	// the user row written before the collision must be rolled back
	assert.Equal(t, 1, f.countRows(t, "users"))
	assert.Equal(t, 0, f.countRows(t, "user_profiles"))
	assert.Equal(t, 0, f.countRows(t, "user_metas"))
}
