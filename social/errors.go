package social

import (
	stderrors "errors"

	errors "github.com/goliatone/go-errors"
)

const (
	TextCodeProviderNotSupported = "social_provider_not_supported"
	TextCodeMissingCode          = "social_missing_code"
	TextCodeTokenExchangeFail    = "social_token_exchange_failed"
	TextCodeUserInfoFail         = "social_user_info_failed"
	TextCodeOrphanedAccount      = "social_orphaned_account"
	TextCodeMissingRegisterToken = "social_missing_register_token"
	TextCodeInvalidRegisterToken = "social_invalid_register_token"
	TextCodeAlreadyExists        = "social_already_exists"
)

// ErrProviderNotSupported is returned when a login link or callback names a
// provider the platform does not federate with.
var ErrProviderNotSupported = errors.New("social provider not supported", errors.CategoryBadInput).
	WithTextCode(TextCodeProviderNotSupported).
	WithCode(errors.CodeBadRequest)

// ErrMissingCode is returned when a provider callback arrives without an
// authorization code.
var ErrMissingCode = errors.New("missing authorization code", errors.CategoryBadInput).
	WithTextCode(TextCodeMissingCode).
	WithCode(errors.CodeBadRequest)

// ErrTokenExchangeFailed is returned when the provider token exchange fails.
var ErrTokenExchangeFailed = errors.New("token exchange failed", errors.CategoryAuth).
	WithTextCode(TextCodeTokenExchangeFail).
	WithCode(errors.CodeUnauthorized)

// ErrUserInfoFailed is returned when fetching the provider profile fails.
var ErrUserInfoFailed = errors.New("failed to fetch user info", errors.CategoryAuth).
	WithTextCode(TextCodeUserInfoFail).
	WithCode(errors.CodeUnauthorized)

// ErrOrphanedSocialAccount is returned when a social account row points at a
// user that no longer exists. This is data corruption, never a login failure.
var ErrOrphanedSocialAccount = errors.New("social account references missing user", errors.CategoryInternal).
	WithTextCode(TextCodeOrphanedAccount).
	WithCode(errors.CodeInternal)

// ErrMissingRegisterToken is returned when registration is attempted without
// the pending-registration cookie.
var ErrMissingRegisterToken = errors.New("missing register token", errors.CategoryAuth).
	WithTextCode(TextCodeMissingRegisterToken).
	WithCode(errors.CodeUnauthorized)

// ErrInvalidRegisterToken is returned when the pending-registration token
// cannot be decoded.
var ErrInvalidRegisterToken = errors.New("invalid register token", errors.CategoryAuth).
	WithTextCode(TextCodeInvalidRegisterToken).
	WithCode(errors.CodeUnauthorized)

// NewConflictError reports a registration collision on the given field,
// "username" or "email". The field rides in the error metadata so the HTTP
// layer can surface it as the conflict payload.
func NewConflictError(field string) *errors.Error {
	return errors.New("user already exists", errors.CategoryConflict).
		WithTextCode(TextCodeAlreadyExists).
		WithCode(errors.CodeConflict).
		WithMetadata(map[string]any{"field": field})
}

// ConflictField extracts the colliding field from a registration conflict
// error, or "" when err is not one.
func ConflictField(err error) string {
	var rich *errors.Error
	if !stderrors.As(err, &rich) {
		return ""
	}
	if rich.TextCode != TextCodeAlreadyExists {
		return ""
	}
	if field, ok := rich.Metadata["field"].(string); ok {
		return field
	}
	return ""
}
