package auth

import (
	"errors"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	TextCodeTokenExpired      = "auth_token_expired"
	TextCodeTokenMalformed    = "auth_token_malformed"
	TextCodeMissingSigningKey = "auth_missing_signing_key"
	TextCodeTokenRevoked      = "auth_token_revoked"
)

// ErrTokenExpired is returned when a token's exp claim is in the past.
var ErrTokenExpired = goerrors.New("authentication token expired", goerrors.CategoryAuth).
	WithTextCode(TextCodeTokenExpired).
	WithCode(goerrors.CodeUnauthorized)

// ErrTokenMalformed covers bad signatures, wrong issuers, and undecodable tokens.
var ErrTokenMalformed = goerrors.New("invalid authentication token", goerrors.CategoryAuth).
	WithTextCode(TextCodeTokenMalformed).
	WithCode(goerrors.CodeUnauthorized)

// ErrMissingSigningKey is fatal at startup outside development mode.
var ErrMissingSigningKey = goerrors.New("signing key for tokens is missing", goerrors.CategoryInternal).
	WithTextCode(TextCodeMissingSigningKey).
	WithCode(goerrors.CodeInternal)

// ErrTokenRevoked is returned when a refresh token's issuance record no longer exists.
var ErrTokenRevoked = goerrors.New("refresh token has been revoked", goerrors.CategoryAuth).
	WithTextCode(TextCodeTokenRevoked).
	WithCode(goerrors.CodeUnauthorized)

// ErrIdentityNotFound is the error we return for non found identities
var ErrIdentityNotFound = errors.New("identity not found")

// ErrUnableToFindSession is the error when our request has no token
var ErrUnableToFindSession = errors.New("unable to find session")

// ErrUnableToDecodeSession unable to decode JWT from session cookie
var ErrUnableToDecodeSession = errors.New("unable to decode session")

// ErrUnableToMapClaims unable to get claims from token
var ErrUnableToMapClaims = errors.New("unable to map claims")

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	if goerrors.Is(err, ErrTokenExpired) {
		return true
	}
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) && richErr.TextCode == TextCodeTokenExpired {
		return true
	}
	return strings.Contains(err.Error(), "token is expired")
}

// IsMalformedError will check for error message
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) && richErr.TextCode == TextCodeTokenMalformed {
		return true
	}
	return strings.Contains(err.Error(), "token is malformed") ||
		strings.Contains(err.Error(), "missing or malformed JWT")
}
