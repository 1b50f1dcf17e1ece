package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Session holds the attributes of an authenticated request principal.
type Session interface {
	GetUserID() string
	GetUserUUID() (uuid.UUID, error)
	GetIssuer() string
	GetIssuedAt() *time.Time
	GetExpiration() *time.Time
}

// Config holds auth options. The signing key is resolved once at startup;
// everything here is read-only afterwards.
type Config interface {
	GetSigningKey() string
	GetSigningMethod() string
	GetIssuer() string
	GetContextKey() string
	GetAuthScheme() string
	GetClientHost() string
	GetAPIHost() string
	GetGithubClientID() string
	GetGithubClientSecret() string
	IsDevelopment() bool
}

// Identity holds the attributes of an identity
type Identity interface {
	ID() string
	Username() string
	Email() string
}

// UserResolver looks up the account a token's user_id claim points at.
type UserResolver interface {
	FindUserByID(ctx context.Context, id string) (*User, error)
}

// NewDefaultLogger returns the stdout fallback logger subpackages use when
// the caller passes none.
func NewDefaultLogger() Logger {
	return defLogger{}
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] AUTH "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] AUTH "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] AUTH "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] AUTH "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
