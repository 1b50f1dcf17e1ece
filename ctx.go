package auth

import (
	"context"

	"github.com/goliatone/go-router"
)

var userCtxKey = &contextKey{"user"}
var sessionCtxKey = &contextKey{"session"}

type contextKey struct {
	name string
}

// WithContext sets the User in the given context
func WithContext(r context.Context, user *User) context.Context {
	return context.WithValue(r, userCtxKey, user)
}

// FromContext finds the user from the context.
func FromContext(ctx context.Context) (*User, bool) {
	raw, ok := ctx.Value(userCtxKey).(*User)
	return raw, ok
}

// WithSessionContext sets the Session in the given context
func WithSessionContext(r context.Context, session Session) context.Context {
	return context.WithValue(r, sessionCtxKey, session)
}

// SessionFromContext extracts the Session from the standard context
func SessionFromContext(ctx context.Context) (Session, bool) {
	raw, ok := ctx.Value(sessionCtxKey).(Session)
	return raw, ok
}

// GetRouterSession extracts the request principal the session middleware
// stored in router locals. ok is false for anonymous requests.
func GetRouterSession(ctx router.Context, key string) (Session, bool) {
	if key == "" {
		key = "user_id"
	}
	raw := ctx.Locals(key)
	if raw == nil {
		return nil, false
	}
	session, ok := raw.(Session)
	return session, ok
}

// UserIDFromRouter returns the resolved principal's user id or "" when the
// request is anonymous.
func UserIDFromRouter(ctx router.Context, key string) string {
	session, ok := GetRouterSession(ctx, key)
	if !ok {
		return ""
	}
	return session.GetUserID()
}
