package auth

import (
	"strings"
	"time"

	"github.com/goliatone/go-router"
)

// LogoutPath marks requests the session middleware must leave untouched so a
// logout is never resurrected by a token refresh.
const LogoutPath = "/auth/logout"

// SessionConsumer resolves the request principal from the access token and
// proactively rotates credentials that are close to expiry. It fails open:
// any authentication failure degrades to an anonymous request, it never
// rejects the pipeline itself.
type SessionConsumer struct {
	tokenService TokenService
	rotator      *TokenRotator
	contextKey   string
	authScheme   string
	logger       Logger
	now          func() time.Time
}

// NewSessionConsumer builds the per-request consumption middleware.
func NewSessionConsumer(ts TokenService, rotator *TokenRotator, cfg Config, logger Logger) *SessionConsumer {
	if logger == nil {
		logger = defLogger{}
	}

	contextKey := cfg.GetContextKey()
	if contextKey == "" {
		contextKey = "user_id"
	}

	authScheme := cfg.GetAuthScheme()
	if authScheme == "" {
		authScheme = "Bearer"
	}

	return &SessionConsumer{
		tokenService: ts,
		rotator:      rotator,
		contextKey:   contextKey,
		authScheme:   authScheme,
		logger:       logger,
		now:          time.Now,
	}
}

// WithClock overrides the time source used for renewal checks.
func (sc *SessionConsumer) WithClock(now func() time.Time) *SessionConsumer {
	if now != nil {
		sc.now = now
	}
	return sc
}

// Middleware returns the router middleware that consumes session tokens.
func (sc *SessionConsumer) Middleware() router.MiddlewareFunc {
	return func(hf router.HandlerFunc) router.HandlerFunc {
		return func(ctx router.Context) error {
			sc.Consume(ctx)
			return ctx.Next()
		}
	}
}

// Consume runs the session pipeline for one request: resolve a principal if
// possible, rotate near-expiry credentials, store the result in locals.
// It never returns an error to the pipeline.
func (sc *SessionConsumer) Consume(ctx router.Context) {
	if strings.Contains(ctx.OriginalURL(), LogoutPath) {
		return
	}

	accessToken := sc.extractAccessToken(ctx)
	refreshToken := ctx.Cookies(CookieRefreshToken)

	if accessToken == "" && refreshToken == "" {
		return
	}

	if accessToken != "" {
		claims, err := sc.tokenService.DecodeAccess(accessToken)
		if err == nil {
			sc.storePrincipal(ctx, claims)

			// proactive renewal while the current token is still good;
			// a failed rotation keeps the valid principal
			if claims.RemainingLife(sc.now()) < AccessRenewThreshold && refreshToken != "" {
				if result, err := sc.rotator.Rotate(ctx.Context(), refreshToken); err != nil {
					sc.logger.Debug("proactive rotation failed, keeping current session", "error", err)
				} else {
					SetTokenCookies(ctx, result.Tokens)
				}
			}
			return
		}

		sc.logger.Debug("access token rejected, attempting refresh", "error", err)
	}

	if refreshToken == "" {
		return
	}

	result, err := sc.rotator.Rotate(ctx.Context(), refreshToken)
	if err != nil {
		sc.logger.Debug("session rotation failed, proceeding unauthenticated", "error", err)
		return
	}

	SetTokenCookies(ctx, result.Tokens)

	claims, err := sc.tokenService.DecodeAccess(result.Tokens.AccessToken)
	if err != nil {
		sc.logger.Error("freshly minted access token failed decoding", "error", err)
		return
	}

	sc.storePrincipal(ctx, claims)
}

func (sc *SessionConsumer) extractAccessToken(ctx router.Context) string {
	header := ctx.GetString(router.HeaderAuthorization, "")
	scheme := strings.TrimSpace(sc.authScheme)
	if l := len(scheme); l > 0 && len(header) > l+1 && strings.EqualFold(header[:l], scheme) {
		return strings.TrimSpace(header[l:])
	}

	return ctx.Cookies(CookieAccessToken)
}

func (sc *SessionConsumer) storePrincipal(ctx router.Context, claims *AccessClaims) {
	session, err := sessionFromAccessClaims(claims)
	if err != nil {
		sc.logger.Error("failed to map access claims to session", "error", err)
		return
	}

	ctx.Locals(sc.contextKey, Session(session))
	ctx.SetContext(WithSessionContext(ctx.Context(), session))
}
