package auth

import (
	"github.com/goliatone/go-router"
)

// AuthControllerRoutes holds the route paths the controller mounts.
type AuthControllerRoutes struct {
	Logout  string
	Check   string
	Refresh string
}

// AuthController exposes the session endpoints: logout, session check, and
// explicit refresh. Social login endpoints live in the social package.
type AuthController struct {
	Logger       Logger
	Repo         RepositoryManager
	TokenService TokenService
	Rotator      *TokenRotator
	Routes       *AuthControllerRoutes
	ErrorHandler router.ErrorHandler
}

type AuthControllerOption func(*AuthController) *AuthController

func WithControllerLogger(logger Logger) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Logger = logger
		return c
	}
}

func WithControllerRoutes(routes *AuthControllerRoutes) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Routes = routes
		return c
	}
}

func WithControllerRepo(repo RepositoryManager) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Repo = repo
		return c
	}
}

func WithControllerTokenService(ts TokenService) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.TokenService = ts
		return c
	}
}

func WithControllerRotator(rotator *TokenRotator) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Rotator = rotator
		return c
	}
}

func NewAuthController(opts ...AuthControllerOption) *AuthController {
	c := &AuthController{
		Logger:       defLogger{},
		ErrorHandler: defaultErrHandler,
		Routes: &AuthControllerRoutes{
			Logout:  "/logout",
			Check:   "/check",
			Refresh: "/refresh",
		},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Repo == nil {
		panic("Missing RepositoryManager in auth controller...")
	}

	if c.TokenService == nil {
		panic("Missing TokenService in auth controller...")
	}

	return c
}

// RegisterAuthRoutes mounts the session endpoints on the given router group.
func RegisterAuthRoutes[T any](app router.Router[T], opts ...AuthControllerOption) {
	controller := NewAuthController(opts...)

	app.Post(controller.Routes.Logout, controller.Logout).SetName("auth.logout")
	app.Get(controller.Routes.Check, controller.Check).SetName("auth.check")
	app.Post(controller.Routes.Refresh, controller.Refresh).SetName("auth.refresh")
}

// Logout clears the session cookies and revokes the refresh anchor so the
// token pair cannot be rotated again.
func (a *AuthController) Logout(ctx router.Context) error {
	if refreshToken := ctx.Cookies(CookieRefreshToken); refreshToken != "" {
		if claims, err := a.TokenService.DecodeRefresh(refreshToken); err == nil {
			if err := a.Repo.AuthTokens().Revoke(ctx.Context(), claims.TokenID); err != nil {
				a.Logger.Error("failed to revoke refresh token", "error", err, "token_id", claims.TokenID)
			}
		}
	}

	ClearTokenCookies(ctx)

	return ctx.Status(router.StatusNoContent).SendString("")
}

// Check reports the authenticated principal for the current request, or 401
// when the session middleware resolved none.
func (a *AuthController) Check(ctx router.Context) error {
	session, ok := GetRouterSession(ctx, "user_id")
	if !ok {
		return ctx.JSON(router.StatusUnauthorized, map[string]any{
			"error": "no active session",
		})
	}

	resp := map[string]any{
		"user_id": session.GetUserID(),
		"iss":     session.GetIssuer(),
	}
	if exp := session.GetExpiration(); exp != nil {
		resp["exp"] = exp.Unix()
	}

	return ctx.JSON(router.StatusOK, resp)
}

// Refresh rotates the token pair from the refresh cookie on demand, for
// clients that cannot rely on the proactive middleware renewal.
func (a *AuthController) Refresh(ctx router.Context) error {
	refreshToken := ctx.Cookies(CookieRefreshToken)
	if refreshToken == "" {
		return ctx.JSON(router.StatusUnauthorized, map[string]any{
			"error": "missing refresh token",
		})
	}

	result, err := a.Rotator.Rotate(ctx.Context(), refreshToken)
	if err != nil {
		a.Logger.Debug("refresh rotation rejected", "error", err)
		ClearTokenCookies(ctx)
		return ctx.JSON(router.StatusUnauthorized, map[string]any{
			"error": "invalid refresh token",
		})
	}

	SetTokenCookies(ctx, result.Tokens)

	return ctx.JSON(router.StatusOK, result.Tokens)
}

func defaultErrHandler(c router.Context, err error) error {
	return c.JSON(router.StatusInternalServerError, map[string]any{
		"error": err.Error(),
	})
}
