package social

import (
	stderrors "errors"
	"net/url"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"

	"github.com/developergarten/garten-auth"
)

// RouteRegistrar captures the router methods used by the controller.
type RouteRegistrar interface {
	Get(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	Post(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
}

// ErrorBody is the JSON error envelope social endpoints respond with.
type ErrorBody struct {
	Name    string `json:"name"`
	Payload string `json:"payload,omitempty"`
}

// HTTPController handles the social login HTTP surface: the provider
// redirect, the OAuth callback, the pending profile peek, and registration.
type HTTPController struct {
	resolver     *IdentityResolver
	provisioner  *AccountProvisioner
	tokenService auth.TokenService
	providers    Providers
	config       auth.Config
	logger       auth.Logger
}

// NewHTTPController wires the social endpoints.
func NewHTTPController(
	resolver *IdentityResolver,
	provisioner *AccountProvisioner,
	tokenService auth.TokenService,
	providers Providers,
	config auth.Config,
	logger auth.Logger,
) *HTTPController {
	if logger == nil {
		logger = auth.NewDefaultLogger()
	}

	return &HTTPController{
		resolver:     resolver,
		provisioner:  provisioner,
		tokenService: tokenService,
		providers:    providers,
		config:       config,
		logger:       logger,
	}
}

// RegisterRoutes mounts the social endpoints, typically under /auth/social.
func (c *HTTPController) RegisterRoutes(group RouteRegistrar) {
	group.Get("/redirect/:provider", c.Redirect)
	group.Get("/callback/:provider", c.Callback)
	group.Get("/profile", c.Profile)
	group.Post("/register", c.Register)
}

// Redirect sends the user to the provider authorization page, carrying the
// requested post-login path.
func (c *HTTPController) Redirect(ctx router.Context) error {
	providerName := ctx.Param("provider")

	provider, err := c.providers.Get(providerName)
	if err != nil {
		return ctx.JSON(router.StatusBadRequest, ErrorBody{
			Name:    "UNSUPPORTED_PROVIDER",
			Payload: providerName,
		})
	}

	next := ctx.Query("next")
	if next == "" {
		next = "/"
	}

	return ctx.Redirect(provider.AuthCodeURL(next), router.StatusFound)
}

// Callback finishes the OAuth flow: exchanges the code, matches the identity,
// and either opens a session or parks a pending registration.
func (c *HTTPController) Callback(ctx router.Context) error {
	providerName := ctx.Param("provider")
	if !IsSupportedProvider(providerName) {
		return ctx.JSON(router.StatusBadRequest, ErrorBody{
			Name:    "UNSUPPORTED_PROVIDER",
			Payload: providerName,
		})
	}

	code := ctx.Query("code")
	if code == "" {
		return ctx.JSON(router.StatusBadRequest, ErrorBody{
			Name: "MISSING_CODE",
		})
	}

	resolution, err := c.resolver.Resolve(ctx.Context(), providerName, code)
	if err != nil {
		return c.handleError(ctx, err)
	}

	next := ResolveNext(ctx.Query("state"), ctx.Query("next"))

	if resolution.LoggedIn() {
		auth.SetTokenCookies(ctx, *resolution.Tokens)
		// email-matched logins always land on the client root
		if resolution.Kind == ResolutionEmailLogin {
			next = "/"
		}
		return ctx.Redirect(c.clientURL(next), router.StatusFound)
	}

	auth.SetRegisterTokenCookie(ctx, resolution.RegisterToken)
	return ctx.Redirect(c.clientURL("/register?social=1"), router.StatusFound)
}

// Profile returns the pending profile carried by the register token so the
// registration form can prefill itself.
func (c *HTTPController) Profile(ctx router.Context) error {
	registerToken := ctx.Cookies(auth.CookieRegisterToken)
	if registerToken == "" {
		return ctx.JSON(router.StatusUnauthorized, ErrorBody{
			Name: "MISSING_REGISTER_TOKEN",
		})
	}

	claims := &RegisterClaims{}
	if err := c.tokenService.Decode(registerToken, claims, auth.SubjectRegisterToken); err != nil {
		return ctx.JSON(router.StatusBadRequest, ErrorBody{
			Name: "INVALID_REGISTER_TOKEN",
		})
	}

	return ctx.JSON(router.StatusOK, claims.Profile)
}

// Register finalizes a pending registration into a real account and opens a
// session for it.
func (c *HTTPController) Register(ctx router.Context) error {
	registerToken := ctx.Cookies(auth.CookieRegisterToken)
	if registerToken == "" {
		return ctx.JSON(router.StatusUnauthorized, ErrorBody{
			Name: "MISSING_REGISTER_TOKEN",
		})
	}

	form := RegisterForm{}
	if err := ctx.Bind(&form); err != nil {
		return ctx.JSON(router.StatusBadRequest, ErrorBody{
			Name:    "WRONG_SCHEMA",
			Payload: err.Error(),
		})
	}

	result, err := c.provisioner.Provision(ctx.Context(), registerToken, form)
	if err != nil {
		return c.handleError(ctx, err)
	}

	auth.SetTokenCookies(ctx, *result.Tokens)
	auth.ClearRegisterTokenCookie(ctx)

	return ctx.JSON(router.StatusOK, result)
}

// clientURL builds the browser-facing URL for a client-side path.
func (c *HTTPController) clientURL(next string) string {
	base := "https://" + c.config.GetClientHost()
	if c.config.IsDevelopment() {
		base = "http://localhost:3000"
	}

	if next == "" {
		next = "/"
	}
	if next[0] != '/' {
		next = "/" + next
	}

	if parsed, err := url.Parse(base + next); err == nil {
		return parsed.String()
	}

	return base + "/"
}

func (c *HTTPController) handleError(ctx router.Context, err error) error {
	if field := ConflictField(err); field != "" {
		return ctx.JSON(router.StatusConflict, ErrorBody{
			Name:    "ALREADY_EXISTS",
			Payload: field,
		})
	}

	var rich *goerrors.Error
	if stderrors.As(err, &rich) {
		switch rich.Category {
		case goerrors.CategoryValidation:
			payload := rich.Message
			if rich.Source != nil {
				payload = rich.Source.Error()
			}
			return ctx.JSON(router.StatusBadRequest, ErrorBody{
				Name:    "WRONG_SCHEMA",
				Payload: payload,
			})
		case goerrors.CategoryBadInput:
			return ctx.JSON(router.StatusBadRequest, ErrorBody{
				Name:    "BAD_REQUEST",
				Payload: rich.Message,
			})
		case goerrors.CategoryAuth:
			return ctx.JSON(router.StatusUnauthorized, ErrorBody{
				Name:    "UNAUTHORIZED",
				Payload: rich.Message,
			})
		}
	}

	c.logger.Error("social endpoint failed", "error", err)

	return ctx.JSON(router.StatusInternalServerError, ErrorBody{
		Name: "INTERNAL_ERROR",
	})
}
