package auth

import (
	"time"

	"github.com/goliatone/go-router"
)

// Cookie names the core sets on the client.
const (
	CookieAccessToken   = "access_token"
	CookieRefreshToken  = "refresh_token"
	CookieRegisterToken = "register_token"
)

// SetTokenCookies writes the credential pair as http-only cookies with the
// token lifetimes as max ages.
func SetTokenCookies(c router.Context, tokens TokenPair) {
	setCookie(c, CookieAccessToken, tokens.AccessToken, AccessTokenTTL)
	setCookie(c, CookieRefreshToken, tokens.RefreshToken, RefreshTokenTTL)
}

// SetRegisterTokenCookie writes the pending-registration bridge cookie. It is
// not http-only: the registration form inspects it client side.
func SetRegisterTokenCookie(c router.Context, token string) {
	c.Cookie(&router.Cookie{
		Name:     CookieRegisterToken,
		Value:    token,
		Expires:  time.Now().Add(RegisterTokenTTL),
		MaxAge:   int(RegisterTokenTTL / time.Second),
		SameSite: "Lax",
	})
}

// ClearTokenCookies expires the session cookies, used on logout.
func ClearTokenCookies(c router.Context) {
	cookieDel(c, CookieAccessToken)
	cookieDel(c, CookieRefreshToken)
}

// ClearRegisterTokenCookie discards a consumed pending registration.
func ClearRegisterTokenCookie(c router.Context) {
	cookieDel(c, CookieRegisterToken)
}

func setCookie(c router.Context, name, val string, duration time.Duration) {
	c.Cookie(&router.Cookie{
		Name:     name,
		Value:    val,
		Expires:  time.Now().Add(duration),
		MaxAge:   int(duration / time.Second),
		HTTPOnly: true,
		SameSite: "Lax",
	})
}

func cookieDel(c router.Context, name string) {
	c.Cookie(&router.Cookie{
		Name:     name,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour * (24 * 365)),
		HTTPOnly: true,
		SameSite: "Lax",
	})
}
