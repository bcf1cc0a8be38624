package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/firesafety/incident-system/internal/core/domain"
	"github.com/firesafety/incident-system/internal/core/ports"
)

const (
	accessCookieName  = "access-token"
	refreshCookieName = "refresh-token"
)

// applySessionCookies sets cookies for whichever tokens the session service
// minted. A nil token in the result means the corresponding cookie is left
// untouched.
func applySessionCookies(c echo.Context, result *ports.SessionResult) {
	if result.NewAccess != nil {
		c.SetCookie(sessionCookie(accessCookieName, result.NewAccess))
	}
	if result.NewRefresh != nil {
		c.SetCookie(sessionCookie(refreshCookieName, result.NewRefresh))
	}
}

func sessionCookie(name string, token *domain.Token) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    token.Value,
		Path:     "/",
		Expires:  token.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

// clearSessionCookies expires both token cookies on the client.
func clearSessionCookies(c echo.Context) {
	for _, name := range []string{accessCookieName, refreshCookieName} {
		c.SetCookie(&http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			Expires:  time.Unix(0, 0),
			MaxAge:   -1,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
}

// cookieValue returns the named cookie's value, or "" when absent.
func cookieValue(c echo.Context, name string) string {
	cookie, err := c.Cookie(name)
	if err != nil {
		return ""
	}
	return cookie.Value
}
