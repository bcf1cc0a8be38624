package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/firesafety/incident-system/internal/core/ports"
)

// AccessCookieName is the cookie carrying the access token.
const AccessCookieName = "access-token"

// PrincipalContextKey is where Auth stores the resolved principal.
const PrincipalContextKey = "principal"

// Auth extracts the access token from the access-token cookie (or a Bearer
// Authorization header as a fallback), validates it against the session
// service and injects the resolved principal into the request context.
func Auth(sessions ports.SessionService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			value := accessToken(c)
			if value == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing access token")
			}

			principal, err := sessions.ValidateAccess(c.Request().Context(), value)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			c.Set(PrincipalContextKey, *principal)
			return next(c)
		}
	}
}

func accessToken(c echo.Context) string {
	if cookie, err := c.Cookie(AccessCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	authHeader := c.Request().Header.Get("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		return parts[1]
	}
	return ""
}
