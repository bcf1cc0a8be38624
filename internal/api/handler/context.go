package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/firesafety/incident-system/internal/api/middleware"
	"github.com/firesafety/incident-system/internal/core/domain"
)

// ctxPrincipal extracts the principal injected by the Auth middleware.
// Its presence proves the middleware ran; routes that reach a handler
// without it are misconfigured, so fail closed with 401.
func ctxPrincipal(c echo.Context) (domain.Principal, error) {
	principal, ok := c.Get(middleware.PrincipalContextKey).(domain.Principal)
	if !ok || principal.Username == "" {
		return domain.Principal{}, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return principal, nil
}
