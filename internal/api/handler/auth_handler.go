package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/firesafety/incident-system/internal/core/ports"
)

// AuthHandler handles the session lifecycle endpoints.
type AuthHandler struct {
	sessions ports.SessionService
}

func NewAuthHandler(sessions ports.SessionService) *AuthHandler {
	return &AuthHandler{sessions: sessions}
}

type registerRequest struct {
	Username string `json:"username" validate:"required,min=3"`
	Password string `json:"password" validate:"required,min=6"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type changePasswordRequest struct {
	OldPassword        string `json:"oldPassword"      validate:"required"`
	NewPassword        string `json:"newPassword"      validate:"required,min=6"`
	NewPasswordConfirm string `json:"newPasswordAgain" validate:"required"`
}

type sessionResponse struct {
	Authenticated bool   `json:"authenticated"`
	Role          string `json:"role,omitempty"`
}

type registerResponse struct {
	Username string `json:"username"`
	Role     string `json:"role"`
}

// Register creates a new user account with the default role.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Registration details"
// @Success      201   {object}  registerResponse
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /api/auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.sessions.Register(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, registerResponse{
		Username: user.Username,
		Role:     user.Role.Name,
	})
}

// Login verifies credentials, revokes any prior sessions and mints a fresh
// token pair delivered as HTTP-only cookies.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Credentials"
// @Success      200   {object}  sessionResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /api/auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result, err := h.sessions.Login(c.Request().Context(), ports.LoginInput{
		Username:         req.Username,
		Password:         req.Password,
		PresentedAccess:  cookieValue(c, accessCookieName),
		PresentedRefresh: cookieValue(c, refreshCookieName),
	})
	if err != nil {
		return err
	}

	applySessionCookies(c, result)
	return c.JSON(http.StatusOK, sessionResponse{
		Authenticated: result.Authenticated,
		Role:          result.Role,
	})
}

// Refresh exchanges a valid refresh token for a new access token cookie.
//
// @Summary      Refresh the access token
// @Tags         auth
// @Produce      json
// @Success      200  {object}  sessionResponse
// @Failure      401  {object}  map[string]string
// @Router       /api/auth/refresh [post]
func (h *AuthHandler) Refresh(c echo.Context) error {
	result, err := h.sessions.Refresh(c.Request().Context(), cookieValue(c, refreshCookieName))
	if err != nil {
		return err
	}

	applySessionCookies(c, result)
	return c.JSON(http.StatusOK, sessionResponse{
		Authenticated: result.Authenticated,
		Role:          result.Role,
	})
}

// Logout revokes every token of the current user and expires both cookies.
//
// @Summary      Logout
// @Tags         auth
// @Produce      json
// @Success      200  {object}  sessionResponse
// @Failure      401  {object}  map[string]string
// @Router       /api/auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	_, err := h.sessions.Logout(c.Request().Context(), cookieValue(c, accessCookieName))
	if err != nil {
		return err
	}

	clearSessionCookies(c)
	return c.JSON(http.StatusOK, sessionResponse{Authenticated: false})
}

// Info returns the current principal's identity and permissions.
//
// @Summary      Current user info
// @Tags         auth
// @Produce      json
// @Security     CookieAuth
// @Success      200  {object}  ports.UserInfo
// @Failure      401  {object}  map[string]string
// @Router       /api/auth/info [get]
func (h *AuthHandler) Info(c echo.Context) error {
	principal, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	info, err := h.sessions.WhoAmI(c.Request().Context(), principal)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, info)
}

// ChangePassword verifies the old password, stores the new hash and revokes
// every outstanding session.
//
// @Summary      Change password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Security     CookieAuth
// @Param        body  body      changePasswordRequest  true  "Password change"
// @Success      200   {object}  sessionResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /api/auth/change-password [patch]
func (h *AuthHandler) ChangePassword(c echo.Context) error {
	principal, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	var req changePasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	_, err = h.sessions.ChangePassword(c.Request().Context(), principal, ports.ChangePasswordInput{
		OldPassword:        req.OldPassword,
		NewPassword:        req.NewPassword,
		NewPasswordConfirm: req.NewPasswordConfirm,
	})
	if err != nil {
		return err
	}

	clearSessionCookies(c)
	return c.JSON(http.StatusOK, sessionResponse{Authenticated: false})
}
