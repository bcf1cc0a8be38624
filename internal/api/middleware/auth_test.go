package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/firesafety/incident-system/internal/core/domain"
	"github.com/firesafety/incident-system/internal/core/ports"
)

// stubSessions accepts exactly one token value and returns a fixed principal.
type stubSessions struct {
	valid     string
	principal domain.Principal
}

func (s *stubSessions) ValidateAccess(_ context.Context, value string) (*domain.Principal, error) {
	if value != s.valid {
		return nil, domain.ErrInvalidToken
	}
	p := s.principal
	return &p, nil
}

func (s *stubSessions) Register(context.Context, string, string) (*domain.User, error) {
	return nil, errors.New("not implemented")
}
func (s *stubSessions) Login(context.Context, ports.LoginInput) (*ports.SessionResult, error) {
	return nil, errors.New("not implemented")
}
func (s *stubSessions) Refresh(context.Context, string) (*ports.SessionResult, error) {
	return nil, errors.New("not implemented")
}
func (s *stubSessions) Logout(context.Context, string) (*ports.SessionResult, error) {
	return nil, errors.New("not implemented")
}
func (s *stubSessions) ChangePassword(context.Context, domain.Principal, ports.ChangePasswordInput) (*ports.SessionResult, error) {
	return nil, errors.New("not implemented")
}
func (s *stubSessions) WhoAmI(context.Context, domain.Principal) (*ports.UserInfo, error) {
	return nil, errors.New("not implemented")
}

func newStubSessions() *stubSessions {
	return &stubSessions{
		valid: "good-token",
		principal: domain.Principal{
			Username:    "alice",
			Role:        domain.RoleOperator,
			Permissions: domain.RoleByName(domain.RoleOperator).Permissions,
		},
	}
}

func TestAuth_CookieToken(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: AccessCookieName, Value: "good-token"})
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	mw := Auth(newStubSessions())
	handler := mw(func(c echo.Context) error {
		called = true
		principal, ok := c.Get(PrincipalContextKey).(domain.Principal)
		if !ok || principal.Username != "alice" {
			t.Fatalf("principal not injected: %+v", c.Get(PrincipalContextKey))
		}
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next not called")
	}
}

func TestAuth_BearerFallback(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	mw := Auth(newStubSessions())
	handler := mw(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next not called")
	}
}

func TestAuth_MissingToken(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	mw := Auth(newStubSessions())
	handler := mw(func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	})

	if err := handler(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuth_RejectedToken(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: AccessCookieName, Value: "revoked-token"})
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	mw := Auth(newStubSessions())
	handler := mw(func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	})

	if err := handler(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}
