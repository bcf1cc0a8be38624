package ports

import (
	"context"

	"github.com/firesafety/incident-system/internal/core/domain"
)

// LoginInput carries the credentials plus whatever tokens the client already
// presented (from cookies). Login always revokes the user's prior tokens and
// mints a fresh pair; the presented values only identify the session being
// replaced.
type LoginInput struct {
	Username         string
	Password         string
	PresentedAccess  string
	PresentedRefresh string
}

// SessionResult is returned by session mutations. NewAccess/NewRefresh are
// nil when the corresponding cookie should be left untouched.
type SessionResult struct {
	Authenticated bool
	Role          string
	NewAccess     *domain.Token
	NewRefresh    *domain.Token
}

// UserInfo is the WhoAmI view of the current principal.
type UserInfo struct {
	Username    string   `json:"username"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
}

// ChangePasswordInput carries a password-change request for the principal.
type ChangePasswordInput struct {
	OldPassword        string
	NewPassword        string
	NewPasswordConfirm string
}

// SessionService orchestrates the authentication lifecycle: credential
// verification, token issuance, ledger bookkeeping and revocation.
type SessionService interface {
	Register(ctx context.Context, username, password string) (*domain.User, error)
	Login(ctx context.Context, in LoginInput) (*SessionResult, error)
	Refresh(ctx context.Context, presentedRefresh string) (*SessionResult, error)
	Logout(ctx context.Context, presentedAccess string) (*SessionResult, error)
	ChangePassword(ctx context.Context, principal domain.Principal, in ChangePasswordInput) (*SessionResult, error)
	WhoAmI(ctx context.Context, principal domain.Principal) (*UserInfo, error)
	// ValidateAccess checks signature, expiry and ledger state for an access
	// token and returns the principal it identifies.
	ValidateAccess(ctx context.Context, accessValue string) (*domain.Principal, error)
}
