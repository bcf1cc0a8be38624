package domain

import (
	"errors"
	"time"
)

// TokenType distinguishes the two credential channels.
type TokenType string

const (
	TokenAccess  TokenType = "ACCESS"
	TokenRefresh TokenType = "REFRESH"
)

var ErrInvalidToken = errors.New("invalid token")
var ErrTokenNotFound = errors.New("token not found")

// Token is a ledger entry for an issued credential. Disabled is permanent:
// a token is never re-enabled once revoked. Expired tokens are physically
// deleted during revocation sweeps.
type Token struct {
	ID        string    `json:"id"`
	Type      TokenType `json:"type"`
	Value     string    `json:"value"`
	ExpiresAt time.Time `json:"expires_at"`
	Disabled  bool      `json:"disabled"`
	Username  string    `json:"username"`
}

// Expired reports whether the token is past its natural lifetime at now.
func (t Token) Expired(now time.Time) bool {
	return t.ExpiresAt.Before(now)
}
