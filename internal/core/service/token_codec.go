package service

import (
	"encoding/base64"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/firesafety/incident-system/internal/core/domain"
)

// TokenCodec creates and parses signed, time-limited tokens. It knows nothing
// about the ledger: StructurallyValid answers signature+expiry only, and the
// session service combines that with the ledger's disabled flag.
//
// Parse failures are converted to domain.ErrInvalidToken at this boundary so
// raw jwt errors never reach callers.
type TokenCodec struct {
	key []byte
}

// NewTokenCodec builds a codec from the configured secret. The secret is
// base64-encoded key material.
func NewTokenCodec(secret string) (*TokenCodec, error) {
	key, err := base64.StdEncoding.DecodeString(secret)
	if err != nil {
		return nil, fmt.Errorf("token codec: decode secret: %w", err)
	}
	if len(key) == 0 {
		return nil, fmt.Errorf("token codec: empty signing key")
	}
	return &TokenCodec{key: key}, nil
}

// IssueAccessToken signs an access token for the user carrying the extra
// claims (e.g. role) with subject=username and expiry now+ttl.
func (c *TokenCodec) IssueAccessToken(user *domain.User, extra map[string]any, ttl time.Duration) (*domain.Token, error) {
	return c.issue(domain.TokenAccess, user.Username, extra, ttl)
}

// IssueRefreshToken signs a refresh token. It carries no extra claims.
func (c *TokenCodec) IssueRefreshToken(user *domain.User, ttl time.Duration) (*domain.Token, error) {
	return c.issue(domain.TokenRefresh, user.Username, nil, ttl)
}

func (c *TokenCodec) issue(typ domain.TokenType, username string, extra map[string]any, ttl time.Duration) (*domain.Token, error) {
	now := time.Now().UTC()
	expiresAt := now.Add(ttl)

	claims := jwt.MapClaims{
		"sub": username,
		"iat": now.Unix(),
		"exp": expiresAt.Unix(),
	}
	for k, v := range extra {
		claims[k] = v
	}

	value, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.key)
	if err != nil {
		return nil, fmt.Errorf("sign %s token: %w", typ, err)
	}

	return &domain.Token{
		Type:      typ,
		Value:     value,
		ExpiresAt: expiresAt,
		Disabled:  false,
		Username:  username,
	}, nil
}

// Subject verifies the token and returns its subject (username).
func (c *TokenCodec) Subject(value string) (string, error) {
	claims, err := c.parse(value)
	if err != nil {
		return "", err
	}
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return "", domain.ErrInvalidToken
	}
	return sub, nil
}

// Expiry verifies the token and returns its expiration time.
func (c *TokenCodec) Expiry(value string) (time.Time, error) {
	claims, err := c.parse(value)
	if err != nil {
		return time.Time{}, err
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, domain.ErrInvalidToken
	}
	return exp.Time, nil
}

// Claim verifies the token and returns a single extra claim as a string.
func (c *TokenCodec) Claim(value, name string) (string, error) {
	claims, err := c.parse(value)
	if err != nil {
		return "", err
	}
	s, _ := claims[name].(string)
	return s, nil
}

// StructurallyValid reports whether the signature verifies and the token is
// not expired. Ledger state is deliberately not consulted here.
func (c *TokenCodec) StructurallyValid(value string) bool {
	if value == "" {
		return false
	}
	_, err := c.parse(value)
	return err == nil
}

func (c *TokenCodec) parse(value string) (jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	tkn, err := jwt.ParseWithClaims(value, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return c.key, nil
	})
	if err != nil || !tkn.Valid {
		return nil, domain.ErrInvalidToken
	}
	return claims, nil
}
