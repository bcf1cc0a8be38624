package service

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/firesafety/incident-system/internal/core/domain"
)

func newTestCodec(t *testing.T) *TokenCodec {
	t.Helper()
	codec, err := NewTokenCodec(base64.StdEncoding.EncodeToString([]byte("test-signing-key")))
	if err != nil {
		t.Fatalf("NewTokenCodec returned error: %v", err)
	}
	return codec
}

func TestTokenCodec_BadSecret(t *testing.T) {
	if _, err := NewTokenCodec("not base64 !!!"); err == nil {
		t.Fatalf("expected error for malformed secret")
	}
	if _, err := NewTokenCodec(""); err == nil {
		t.Fatalf("expected error for empty secret")
	}
}

func TestTokenCodec_IssueAndParse(t *testing.T) {
	codec := newTestCodec(t)
	user := &domain.User{Username: "alice", Role: domain.RoleByName(domain.RoleOperator)}

	token, err := codec.IssueAccessToken(user, map[string]any{"role": user.Role.Name}, time.Hour)
	if err != nil {
		t.Fatalf("IssueAccessToken returned error: %v", err)
	}
	if token.Type != domain.TokenAccess {
		t.Fatalf("unexpected token type: %s", token.Type)
	}
	if token.Username != "alice" {
		t.Fatalf("unexpected username: %s", token.Username)
	}

	sub, err := codec.Subject(token.Value)
	if err != nil {
		t.Fatalf("Subject returned error: %v", err)
	}
	if sub != "alice" {
		t.Fatalf("expected subject alice, got %s", sub)
	}

	role, err := codec.Claim(token.Value, "role")
	if err != nil {
		t.Fatalf("Claim returned error: %v", err)
	}
	if role != domain.RoleOperator {
		t.Fatalf("expected role claim %s, got %s", domain.RoleOperator, role)
	}

	if !codec.StructurallyValid(token.Value) {
		t.Fatalf("freshly issued token should be structurally valid")
	}
}

func TestTokenCodec_ExpiredTokenNeverValid(t *testing.T) {
	codec := newTestCodec(t)
	user := &domain.User{Username: "bob", Role: domain.RoleByName(domain.RoleUser)}

	token, err := codec.IssueAccessToken(user, nil, -time.Minute)
	if err != nil {
		t.Fatalf("IssueAccessToken returned error: %v", err)
	}

	if codec.StructurallyValid(token.Value) {
		t.Fatalf("expired token must never be structurally valid")
	}
	if _, err := codec.Subject(token.Value); err != domain.ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestTokenCodec_ForeignSignatureRejected(t *testing.T) {
	codec := newTestCodec(t)
	other, err := NewTokenCodec(base64.StdEncoding.EncodeToString([]byte("another-key")))
	if err != nil {
		t.Fatalf("NewTokenCodec returned error: %v", err)
	}

	user := &domain.User{Username: "carol", Role: domain.RoleByName(domain.RoleUser)}
	token, err := other.IssueAccessToken(user, nil, time.Hour)
	if err != nil {
		t.Fatalf("IssueAccessToken returned error: %v", err)
	}

	if codec.StructurallyValid(token.Value) {
		t.Fatalf("token signed with a different key must be rejected")
	}
}

func TestTokenCodec_GarbageInput(t *testing.T) {
	codec := newTestCodec(t)

	if codec.StructurallyValid("") {
		t.Fatalf("empty token must not be valid")
	}
	if codec.StructurallyValid("not.a.jwt") {
		t.Fatalf("garbage token must not be valid")
	}
	if _, err := codec.Expiry("not.a.jwt"); err != domain.ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}
