package service

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/firesafety/incident-system/internal/core/domain"
	"github.com/firesafety/incident-system/internal/core/ports"
)

type stubUserRepo struct {
	users  map[string]*domain.User
	nextID int
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	if _, exists := r.users[user.Username]; exists {
		return nil, domain.ErrUserExists
	}
	copy := cloneUser(user)
	if copy.ID == "" {
		r.nextID++
		copy.ID = "u" + strconv.Itoa(r.nextID)
	}
	r.users[copy.Username] = cloneUser(copy)
	return cloneUser(copy), nil
}

func (r *stubUserRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	u, ok := r.users[username]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	for _, u := range r.users {
		if u.ID == id {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) Update(_ context.Context, user *domain.User) error {
	if _, ok := r.users[user.Username]; !ok {
		return domain.ErrUserNotFound
	}
	r.users[user.Username] = cloneUser(user)
	return nil
}

type stubTokenRepo struct {
	tokens map[string]*domain.Token
}

func newStubTokenRepo() *stubTokenRepo {
	return &stubTokenRepo{tokens: make(map[string]*domain.Token)}
}

func (r *stubTokenRepo) Insert(_ context.Context, token *domain.Token) error {
	clone := *token
	r.tokens[token.Value] = &clone
	return nil
}

func (r *stubTokenRepo) FindByValue(_ context.Context, value string) (*domain.Token, error) {
	t, ok := r.tokens[value]
	if !ok {
		return nil, domain.ErrTokenNotFound
	}
	clone := *t
	return &clone, nil
}

func (r *stubTokenRepo) FindByUsername(_ context.Context, username string) ([]*domain.Token, error) {
	var out []*domain.Token
	for _, t := range r.tokens {
		if t.Username == username {
			clone := *t
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *stubTokenRepo) Disable(_ context.Context, value string) error {
	t, ok := r.tokens[value]
	if !ok {
		return domain.ErrTokenNotFound
	}
	t.Disabled = true
	return nil
}

func (r *stubTokenRepo) DeleteByValue(_ context.Context, value string) error {
	delete(r.tokens, value)
	return nil
}

type recordingNotifier struct {
	messages []string
}

func (n *recordingNotifier) AlertCreated(_ context.Context, alert *domain.Alert) {
	n.messages = append(n.messages, "alert:"+alert.ID)
}

func (n *recordingNotifier) AdminMessage(_ context.Context, text string) {
	n.messages = append(n.messages, text)
}

func newTestSessionService(t *testing.T) (*SessionService, *stubUserRepo, *stubTokenRepo) {
	t.Helper()
	users := newStubUserRepo()
	tokens := newStubTokenRepo()
	svc := NewSessionService(users, tokens, newTestCodec(t), &recordingNotifier{}, time.Hour, 24*time.Hour, zerolog.Nop())
	return svc, users, tokens
}

func mustLogin(t *testing.T, svc *SessionService, username, password string) *ports.SessionResult {
	t.Helper()
	result, err := svc.Login(context.Background(), ports.LoginInput{Username: username, Password: password})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	return result
}

func TestSessionService_Register_DefaultRole(t *testing.T) {
	svc, _, _ := newTestSessionService(t)

	user, err := svc.Register(context.Background(), "alice", "s3cret")
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if user.Role.Name != domain.RoleUser {
		t.Fatalf("expected default role %s, got %s", domain.RoleUser, user.Role.Name)
	}
	if user.PasswordHash == "s3cret" {
		t.Fatalf("expected password to be hashed")
	}
}

func TestSessionService_Register_Duplicate(t *testing.T) {
	svc, _, _ := newTestSessionService(t)

	if _, err := svc.Register(context.Background(), "bob", "pass1"); err != nil {
		t.Fatalf("first register failed: %v", err)
	}
	if _, err := svc.Register(context.Background(), "bob", "pass2"); err != domain.ErrUserExists {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestSessionService_Login_Success(t *testing.T) {
	svc, _, tokens := newTestSessionService(t)
	if _, err := svc.Register(context.Background(), "carol", "s3cret"); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	result := mustLogin(t, svc, "carol", "s3cret")
	if !result.Authenticated {
		t.Fatalf("expected authenticated result")
	}
	if result.Role != domain.RoleUser {
		t.Fatalf("unexpected role: %s", result.Role)
	}
	if result.NewAccess == nil || result.NewRefresh == nil {
		t.Fatalf("expected a fresh token pair")
	}
	if len(tokens.tokens) != 2 {
		t.Fatalf("expected 2 ledger entries, got %d", len(tokens.tokens))
	}
}

func TestSessionService_Login_UnknownUserAndBadPassword(t *testing.T) {
	svc, _, _ := newTestSessionService(t)
	if _, err := svc.Register(context.Background(), "dave", "right"); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	if _, err := svc.Login(context.Background(), ports.LoginInput{Username: "nobody", Password: "x"}); err != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials for unknown user, got %v", err)
	}
	if _, err := svc.Login(context.Background(), ports.LoginInput{Username: "dave", Password: "wrong"}); err != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials for bad password, got %v", err)
	}
}

func TestSessionService_Login_RevokesPriorSessions(t *testing.T) {
	svc, _, tokens := newTestSessionService(t)
	if _, err := svc.Register(context.Background(), "erin", "s3cret"); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	first := mustLogin(t, svc, "erin", "s3cret")
	second := mustLogin(t, svc, "erin", "s3cret")

	for _, old := range []string{first.NewAccess.Value, first.NewRefresh.Value} {
		entry, err := tokens.FindByValue(context.Background(), old)
		if err == nil && !entry.Disabled {
			t.Fatalf("token from the first session is still live")
		}
	}
	if second.NewAccess.Value == first.NewAccess.Value {
		t.Fatalf("expected a fresh access token on re-login")
	}
}

func TestSessionService_Refresh_SubjectPreserved(t *testing.T) {
	svc, _, _ := newTestSessionService(t)
	if _, err := svc.Register(context.Background(), "frank", "s3cret"); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	login := mustLogin(t, svc, "frank", "s3cret")
	refreshed, err := svc.Refresh(context.Background(), login.NewRefresh.Value)
	if err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	if refreshed.NewAccess == nil {
		t.Fatalf("expected a new access token")
	}
	if refreshed.NewRefresh != nil {
		t.Fatalf("refresh must not rotate the refresh token")
	}

	sub, err := svc.codec.Subject(refreshed.NewAccess.Value)
	if err != nil {
		t.Fatalf("subject parse failed: %v", err)
	}
	if sub != "frank" {
		t.Fatalf("expected subject frank, got %s", sub)
	}
}

func TestSessionService_Refresh_RejectsUnknownToken(t *testing.T) {
	svc, _, _ := newTestSessionService(t)
	if _, err := svc.Register(context.Background(), "grace", "s3cret"); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	// Structurally fine but never recorded in the ledger.
	user, _ := svc.users.FindByUsername(context.Background(), "grace")
	rogue, err := svc.codec.IssueRefreshToken(user, time.Hour)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	if _, err := svc.Refresh(context.Background(), rogue.Value); err != domain.ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestSessionService_Logout_RevokesEverything(t *testing.T) {
	svc, _, tokens := newTestSessionService(t)
	if _, err := svc.Register(context.Background(), "heidi", "s3cret"); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	login := mustLogin(t, svc, "heidi", "s3cret")
	if _, err := svc.Logout(context.Background(), login.NewAccess.Value); err != nil {
		t.Fatalf("logout failed: %v", err)
	}

	remaining, _ := tokens.FindByUsername(context.Background(), "heidi")
	for _, tok := range remaining {
		if !tok.Disabled {
			t.Fatalf("token %s still live after logout", tok.Type)
		}
	}
	if _, err := svc.ValidateAccess(context.Background(), login.NewAccess.Value); err != domain.ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken after logout, got %v", err)
	}
}

func TestSessionService_Logout_WithoutSession(t *testing.T) {
	svc, _, _ := newTestSessionService(t)

	if _, err := svc.Logout(context.Background(), "garbage"); err != domain.ErrNotAuthenticated {
		t.Fatalf("expected ErrNotAuthenticated, got %v", err)
	}
}

func TestSessionService_RevokeSweep_DeletesExpired(t *testing.T) {
	svc, _, tokens := newTestSessionService(t)
	if _, err := svc.Register(context.Background(), "ivan", "s3cret"); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	// Plant an already-expired ledger entry alongside a live session.
	expired := &domain.Token{
		Type:      domain.TokenAccess,
		Value:     "stale-token",
		ExpiresAt: time.Now().UTC().Add(-time.Hour),
		Username:  "ivan",
	}
	if err := tokens.Insert(context.Background(), expired); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	mustLogin(t, svc, "ivan", "s3cret")

	if _, err := tokens.FindByValue(context.Background(), "stale-token"); err != domain.ErrTokenNotFound {
		t.Fatalf("expected expired token to be deleted, got %v", err)
	}
}

func TestSessionService_ChangePassword(t *testing.T) {
	svc, _, _ := newTestSessionService(t)
	if _, err := svc.Register(context.Background(), "judy", "old-pass"); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	login := mustLogin(t, svc, "judy", "old-pass")
	principal := domain.Principal{Username: "judy"}

	if _, err := svc.ChangePassword(context.Background(), principal, ports.ChangePasswordInput{
		OldPassword: "wrong", NewPassword: "new-pass", NewPasswordConfirm: "new-pass",
	}); err != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}

	if _, err := svc.ChangePassword(context.Background(), principal, ports.ChangePasswordInput{
		OldPassword: "old-pass", NewPassword: "new-pass", NewPasswordConfirm: "different",
	}); err != domain.ErrPasswordMismatch {
		t.Fatalf("expected ErrPasswordMismatch, got %v", err)
	}

	if _, err := svc.ChangePassword(context.Background(), principal, ports.ChangePasswordInput{
		OldPassword: "old-pass", NewPassword: "new-pass", NewPasswordConfirm: "new-pass",
	}); err != nil {
		t.Fatalf("change password failed: %v", err)
	}

	// Old sessions are gone, new credentials work.
	if _, err := svc.ValidateAccess(context.Background(), login.NewAccess.Value); err != domain.ErrInvalidToken {
		t.Fatalf("expected old session revoked, got %v", err)
	}
	if _, err := svc.Login(context.Background(), ports.LoginInput{Username: "judy", Password: "old-pass"}); err != domain.ErrInvalidCredentials {
		t.Fatalf("old password still accepted")
	}
	mustLogin(t, svc, "judy", "new-pass")
}

func TestSessionService_ValidateAccess_Principal(t *testing.T) {
	svc, _, _ := newTestSessionService(t)
	if _, err := svc.Register(context.Background(), "kate", "s3cret"); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	login := mustLogin(t, svc, "kate", "s3cret")

	principal, err := svc.ValidateAccess(context.Background(), login.NewAccess.Value)
	if err != nil {
		t.Fatalf("ValidateAccess returned error: %v", err)
	}
	if principal.Username != "kate" {
		t.Fatalf("unexpected principal: %+v", principal)
	}
	if !principal.HasPermission(domain.PermAlertRead) {
		t.Fatalf("USER role should carry %s", domain.PermAlertRead)
	}
	if principal.HasPermission(domain.PermAlertDelete) {
		t.Fatalf("USER role must not carry %s", domain.PermAlertDelete)
	}
}

func TestSessionService_WhoAmI(t *testing.T) {
	svc, _, _ := newTestSessionService(t)
	if _, err := svc.Register(context.Background(), "leo", "s3cret"); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	info, err := svc.WhoAmI(context.Background(), domain.Principal{Username: "leo"})
	if err != nil {
		t.Fatalf("WhoAmI returned error: %v", err)
	}
	if info.Username != "leo" || info.Role != domain.RoleUser {
		t.Fatalf("unexpected info: %+v", info)
	}

	if _, err := svc.WhoAmI(context.Background(), domain.Principal{}); err != domain.ErrNotAuthenticated {
		t.Fatalf("expected ErrNotAuthenticated, got %v", err)
	}
}
