package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/firesafety/incident-system/internal/api/metrics"
	"github.com/firesafety/incident-system/internal/core/domain"
	"github.com/firesafety/incident-system/internal/core/ports"
)

// SessionService implements the authentication lifecycle: login, refresh,
// logout, password change and access-token validation. Every issued token is
// recorded in the ledger; revocation is always "everything for this user".
type SessionService struct {
	users      ports.UserRepository
	tokens     ports.TokenRepository
	codec      *TokenCodec
	notifier   ports.Notifier
	accessTTL  time.Duration
	refreshTTL time.Duration
	log        zerolog.Logger
}

func NewSessionService(
	users ports.UserRepository,
	tokens ports.TokenRepository,
	codec *TokenCodec,
	notifier ports.Notifier,
	accessTTL, refreshTTL time.Duration,
	log zerolog.Logger,
) *SessionService {
	if accessTTL <= 0 {
		accessTTL = 15 * time.Minute
	}
	if refreshTTL <= 0 {
		refreshTTL = 7 * 24 * time.Hour
	}
	return &SessionService{
		users:      users,
		tokens:     tokens,
		codec:      codec,
		notifier:   notifier,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		log:        log,
	}
}

// Register creates a new account with the default USER role.
func (s *SessionService) Register(ctx context.Context, username, password string) (*domain.User, error) {
	if username == "" || password == "" {
		return nil, domain.ErrInvalidInput
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &domain.User{
		Username:     username,
		PasswordHash: string(hash),
		Role:         domain.RoleByName(domain.RoleUser),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := s.users.Create(ctx, user)
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("username", username).Msg("user registered")
	return created, nil
}

// Login authenticates the credentials, revokes every prior token for the
// user and establishes a fresh access+refresh pair.
//
// Policy: a login always invalidates prior sessions and always mints a new
// token pair, regardless of what the client presented. The presented tokens
// only inform logging.
func (s *SessionService) Login(ctx context.Context, in ports.LoginInput) (*ports.SessionResult, error) {
	user, err := s.authenticate(ctx, in.Username, in.Password)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("failure").Inc()
		return nil, err
	}

	if s.codec.StructurallyValid(in.PresentedAccess) || s.codec.StructurallyValid(in.PresentedRefresh) {
		s.log.Debug().Str("username", user.Username).Msg("login superseding a live session")
	}

	s.revokeAllForUser(ctx, user.Username)

	access, err := s.codec.IssueAccessToken(user, map[string]any{"role": user.Role.Name}, s.accessTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := s.codec.IssueRefreshToken(user, s.refreshTTL)
	if err != nil {
		return nil, err
	}

	if err := s.tokens.Insert(ctx, access); err != nil {
		return nil, fmt.Errorf("persist access token: %w", err)
	}
	if err := s.tokens.Insert(ctx, refresh); err != nil {
		return nil, fmt.Errorf("persist refresh token: %w", err)
	}

	// Best effort only: a notification failure must not fail the login.
	s.notifier.AdminMessage(ctx, fmt.Sprintf("user %s logged in", user.Username))

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	s.log.Info().Str("username", user.Username).Str("role", user.Role.Name).Msg("login")

	return &ports.SessionResult{
		Authenticated: true,
		Role:          user.Role.Name,
		NewAccess:     access,
		NewRefresh:    refresh,
	}, nil
}

// Refresh mints a new access token from a valid refresh token. The refresh
// token itself is left untouched: no rotation.
func (s *SessionService) Refresh(ctx context.Context, presentedRefresh string) (*ports.SessionResult, error) {
	if !s.codec.StructurallyValid(presentedRefresh) || s.isRevoked(ctx, presentedRefresh) {
		return nil, domain.ErrInvalidToken
	}

	username, err := s.codec.Subject(presentedRefresh)
	if err != nil {
		return nil, err
	}
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	access, err := s.codec.IssueAccessToken(user, map[string]any{"role": user.Role.Name}, s.accessTTL)
	if err != nil {
		return nil, err
	}
	if err := s.tokens.Insert(ctx, access); err != nil {
		return nil, fmt.Errorf("persist access token: %w", err)
	}

	metrics.TokenRefreshTotal.Inc()
	s.log.Info().Str("username", username).Msg("access token refreshed")

	return &ports.SessionResult{
		Authenticated: true,
		Role:          user.Role.Name,
		NewAccess:     access,
	}, nil
}

// Logout revokes every token for the user identified by the access token.
// Without a usable access token there is no session to end: the call fails
// with an authentication error rather than crashing.
func (s *SessionService) Logout(ctx context.Context, presentedAccess string) (*ports.SessionResult, error) {
	username, err := s.codec.Subject(presentedAccess)
	if err != nil {
		return nil, domain.ErrNotAuthenticated
	}
	if _, err := s.users.FindByUsername(ctx, username); err != nil {
		return nil, domain.ErrNotAuthenticated
	}

	s.revokeAllForUser(ctx, username)
	s.log.Info().Str("username", username).Msg("logout")

	return &ports.SessionResult{Authenticated: false}, nil
}

// ChangePassword verifies the old password, stores the new hash and tears
// the session down (all tokens revoked, cookies to be cleared by the caller).
func (s *SessionService) ChangePassword(ctx context.Context, principal domain.Principal, in ports.ChangePasswordInput) (*ports.SessionResult, error) {
	if principal.Username == "" {
		return nil, domain.ErrNotAuthenticated
	}

	user, err := s.users.FindByUsername(ctx, principal.Username)
	if err != nil {
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.OldPassword)) != nil {
		return nil, domain.ErrInvalidCredentials
	}
	if in.NewPassword != in.NewPasswordConfirm {
		return nil, domain.ErrPasswordMismatch
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = string(hash)
	user.UpdatedAt = time.Now().UTC()
	if err := s.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("store new password: %w", err)
	}

	s.revokeAllForUser(ctx, user.Username)
	s.log.Info().Str("username", user.Username).Msg("password changed, sessions revoked")

	return &ports.SessionResult{Authenticated: false}, nil
}

// WhoAmI returns the identity view of the current principal.
func (s *SessionService) WhoAmI(ctx context.Context, principal domain.Principal) (*ports.UserInfo, error) {
	if principal.Username == "" {
		return nil, domain.ErrNotAuthenticated
	}
	user, err := s.users.FindByUsername(ctx, principal.Username)
	if err != nil {
		return nil, err
	}
	return &ports.UserInfo{
		Username:    user.Username,
		Role:        user.Role.Name,
		Permissions: user.Role.Permissions,
	}, nil
}

// ValidateAccess checks signature, expiry and ledger state of an access
// token and resolves the principal it identifies.
func (s *SessionService) ValidateAccess(ctx context.Context, accessValue string) (*domain.Principal, error) {
	if !s.codec.StructurallyValid(accessValue) || s.isRevoked(ctx, accessValue) {
		return nil, domain.ErrInvalidToken
	}

	username, err := s.codec.Subject(accessValue)
	if err != nil {
		return nil, err
	}
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, domain.ErrInvalidToken
	}

	return &domain.Principal{
		UserID:      user.ID,
		Username:    user.Username,
		Role:        user.Role.Name,
		Permissions: user.Role.Permissions,
	}, nil
}

func (s *SessionService) authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	if username == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		// Unknown user and bad password are indistinguishable to the caller.
		return nil, domain.ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}
	return user, nil
}

// isRevoked reports the ledger view of a token: unknown tokens count as
// revoked, known tokens follow their disabled flag.
func (s *SessionService) isRevoked(ctx context.Context, value string) bool {
	token, err := s.tokens.FindByValue(ctx, value)
	if err != nil {
		return true
	}
	return token.Disabled
}

// revokeAllForUser sweeps the user's ledger entries: already-expired tokens
// are deleted, live ones are disabled. The sweep is not atomic across the
// set; a partially revoked set fails toward requiring re-login.
func (s *SessionService) revokeAllForUser(ctx context.Context, username string) {
	tokens, err := s.tokens.FindByUsername(ctx, username)
	if err != nil {
		s.log.Error().Err(err).Str("username", username).Msg("token sweep: listing failed")
		return
	}

	now := time.Now().UTC()
	for _, t := range tokens {
		if t.Expired(now) {
			if err := s.tokens.DeleteByValue(ctx, t.Value); err != nil {
				s.log.Warn().Err(err).Str("username", username).Msg("token sweep: delete failed")
			}
			continue
		}
		if !t.Disabled {
			if err := s.tokens.Disable(ctx, t.Value); err != nil {
				s.log.Warn().Err(err).Str("username", username).Msg("token sweep: disable failed")
			}
		}
	}
}
