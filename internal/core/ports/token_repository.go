package ports

import (
	"context"

	"github.com/firesafety/incident-system/internal/core/domain"
)

// TokenRepository is the token ledger: every issued access and refresh token
// is recorded here with its expiry and disabled flag. Revocation works by
// flipping the flag, never by re-signing anything.
type TokenRepository interface {
	Insert(ctx context.Context, token *domain.Token) error
	FindByValue(ctx context.Context, value string) (*domain.Token, error)
	FindByUsername(ctx context.Context, username string) ([]*domain.Token, error)
	// Disable marks the token permanently unusable.
	Disable(ctx context.Context, value string) error
	DeleteByValue(ctx context.Context, value string) error
}
