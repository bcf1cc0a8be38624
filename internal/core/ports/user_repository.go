package ports

import (
	"context"

	"github.com/firesafety/incident-system/internal/core/domain"
)

// UserRepository defines persistence for user accounts. It is the credential
// store consulted by the session manager; passwords never leave it unhashed.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	// Update persists mutable fields (password hash, telegram chat id).
	Update(ctx context.Context, user *domain.User) error
}
