package ports

import (
	"context"

	"github.com/tempmailhq/tempmail-api/internal/core/domain"
)

// UserRepository defines the interface for user account persistence.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	// RoleNames returns the set of role names held by the user. An unknown
	// user yields an empty set, not an error.
	RoleNames(ctx context.Context, userID string) ([]string, error)
}
