package ports

import (
	"context"
	"time"

	"github.com/tempmailhq/tempmail-api/internal/core/domain"
)

// EmailRepository defines persistence operations for mailboxes.
type EmailRepository interface {
	// Create inserts a new mailbox. Returns domain.ErrAddressTaken when the
	// address (case-insensitive) already exists.
	Create(ctx context.Context, e *domain.Email) error
	FindByID(ctx context.Context, id string) (*domain.Email, error)
	FindByAddress(ctx context.Context, address string) (*domain.Email, error)
	// CountActive counts the user's mailboxes whose expiry is still in the
	// future at now.
	CountActive(ctx context.Context, userID string, now time.Time) (int64, error)
	Delete(ctx context.Context, id string) error
	// FindExpiredIDs returns up to limit mailbox ids whose expiry has passed.
	FindExpiredIDs(ctx context.Context, now time.Time, limit int) ([]string, error)
	DeleteByIDs(ctx context.Context, ids []string) (int64, error)
}
