package ports

import "context"

// ProvisionEmailInput carries a mailbox creation request. Name may be empty,
// in which case a random local part is generated. ExpiryMillis must be one
// of the published expiry options; 0 means the mailbox never expires.
type ProvisionEmailInput struct {
	UserID       string
	Name         string
	Domain       string
	ExpiryMillis int64
}

// ProvisionEmailResult identifies the created mailbox.
type ProvisionEmailResult struct {
	ID      string
	Address string
}

// EmailService defines use-case operations on mailboxes.
type EmailService interface {
	Provision(ctx context.Context, input ProvisionEmailInput) (*ProvisionEmailResult, error)
	// Delete removes the mailbox and cascades deletion of its messages.
	// The caller must own the mailbox.
	Delete(ctx context.Context, emailID, userID string) error
	// PurgeExpired deletes up to one batch of expired mailboxes and their
	// messages. Idempotent; safe to run repeatedly.
	PurgeExpired(ctx context.Context) (int64, error)
}
