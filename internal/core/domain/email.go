package domain

import (
	"errors"
	"time"
)

// NeverExpires is the sentinel expiry for mailboxes created with the
// "permanent" option. Stored as-is so expiry queries stay a plain range
// comparison.
var NeverExpires = time.Date(9999, 1, 1, 0, 0, 0, 0, time.UTC)

var (
	ErrEmailNotFound = errors.New("email not found")
	ErrAddressTaken  = errors.New("email address already in use")
	ErrInvalidExpiry = errors.New("invalid expiry option")
	ErrInvalidDomain = errors.New("invalid email domain")
	ErrMailboxLimit  = errors.New("active mailbox limit reached")
	ErrForbidden     = errors.New("access forbidden")
	ErrInvalidCursor = errors.New("malformed pagination cursor")
)

// Email is a disposable mailbox owned by a user. Address is stored
// lowercased; uniqueness is case-insensitive.
type Email struct {
	ID        string    `json:"id" bson:"_id,omitempty"`
	Address   string    `json:"address" bson:"address"`
	UserID    string    `json:"user_id" bson:"user_id"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	ExpiresAt time.Time `json:"expires_at" bson:"expires_at"`
}

// Expired reports whether the mailbox has passed its expiry at the given
// instant. Mailboxes carrying the NeverExpires sentinel never expire.
func (e *Email) Expired(now time.Time) bool {
	return e.ExpiresAt.Before(now)
}
