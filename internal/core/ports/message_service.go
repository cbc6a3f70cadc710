package ports

import (
	"context"
	"time"

	"github.com/tempmailhq/tempmail-api/internal/core/domain"
)

// ListMessagesInput carries the parameters for one feed page.
type ListMessagesInput struct {
	EmailID string
	// UserID is the caller's identity; ownership of EmailID is enforced.
	UserID string
	Feed   domain.Direction
	// Cursor is the raw token from the previous page, empty for the first.
	Cursor string
}

// MessageListResult is one page of a feed.
type MessageListResult struct {
	Items []*domain.Message
	// NextCursor is empty when the feed is exhausted.
	NextCursor string
	// Total counts the whole matching set at query time, independent of the
	// cursor. Under concurrent inserts it may disagree with the client's
	// accumulated page count.
	Total int64
}

// SendMessageInput carries an outbound send request. Content is the HTML
// body handed to the relay.
type SendMessageInput struct {
	EmailID string
	UserID  string
	To      string
	Subject string
	Content string
}

// SendMessageResult is returned after a successful relay call.
type SendMessageResult struct {
	Message *domain.Message
	// RemainingEmails is the gate's remaining count from before this send;
	// nil for unlimited senders.
	RemainingEmails *int
}

// InboundMessageInput is one piece of mail arriving from the ingestion
// bridge.
type InboundMessageInput struct {
	ToAddress   string
	FromAddress string
	Subject     string
	Content     string
	HTML        string
	ReceivedAt  time.Time
}

// MessageService defines use-case operations on messages.
type MessageService interface {
	List(ctx context.Context, input ListMessagesInput) (*MessageListResult, error)
	Send(ctx context.Context, input SendMessageInput) (*SendMessageResult, error)
	// Deliver stores an inbound message into the mailbox addressed by
	// ToAddress. Mail for unknown or expired mailboxes is dropped.
	Deliver(ctx context.Context, input InboundMessageInput) error
}
