package ports

import (
	"context"
	"time"

	"github.com/tempmailhq/tempmail-api/internal/core/domain"
	"github.com/tempmailhq/tempmail-api/internal/pkg/cursor"
)

// MessageFeedQuery selects one page of a mailbox feed.
//
// Feed chooses the direction match and the ordering column: DirectionSent
// means `direction == "sent"` ordered by sent_at; anything else means
// inbound (`direction != "sent"` or absent) ordered by received_at.
type MessageFeedQuery struct {
	EmailID string
	Feed    domain.Direction
	// After, when non-nil, restricts the page to rows strictly below the
	// cursor key: orderTime < ts OR (orderTime == ts AND id < cursor id).
	After *cursor.Cursor
	// Limit is the number of rows to fetch, including any lookahead row.
	Limit int
}

// MessageRepository defines persistence operations for messages.
type MessageRepository interface {
	Insert(ctx context.Context, m *domain.Message) error
	// CountFeed counts all rows matching the feed's base filter,
	// independent of any cursor.
	CountFeed(ctx context.Context, emailID string, feed domain.Direction) (int64, error)
	// FindFeedPage returns rows ordered by (orderTime DESC, id DESC).
	FindFeedPage(ctx context.Context, q MessageFeedQuery) ([]*domain.Message, error)
	// CountSentSince counts outbound messages across all of the user's
	// mailboxes with sent_at >= since.
	CountSentSince(ctx context.Context, userID string, since time.Time) (int64, error)
	DeleteByEmailIDs(ctx context.Context, emailIDs []string) error
}
