package domain

import "time"

// Direction classifies a message as inbound or outbound.
type Direction string

const (
	DirectionReceived Direction = "received"
	DirectionSent     Direction = "sent"
	// DirectionNone marks legacy inbound rows written before the direction
	// tag existed. Feeds treat it as inbound.
	DirectionNone Direction = ""
)

// Inbound reports whether the direction counts as inbound
// (received or legacy untagged).
func (d Direction) Inbound() bool {
	return d != DirectionSent
}

// Message is a single piece of mail belonging to an Email. Exactly one of
// ReceivedAt (inbound) or SentAt (outbound) is set, and messages are never
// mutated after creation. UserID duplicates the owning Email's user so the
// daily send count does not need a join.
type Message struct {
	ID          string     `json:"id" bson:"_id,omitempty"`
	EmailID     string     `json:"email_id" bson:"email_id"`
	UserID      string     `json:"user_id" bson:"user_id"`
	Direction   Direction  `json:"direction,omitempty" bson:"direction,omitempty"`
	FromAddress string     `json:"from_address" bson:"from_address"`
	ToAddress   string     `json:"to_address" bson:"to_address"`
	Subject     string     `json:"subject" bson:"subject"`
	Content     string     `json:"content" bson:"content"`
	HTML        string     `json:"html,omitempty" bson:"html,omitempty"`
	ReceivedAt  *time.Time `json:"received_at,omitempty" bson:"received_at,omitempty"`
	SentAt      *time.Time `json:"sent_at,omitempty" bson:"sent_at,omitempty"`
}

// OrderTime returns the feed-ordering timestamp: SentAt for the outbound
// feed, ReceivedAt otherwise. The two are never compared against each other.
func (m *Message) OrderTime(feed Direction) time.Time {
	if feed == DirectionSent {
		if m.SentAt != nil {
			return *m.SentAt
		}
		return time.Time{}
	}
	if m.ReceivedAt != nil {
		return *m.ReceivedAt
	}
	return time.Time{}
}
