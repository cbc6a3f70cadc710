package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tempmailhq/tempmail-api/internal/api/metrics"
	"github.com/tempmailhq/tempmail-api/internal/core/domain"
	"github.com/tempmailhq/tempmail-api/internal/core/ports"
	"github.com/tempmailhq/tempmail-api/internal/pkg/cursor"
)

// pageSize is the fixed feed page size. It is deliberately not
// client-supplied: the total count query is priced for pages of this size.
const pageSize = 20

// MessageService implements the message feed, outbound sends, and inbound
// delivery.
type MessageService struct {
	emails   ports.EmailRepository
	messages ports.MessageRepository
	gate     ports.SendPermissionService
	relay    ports.RelaySender
	log      zerolog.Logger
	now      func() time.Time
}

func NewMessageService(
	emails ports.EmailRepository,
	messages ports.MessageRepository,
	gate ports.SendPermissionService,
	relay ports.RelaySender,
	log zerolog.Logger,
) *MessageService {
	return &MessageService{
		emails:   emails,
		messages: messages,
		gate:     gate,
		relay:    relay,
		log:      log,
		now:      time.Now,
	}
}

// List returns one page of a mailbox feed ordered by
// (orderTime DESC, id DESC). The keyset predicate derived from the cursor
// guarantees no row is skipped or repeated across pages, including rows
// that share a timestamp.
func (s *MessageService) List(ctx context.Context, input ports.ListMessagesInput) (*ports.MessageListResult, error) {
	email, err := s.ownedEmail(ctx, input.EmailID, input.UserID)
	if err != nil {
		return nil, err
	}

	if input.Feed == domain.DirectionSent {
		if perm := s.gate.CheckSendHistory(ctx, input.UserID); !perm.CanSend {
			return nil, fmt.Errorf("%w: %s", domain.ErrForbidden, perm.Reason)
		}
	}

	var after *cursor.Cursor
	if input.Cursor != "" {
		c, err := cursor.Decode(input.Cursor)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidCursor, err)
		}
		after = &c
	}

	total, err := s.messages.CountFeed(ctx, email.ID, input.Feed)
	if err != nil {
		return nil, fmt.Errorf("count feed: %w", err)
	}

	// One row of lookahead decides hasMore without a second count query.
	rows, err := s.messages.FindFeedPage(ctx, ports.MessageFeedQuery{
		EmailID: email.ID,
		Feed:    input.Feed,
		After:   after,
		Limit:   pageSize + 1,
	})
	if err != nil {
		return nil, fmt.Errorf("fetch feed page: %w", err)
	}

	result := &ports.MessageListResult{Total: total}
	if len(rows) > pageSize {
		result.Items = rows[:pageSize]
		last := result.Items[pageSize-1]
		result.NextCursor = cursor.Cursor{
			Timestamp: last.OrderTime(input.Feed).UnixMilli(),
			ID:        last.ID,
		}.Encode()
	} else {
		result.Items = rows
	}
	return result, nil
}

// Send authorizes an outbound message through the full gate, hands it to
// the relay, and records it on success. A relay failure surfaces the
// upstream message and stores nothing.
func (s *MessageService) Send(ctx context.Context, input ports.SendMessageInput) (*ports.SendMessageResult, error) {
	email, err := s.ownedEmail(ctx, input.EmailID, input.UserID)
	if err != nil {
		return nil, err
	}

	perm := s.gate.CheckSend(ctx, input.UserID)
	if !perm.CanSend {
		return nil, fmt.Errorf("%w: %s", domain.ErrForbidden, perm.Reason)
	}

	if err := s.relay.Send(ctx, email.Address, input.To, input.Subject, input.Content); err != nil {
		metrics.RelayErrorsTotal.Inc()
		s.log.Warn().Err(err).Str("email_id", email.ID).Msg("relay send failed")
		return nil, err
	}

	sentAt := s.now().UTC()
	msg := &domain.Message{
		ID:          uuid.NewString(),
		EmailID:     email.ID,
		UserID:      email.UserID,
		Direction:   domain.DirectionSent,
		FromAddress: email.Address,
		ToAddress:   input.To,
		Subject:     input.Subject,
		HTML:        input.Content,
		SentAt:      &sentAt,
	}
	if err := s.messages.Insert(ctx, msg); err != nil {
		return nil, fmt.Errorf("record sent message: %w", err)
	}

	s.log.Info().
		Str("email_id", email.ID).
		Str("to", input.To).
		Msg("message sent")

	return &ports.SendMessageResult{Message: msg, RemainingEmails: perm.Remaining}, nil
}

// Deliver stores an inbound message for the mailbox addressed by ToAddress.
// Mail for an unknown or already-expired mailbox is dropped silently; the
// ingestion bridge retries nothing.
func (s *MessageService) Deliver(ctx context.Context, input ports.InboundMessageInput) error {
	email, err := s.emails.FindByAddress(ctx, input.ToAddress)
	if err != nil {
		if errors.Is(err, domain.ErrEmailNotFound) {
			s.log.Debug().Str("to", input.ToAddress).Msg("inbound mail for unknown mailbox dropped")
			return nil
		}
		return fmt.Errorf("resolve recipient: %w", err)
	}

	receivedAt := input.ReceivedAt
	if receivedAt.IsZero() {
		receivedAt = s.now()
	}
	receivedAt = receivedAt.UTC()

	if email.Expired(receivedAt) {
		s.log.Debug().Str("to", input.ToAddress).Msg("inbound mail for expired mailbox dropped")
		return nil
	}

	msg := &domain.Message{
		ID:          uuid.NewString(),
		EmailID:     email.ID,
		UserID:      email.UserID,
		Direction:   domain.DirectionReceived,
		FromAddress: input.FromAddress,
		ToAddress:   email.Address,
		Subject:     input.Subject,
		Content:     input.Content,
		HTML:        input.HTML,
		ReceivedAt:  &receivedAt,
	}
	if err := s.messages.Insert(ctx, msg); err != nil {
		return fmt.Errorf("store inbound message: %w", err)
	}

	s.log.Info().
		Str("email_id", email.ID).
		Str("from", input.FromAddress).
		Msg("message delivered")
	return nil
}

// ownedEmail loads the mailbox and enforces caller ownership. A mailbox
// owned by someone else reads as not found, mirroring the repository-level
// filter the original applied.
func (s *MessageService) ownedEmail(ctx context.Context, emailID, userID string) (*domain.Email, error) {
	if userID == "" {
		return nil, domain.ErrUnauthorized
	}
	email, err := s.emails.FindByID(ctx, emailID)
	if err != nil {
		return nil, err
	}
	if email.UserID != userID {
		return nil, domain.ErrForbidden
	}
	return email, nil
}
