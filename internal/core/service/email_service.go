package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tempmailhq/tempmail-api/internal/core/domain"
	"github.com/tempmailhq/tempmail-api/internal/core/ports"
)

const (
	defaultDomain      = "tempmail.dev"
	defaultMaxEmails   = 30
	cleanupBatchSize   = 100
	randomLocalPartLen = 8
)

// validExpiryOptions are the provisioning choices exposed to clients, in
// milliseconds. 0 means the mailbox never expires.
var validExpiryOptions = []int64{
	time.Hour.Milliseconds(),
	24 * time.Hour.Milliseconds(),
	3 * 24 * time.Hour.Milliseconds(),
	0,
}

// EmailService implements mailbox provisioning, deletion, and expiry
// cleanup.
type EmailService struct {
	emails   ports.EmailRepository
	messages ports.MessageRepository
	users    ports.UserRepository
	config   ports.ConfigStore
	log      zerolog.Logger
	now      func() time.Time
}

func NewEmailService(
	emails ports.EmailRepository,
	messages ports.MessageRepository,
	users ports.UserRepository,
	config ports.ConfigStore,
	log zerolog.Logger,
) *EmailService {
	return &EmailService{
		emails:   emails,
		messages: messages,
		users:    users,
		config:   config,
		log:      log,
		now:      time.Now,
	}
}

// Provision creates a new mailbox. Non-emperor users are capped at the
// configured number of active mailboxes; the address must use a served
// domain and be unique case-insensitively.
func (s *EmailService) Provision(ctx context.Context, input ports.ProvisionEmailInput) (*ports.ProvisionEmailResult, error) {
	if input.UserID == "" {
		return nil, domain.ErrUnauthorized
	}
	if !validExpiry(input.ExpiryMillis) {
		return nil, domain.ErrInvalidExpiry
	}

	domains, err := s.servedDomains(ctx)
	if err != nil {
		return nil, fmt.Errorf("load domains: %w", err)
	}
	if !contains(domains, input.Domain) {
		return nil, domain.ErrInvalidDomain
	}

	now := s.now().UTC()

	exempt, err := s.isEmperor(ctx, input.UserID)
	if err != nil {
		return nil, fmt.Errorf("resolve roles: %w", err)
	}
	if !exempt {
		maxEmails, err := s.maxActiveEmails(ctx)
		if err != nil {
			return nil, fmt.Errorf("load mailbox cap: %w", err)
		}
		active, err := s.emails.CountActive(ctx, input.UserID, now)
		if err != nil {
			return nil, fmt.Errorf("count active mailboxes: %w", err)
		}
		if active >= int64(maxEmails) {
			return nil, domain.ErrMailboxLimit
		}
	}

	local := strings.ToLower(strings.TrimSpace(input.Name))
	if local == "" {
		local = randomLocalPart()
	}
	address := local + "@" + input.Domain

	if _, err := s.emails.FindByAddress(ctx, address); err == nil {
		return nil, domain.ErrAddressTaken
	} else if !errors.Is(err, domain.ErrEmailNotFound) {
		return nil, fmt.Errorf("check address: %w", err)
	}

	expiresAt := domain.NeverExpires
	if input.ExpiryMillis > 0 {
		expiresAt = now.Add(time.Duration(input.ExpiryMillis) * time.Millisecond)
	}

	email := &domain.Email{
		ID:        uuid.NewString(),
		Address:   address,
		UserID:    input.UserID,
		CreatedAt: now,
		ExpiresAt: expiresAt,
	}
	if err := s.emails.Create(ctx, email); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("email_id", email.ID).
		Str("address", email.Address).
		Str("user_id", email.UserID).
		Msg("mailbox provisioned")

	return &ports.ProvisionEmailResult{ID: email.ID, Address: email.Address}, nil
}

// Delete removes the mailbox and all of its messages. Messages go first so
// a failure between the two deletes cannot orphan them past their mailbox.
func (s *EmailService) Delete(ctx context.Context, emailID, userID string) error {
	if userID == "" {
		return domain.ErrUnauthorized
	}
	email, err := s.emails.FindByID(ctx, emailID)
	if err != nil {
		return err
	}
	if email.UserID != userID {
		return domain.ErrForbidden
	}

	if err := s.messages.DeleteByEmailIDs(ctx, []string{email.ID}); err != nil {
		return fmt.Errorf("cascade messages: %w", err)
	}
	if err := s.emails.Delete(ctx, email.ID); err != nil {
		return fmt.Errorf("delete mailbox: %w", err)
	}

	s.log.Info().Str("email_id", email.ID).Msg("mailbox deleted")
	return nil
}

// PurgeExpired deletes up to one batch of expired mailboxes together with
// their messages and reports how many mailboxes went away. Running it again
// picks up the next batch; running it with nothing expired is a no-op.
func (s *EmailService) PurgeExpired(ctx context.Context) (int64, error) {
	ids, err := s.emails.FindExpiredIDs(ctx, s.now().UTC(), cleanupBatchSize)
	if err != nil {
		return 0, fmt.Errorf("find expired mailboxes: %w", err)
	}
	if len(ids) == 0 {
		return 0, nil
	}

	if err := s.messages.DeleteByEmailIDs(ctx, ids); err != nil {
		return 0, fmt.Errorf("cascade messages: %w", err)
	}
	deleted, err := s.emails.DeleteByIDs(ctx, ids)
	if err != nil {
		return 0, fmt.Errorf("delete expired mailboxes: %w", err)
	}

	s.log.Info().Int64("deleted", deleted).Msg("expired mailboxes purged")
	return deleted, nil
}

func (s *EmailService) servedDomains(ctx context.Context) ([]string, error) {
	raw, err := s.config.Get(ctx, ports.ConfigKeyEmailDomains)
	if err != nil {
		return nil, err
	}
	if raw == "" {
		return []string{defaultDomain}, nil
	}
	return strings.Split(raw, ","), nil
}

func (s *EmailService) maxActiveEmails(ctx context.Context) (int, error) {
	raw, err := s.config.Get(ctx, ports.ConfigKeyMaxEmails)
	if err != nil {
		return 0, err
	}
	if raw == "" {
		return defaultMaxEmails, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return defaultMaxEmails, nil
	}
	return n, nil
}

func (s *EmailService) isEmperor(ctx context.Context, userID string) (bool, error) {
	roles, err := s.users.RoleNames(ctx, userID)
	if err != nil {
		return false, err
	}
	return contains(roles, domain.RoleEmperor), nil
}

func validExpiry(millis int64) bool {
	for _, opt := range validExpiryOptions {
		if millis == opt {
			return true
		}
	}
	return false
}

func contains(xs []string, want string) bool {
	for _, x := range xs {
		if x == want {
			return true
		}
	}
	return false
}

func randomLocalPart() string {
	b := make([]byte, randomLocalPartLen/2)
	if _, err := rand.Read(b); err != nil {
		return strings.ToLower(uuid.NewString()[:randomLocalPartLen])
	}
	return hex.EncodeToString(b)
}
