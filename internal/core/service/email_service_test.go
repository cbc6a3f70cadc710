package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tempmailhq/tempmail-api/internal/core/domain"
	"github.com/tempmailhq/tempmail-api/internal/core/ports"
)

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

var provisionNow = time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC)

func newEmailSvc(emails *stubEmailRepo, messages *stubMessageRepo, users *stubUserRepo, config *stubConfigStore) *EmailService {
	svc := NewEmailService(emails, messages, users, config, zerolog.Nop())
	svc.now = func() time.Time { return provisionNow }
	return svc
}

const hourMillis = int64(60 * 60 * 1000)

// ---------------------------------------------------------------------------
// Provision
// ---------------------------------------------------------------------------

func TestEmailService_Provision_HappyPath(t *testing.T) {
	emails := newStubEmailRepo()
	svc := newEmailSvc(emails, newStubMessageRepo(), newStubUserRepo(), newStubConfigStore())

	result, err := svc.Provision(context.Background(), ports.ProvisionEmailInput{
		UserID:       "u1",
		Name:         "Alice",
		Domain:       "tempmail.dev",
		ExpiryMillis: hourMillis,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Address != "alice@tempmail.dev" {
		t.Errorf("expected lowercased address, got %q", result.Address)
	}
	created := emails.byID[result.ID]
	if created == nil {
		t.Fatal("mailbox not persisted")
	}
	want := provisionNow.Add(time.Hour)
	if !created.ExpiresAt.Equal(want) {
		t.Errorf("expected expiry %v, got %v", want, created.ExpiresAt)
	}
}

func TestEmailService_Provision_RandomLocalPart(t *testing.T) {
	emails := newStubEmailRepo()
	svc := newEmailSvc(emails, newStubMessageRepo(), newStubUserRepo(), newStubConfigStore())

	result, err := svc.Provision(context.Background(), ports.ProvisionEmailInput{
		UserID: "u1", Domain: "tempmail.dev", ExpiryMillis: hourMillis,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	local, _, ok := strings.Cut(result.Address, "@")
	if !ok || len(local) != 8 {
		t.Errorf("expected 8-char random local part, got %q", result.Address)
	}
}

func TestEmailService_Provision_NeverExpires(t *testing.T) {
	emails := newStubEmailRepo()
	svc := newEmailSvc(emails, newStubMessageRepo(), newStubUserRepo(), newStubConfigStore())

	result, err := svc.Provision(context.Background(), ports.ProvisionEmailInput{
		UserID: "u1", Name: "keeper", Domain: "tempmail.dev", ExpiryMillis: 0,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !emails.byID[result.ID].ExpiresAt.Equal(domain.NeverExpires) {
		t.Errorf("expected sentinel expiry, got %v", emails.byID[result.ID].ExpiresAt)
	}
}

func TestEmailService_Provision_InvalidExpiry(t *testing.T) {
	svc := newEmailSvc(newStubEmailRepo(), newStubMessageRepo(), newStubUserRepo(), newStubConfigStore())

	_, err := svc.Provision(context.Background(), ports.ProvisionEmailInput{
		UserID: "u1", Name: "x", Domain: "tempmail.dev", ExpiryMillis: 12345,
	})
	if !errors.Is(err, domain.ErrInvalidExpiry) {
		t.Errorf("expected ErrInvalidExpiry, got: %v", err)
	}
}

func TestEmailService_Provision_InvalidDomain(t *testing.T) {
	svc := newEmailSvc(newStubEmailRepo(), newStubMessageRepo(), newStubUserRepo(), newStubConfigStore())

	_, err := svc.Provision(context.Background(), ports.ProvisionEmailInput{
		UserID: "u1", Name: "x", Domain: "gmail.com", ExpiryMillis: hourMillis,
	})
	if !errors.Is(err, domain.ErrInvalidDomain) {
		t.Errorf("expected ErrInvalidDomain, got: %v", err)
	}
}

func TestEmailService_Provision_ConfiguredDomains(t *testing.T) {
	cfg := newStubConfigStore()
	cfg.values[ports.ConfigKeyEmailDomains] = "mail.example,alt.example"
	svc := newEmailSvc(newStubEmailRepo(), newStubMessageRepo(), newStubUserRepo(), cfg)

	if _, err := svc.Provision(context.Background(), ports.ProvisionEmailInput{
		UserID: "u1", Name: "x", Domain: "alt.example", ExpiryMillis: hourMillis,
	}); err != nil {
		t.Fatalf("configured domain rejected: %v", err)
	}

	// The compiled default stops being served once domains are configured.
	if _, err := svc.Provision(context.Background(), ports.ProvisionEmailInput{
		UserID: "u1", Name: "y", Domain: "tempmail.dev", ExpiryMillis: hourMillis,
	}); !errors.Is(err, domain.ErrInvalidDomain) {
		t.Errorf("expected ErrInvalidDomain for unlisted default, got: %v", err)
	}
}

func TestEmailService_Provision_AddressTaken(t *testing.T) {
	emails := newStubEmailRepo()
	emails.byID["existing"] = &domain.Email{
		ID: "existing", Address: "alice@tempmail.dev", UserID: "someone",
		ExpiresAt: domain.NeverExpires,
	}
	svc := newEmailSvc(emails, newStubMessageRepo(), newStubUserRepo(), newStubConfigStore())

	_, err := svc.Provision(context.Background(), ports.ProvisionEmailInput{
		UserID: "u1", Name: "ALICE", Domain: "tempmail.dev", ExpiryMillis: hourMillis,
	})
	if !errors.Is(err, domain.ErrAddressTaken) {
		t.Errorf("expected ErrAddressTaken, got: %v", err)
	}
}

func TestEmailService_Provision_MailboxCap(t *testing.T) {
	emails := newStubEmailRepo()
	for i := 0; i < defaultMaxEmails; i++ {
		id := fmt.Sprintf("e%02d", i)
		emails.byID[id] = &domain.Email{
			ID: id, Address: id + "@tempmail.dev", UserID: "u1",
			ExpiresAt: domain.NeverExpires,
		}
	}
	svc := newEmailSvc(emails, newStubMessageRepo(), newStubUserRepo(), newStubConfigStore())

	_, err := svc.Provision(context.Background(), ports.ProvisionEmailInput{
		UserID: "u1", Name: "onemore", Domain: "tempmail.dev", ExpiryMillis: hourMillis,
	})
	if !errors.Is(err, domain.ErrMailboxLimit) {
		t.Errorf("expected ErrMailboxLimit, got: %v", err)
	}
}

func TestEmailService_Provision_ExpiredMailboxesFreeTheCap(t *testing.T) {
	emails := newStubEmailRepo()
	for i := 0; i < defaultMaxEmails; i++ {
		id := fmt.Sprintf("e%02d", i)
		emails.byID[id] = &domain.Email{
			ID: id, Address: id + "@tempmail.dev", UserID: "u1",
			ExpiresAt: provisionNow.Add(-time.Hour),
		}
	}
	svc := newEmailSvc(emails, newStubMessageRepo(), newStubUserRepo(), newStubConfigStore())

	if _, err := svc.Provision(context.Background(), ports.ProvisionEmailInput{
		UserID: "u1", Name: "fresh", Domain: "tempmail.dev", ExpiryMillis: hourMillis,
	}); err != nil {
		t.Errorf("expired mailboxes must not count against the cap, got: %v", err)
	}
}

func TestEmailService_Provision_EmperorExemptFromCap(t *testing.T) {
	emails := newStubEmailRepo()
	for i := 0; i < defaultMaxEmails; i++ {
		id := fmt.Sprintf("e%02d", i)
		emails.byID[id] = &domain.Email{
			ID: id, Address: id + "@tempmail.dev", UserID: "u1",
			ExpiresAt: domain.NeverExpires,
		}
	}
	users := newStubUserRepo()
	users.byID["u1"] = []string{domain.RoleEmperor}
	svc := newEmailSvc(emails, newStubMessageRepo(), users, newStubConfigStore())

	if _, err := svc.Provision(context.Background(), ports.ProvisionEmailInput{
		UserID: "u1", Name: "royal", Domain: "tempmail.dev", ExpiryMillis: hourMillis,
	}); err != nil {
		t.Errorf("emperor must bypass the cap, got: %v", err)
	}
}

func TestEmailService_Provision_ConfiguredCap(t *testing.T) {
	emails := newStubEmailRepo()
	emails.byID["e1"] = &domain.Email{
		ID: "e1", Address: "e1@tempmail.dev", UserID: "u1", ExpiresAt: domain.NeverExpires,
	}
	cfg := newStubConfigStore()
	cfg.values[ports.ConfigKeyMaxEmails] = "1"
	svc := newEmailSvc(emails, newStubMessageRepo(), newStubUserRepo(), cfg)

	_, err := svc.Provision(context.Background(), ports.ProvisionEmailInput{
		UserID: "u1", Name: "x", Domain: "tempmail.dev", ExpiryMillis: hourMillis,
	})
	if !errors.Is(err, domain.ErrMailboxLimit) {
		t.Errorf("expected configured cap of 1 enforced, got: %v", err)
	}
}

// ---------------------------------------------------------------------------
// Delete
// ---------------------------------------------------------------------------

func TestEmailService_Delete_CascadesMessages(t *testing.T) {
	emails := newStubEmailRepo()
	emails.byID["e1"] = &domain.Email{ID: "e1", Address: "e1@tempmail.dev", UserID: "u1", ExpiresAt: domain.NeverExpires}
	messages := newStubMessageRepo()
	ts := provisionNow
	messages.rows = append(messages.rows,
		&domain.Message{ID: "m1", EmailID: "e1", Direction: domain.DirectionReceived, ReceivedAt: &ts},
		&domain.Message{ID: "m2", EmailID: "other", Direction: domain.DirectionReceived, ReceivedAt: &ts},
	)

	svc := newEmailSvc(emails, messages, newStubUserRepo(), newStubConfigStore())
	if err := svc.Delete(context.Background(), "e1", "u1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, ok := emails.byID["e1"]; ok {
		t.Error("mailbox still present after delete")
	}
	if len(messages.rows) != 1 || messages.rows[0].EmailID != "other" {
		t.Errorf("expected only the other mailbox's messages to survive, got %d rows", len(messages.rows))
	}
}

func TestEmailService_Delete_ForeignMailboxForbidden(t *testing.T) {
	emails := newStubEmailRepo()
	emails.byID["e1"] = &domain.Email{ID: "e1", UserID: "owner", ExpiresAt: domain.NeverExpires}

	svc := newEmailSvc(emails, newStubMessageRepo(), newStubUserRepo(), newStubConfigStore())
	if err := svc.Delete(context.Background(), "e1", "intruder"); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("expected ErrForbidden, got: %v", err)
	}
}

func TestEmailService_Delete_NotFound(t *testing.T) {
	svc := newEmailSvc(newStubEmailRepo(), newStubMessageRepo(), newStubUserRepo(), newStubConfigStore())
	if err := svc.Delete(context.Background(), "ghost", "u1"); !errors.Is(err, domain.ErrEmailNotFound) {
		t.Errorf("expected ErrEmailNotFound, got: %v", err)
	}
}

// ---------------------------------------------------------------------------
// PurgeExpired
// ---------------------------------------------------------------------------

func TestEmailService_PurgeExpired(t *testing.T) {
	emails := newStubEmailRepo()
	emails.byID["dead"] = &domain.Email{ID: "dead", Address: "dead@tempmail.dev", UserID: "u1",
		ExpiresAt: provisionNow.Add(-time.Hour)}
	emails.byID["alive"] = &domain.Email{ID: "alive", Address: "alive@tempmail.dev", UserID: "u1",
		ExpiresAt: domain.NeverExpires}
	messages := newStubMessageRepo()
	ts := provisionNow
	messages.rows = append(messages.rows,
		&domain.Message{ID: "m1", EmailID: "dead", Direction: domain.DirectionReceived, ReceivedAt: &ts},
		&domain.Message{ID: "m2", EmailID: "alive", Direction: domain.DirectionReceived, ReceivedAt: &ts},
	)

	svc := newEmailSvc(emails, messages, newStubUserRepo(), newStubConfigStore())
	deleted, err := svc.PurgeExpired(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if deleted != 1 {
		t.Errorf("expected 1 mailbox purged, got %d", deleted)
	}
	if _, ok := emails.byID["dead"]; ok {
		t.Error("expired mailbox survived the purge")
	}
	if _, ok := emails.byID["alive"]; !ok {
		t.Error("live mailbox purged")
	}
	if len(messages.rows) != 1 || messages.rows[0].EmailID != "alive" {
		t.Errorf("expected expired mailbox's messages removed, got %d rows", len(messages.rows))
	}
}

func TestEmailService_PurgeExpired_NothingToDo(t *testing.T) {
	emails := newStubEmailRepo()
	emails.byID["alive"] = &domain.Email{ID: "alive", ExpiresAt: domain.NeverExpires}
	messages := newStubMessageRepo()

	svc := newEmailSvc(emails, messages, newStubUserRepo(), newStubConfigStore())
	deleted, err := svc.PurgeExpired(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if deleted != 0 {
		t.Errorf("expected 0 purged, got %d", deleted)
	}
	if len(messages.purged) != 0 {
		t.Error("no message deletion should be issued when nothing expired")
	}
}
