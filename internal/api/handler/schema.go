package handler

import "time"

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Mailbox types ---

type createEmailRequest struct {
	// Name is the requested local part; empty means a random one.
	Name   string `json:"name"`
	Domain string `json:"domain" validate:"required,fqdn"`
	// Expiry is the mailbox lifetime in milliseconds; 0 means permanent.
	Expiry int64 `json:"expiry"`
}

type createEmailResponse struct {
	ID      string `json:"id"`
	Address string `json:"address"`
}

// --- Message types ---

type sendMessageRequest struct {
	To      string `json:"to"      validate:"required,email"`
	Subject string `json:"subject" validate:"required"`
	Content string `json:"content" validate:"required"`
}

type sendMessageResponse struct {
	ID              string    `json:"id"`
	SentAt          time.Time `json:"sent_at"`
	RemainingEmails *int      `json:"remaining_emails,omitempty"`
}

// messageResponse is one feed item. Exactly one of received_at / sent_at is
// present, matching the message's direction.
type messageResponse struct {
	ID          string     `json:"id"`
	Direction   string     `json:"direction,omitempty"`
	FromAddress string     `json:"from_address"`
	ToAddress   string     `json:"to_address"`
	Subject     string     `json:"subject"`
	Content     string     `json:"content,omitempty"`
	HTML        string     `json:"html,omitempty"`
	ReceivedAt  *time.Time `json:"received_at,omitempty"`
	SentAt      *time.Time `json:"sent_at,omitempty"`
}

type listMessagesResponse struct {
	Data []messageResponse `json:"data"`
	// NextCursor is absent on the last page.
	NextCursor string `json:"next_cursor,omitempty"`
	// Total counts the whole feed, not the remainder past the cursor.
	Total int64 `json:"total"`
}

// --- Inbound ingestion types ---

type inboundMessageRequest struct {
	To      string `json:"to"   validate:"required,email"`
	From    string `json:"from" validate:"required"`
	Subject string `json:"subject"`
	Content string `json:"content"`
	HTML    string `json:"html"`
	// ReceivedAt defaults to ingestion time when omitted.
	ReceivedAt time.Time `json:"received_at"`
}

type acceptedResponse struct {
	Message string `json:"message"`
	Count   int    `json:"count,omitempty"`
}

// --- Admin types ---

type roleLimitsPayload struct {
	Duke   *int `json:"duke,omitempty"`
	Knight *int `json:"knight,omitempty"`
}

type serviceConfigResponse struct {
	Enabled    bool              `json:"enabled"`
	RoleLimits roleLimitsPayload `json:"role_limits"`
	Domains    []string          `json:"domains"`
	MaxEmails  int               `json:"max_emails"`
}

// updateServiceConfigRequest applies partial updates: only non-nil fields
// are written to the config store.
type updateServiceConfigRequest struct {
	Enabled     *bool              `json:"enabled"`
	RoleLimits  *roleLimitsPayload `json:"role_limits"`
	Domains     []string           `json:"domains"`
	MaxEmails   *int               `json:"max_emails" validate:"omitempty,gt=0"`
	RelayAPIKey *string            `json:"relay_api_key"`
}

type cleanupResponse struct {
	Deleted int64 `json:"deleted"`
}
