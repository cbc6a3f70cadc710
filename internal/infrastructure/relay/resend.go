// Package relay implements the outbound mail relay client against the
// Resend HTTP API.
package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tempmailhq/tempmail-api/internal/core/domain"
	"github.com/tempmailhq/tempmail-api/internal/core/ports"
)

const defaultBaseURL = "https://api.resend.com"

// ResendClient sends mail through Resend. The API key is read from the
// config store on every send so administrators can rotate it without a
// restart.
type ResendClient struct {
	httpClient *http.Client
	baseURL    string
	config     ports.ConfigStore
}

func NewResendClient(config ports.ConfigStore, baseURL string) *ResendClient {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &ResendClient{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    baseURL,
		config:     config,
	}
}

type sendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

type sendError struct {
	Message string `json:"message"`
}

// Send posts the message to the relay. A non-2xx response becomes a
// *domain.RelayError carrying the upstream message verbatim; no retry is
// attempted.
func (c *ResendClient) Send(ctx context.Context, from, to, subject, html string) error {
	apiKey, err := c.config.Get(ctx, ports.ConfigKeyRelayAPIKey)
	if err != nil {
		return fmt.Errorf("load relay api key: %w", err)
	}
	if apiKey == "" {
		return &domain.RelayError{Message: "sending service is not configured"}
	}

	body, err := json.Marshal(sendRequest{
		From:    from,
		To:      []string{to},
		Subject: subject,
		HTML:    html,
	})
	if err != nil {
		return fmt.Errorf("encode relay request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/emails", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build relay request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("relay request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var upstream sendError
	if json.Unmarshal(raw, &upstream) == nil && upstream.Message != "" {
		return &domain.RelayError{Message: upstream.Message}
	}
	return &domain.RelayError{Message: fmt.Sprintf("relay returned status %d", resp.StatusCode)}
}
