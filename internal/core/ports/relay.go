package ports

import "context"

// RelaySender delivers an outbound message through the third-party relay.
// A non-success response is returned as *domain.RelayError carrying the
// upstream message; the call is synchronous and not retried.
type RelaySender interface {
	Send(ctx context.Context, from, to, subject, html string) error
}
