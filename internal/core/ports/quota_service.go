package ports

import (
	"context"

	"github.com/tempmailhq/tempmail-api/internal/core/domain"
)

// SendPermissionService is the allow/deny decision point guarding outbound
// sends and sent-history views. Implementations never return an error: a
// failed collaborator lookup is a denial, not an exception.
type SendPermissionService interface {
	// CheckSend runs the full gate including today's send count.
	CheckSend(ctx context.Context, userID string) domain.SendPermission
	// CheckSendHistory runs the relaxed gate used only to authorize viewing
	// already-sent history: service-enabled and role checks, no counting.
	CheckSendHistory(ctx context.Context, userID string) domain.SendPermission
}
