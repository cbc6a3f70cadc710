package domain

import "fmt"

// Daily send limit semantics.
const (
	LimitUnlimited = 0
	LimitForbidden = -1
)

// DefaultDailyLimits are the compiled per-role send limits. Duke and knight
// can be overridden through the config store; emperor and civilian are fixed.
var DefaultDailyLimits = map[string]int{
	RoleEmperor:  LimitUnlimited,
	RoleDuke:     5,
	RoleKnight:   2,
	RoleCivilian: LimitForbidden,
}

// Gate denial reasons, surfaced verbatim to callers.
const (
	ReasonServiceDisabled = "email sending service is not enabled"
	ReasonNoPermission    = "role has no send permission"
	ReasonLimitReached    = "daily send limit reached"
	ReasonCheckFailed     = "permission check failed"
)

// SendPermission is the gate's decision for one request. It is computed
// fresh every time and never cached: Remaining depends on a live count of
// today's sends. Remaining is nil for unlimited senders and for denials
// that never reached the counting step.
type SendPermission struct {
	CanSend   bool   `json:"can_send"`
	Reason    string `json:"error,omitempty"`
	Remaining *int   `json:"remaining_emails,omitempty"`
}

// RelayError carries the upstream relay's failure message. The message is
// shown to the end user unmodified.
type RelayError struct {
	Message string
}

func (e *RelayError) Error() string {
	return fmt.Sprintf("relay: %s", e.Message)
}
