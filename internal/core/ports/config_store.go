package ports

import "context"

// Well-known config store keys. Names match the original deployment's KV
// namespace so an existing dump migrates unchanged.
const (
	ConfigKeyServiceEnabled = "EMAIL_SERVICE_ENABLED"
	ConfigKeyRoleLimits     = "EMAIL_ROLE_LIMITS"
	ConfigKeyRelayAPIKey    = "RESEND_API_KEY"
	ConfigKeyEmailDomains   = "EMAIL_DOMAINS"
	ConfigKeyMaxEmails      = "MAX_EMAILS"
)

// ConfigStore is the service-wide key/value store for runtime-mutable
// settings. Reads are eventually consistent across instances.
type ConfigStore interface {
	// Get returns the stored value, or "" when the key is absent. Callers
	// fall back to compiled defaults on "".
	Get(ctx context.Context, key string) (string, error)
	Put(ctx context.Context, key, value string) error
}
