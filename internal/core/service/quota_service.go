package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"

	"github.com/tempmailhq/tempmail-api/internal/api/metrics"
	"github.com/tempmailhq/tempmail-api/internal/core/domain"
	"github.com/tempmailhq/tempmail-api/internal/core/ports"
)

// QuotaService resolves per-role daily send limits and implements the send
// authorization gate. All collaborators are injected so tests can substitute
// doubles; nothing is cached between requests.
type QuotaService struct {
	users    ports.UserRepository
	messages ports.MessageRepository
	config   ports.ConfigStore
	log      zerolog.Logger
	// now is overridable in tests; defaults to time.Now.
	now func() time.Time
}

func NewQuotaService(
	users ports.UserRepository,
	messages ports.MessageRepository,
	config ports.ConfigStore,
	log zerolog.Logger,
) *QuotaService {
	return &QuotaService{
		users:    users,
		messages: messages,
		config:   config,
		log:      log,
		now:      time.Now,
	}
}

// CheckSend runs the full gate: service-enabled flag, role limit, and
// today's send count. Collaborator failures are converted to a denial with
// ReasonCheckFailed — a lookup failure must never read as "allowed".
func (s *QuotaService) CheckSend(ctx context.Context, userID string) domain.SendPermission {
	return s.check(ctx, userID, false)
}

// CheckSendHistory runs the relaxed gate used to authorize viewing sent
// history: once the role permits sending at all, the daily count is skipped.
func (s *QuotaService) CheckSendHistory(ctx context.Context, userID string) domain.SendPermission {
	return s.check(ctx, userID, true)
}

func (s *QuotaService) check(ctx context.Context, userID string, skipDailyCount bool) domain.SendPermission {
	enabled, err := s.config.Get(ctx, ports.ConfigKeyServiceEnabled)
	if err != nil {
		s.log.Error().Err(err).Str("user_id", userID).Msg("config store unreachable during permission check")
		return s.deny(domain.ReasonCheckFailed, nil)
	}
	if enabled != "true" {
		return s.deny(domain.ReasonServiceDisabled, nil)
	}

	limit, err := s.dailyLimit(ctx, userID)
	if err != nil {
		s.log.Error().Err(err).Str("user_id", userID).Msg("daily limit resolution failed")
		return s.deny(domain.ReasonCheckFailed, nil)
	}
	if limit == domain.LimitForbidden {
		return s.deny(domain.ReasonNoPermission, nil)
	}

	if skipDailyCount || limit == domain.LimitUnlimited {
		return domain.SendPermission{CanSend: true}
	}

	sentToday, err := s.messages.CountSentSince(ctx, userID, s.todayStart())
	if err != nil {
		s.log.Error().Err(err).Str("user_id", userID).Msg("send count query failed")
		return s.deny(domain.ReasonCheckFailed, nil)
	}

	if int(sentToday) >= limit {
		zero := 0
		return s.deny(domain.ReasonLimitReached, &zero)
	}
	remaining := limit - int(sentToday)
	return domain.SendPermission{CanSend: true, Remaining: &remaining}
}

func (s *QuotaService) deny(reason string, remaining *int) domain.SendPermission {
	metrics.SendDenialsTotal.WithLabelValues(denialLabel(reason)).Inc()
	return domain.SendPermission{Reason: reason, Remaining: remaining}
}

func denialLabel(reason string) string {
	switch reason {
	case domain.ReasonServiceDisabled:
		return "disabled"
	case domain.ReasonNoPermission:
		return "no_permission"
	case domain.ReasonLimitReached:
		return "limit_reached"
	default:
		return "check_failed"
	}
}

// dailyLimit maps a user to their effective daily send limit. The highest
// privilege role present wins; holding none of the known roles means
// sending is forbidden.
func (s *QuotaService) dailyLimit(ctx context.Context, userID string) (int, error) {
	roleNames, err := s.users.RoleNames(ctx, userID)
	if err != nil {
		return 0, err
	}

	limits, err := s.effectiveLimits(ctx)
	if err != nil {
		return 0, err
	}

	held := make(map[string]bool, len(roleNames))
	for _, r := range roleNames {
		held[r] = true
	}
	for _, role := range domain.RolePrecedence {
		if held[role] {
			return limits[role], nil
		}
	}
	return domain.LimitForbidden, nil
}

// effectiveLimits merges config store overrides over the compiled defaults.
// Only duke and knight are overridable; emperor stays unlimited and
// civilian stays forbidden regardless of stored values.
func (s *QuotaService) effectiveLimits(ctx context.Context) (map[string]int, error) {
	limits := map[string]int{
		domain.RoleEmperor:  domain.DefaultDailyLimits[domain.RoleEmperor],
		domain.RoleDuke:     domain.DefaultDailyLimits[domain.RoleDuke],
		domain.RoleKnight:   domain.DefaultDailyLimits[domain.RoleKnight],
		domain.RoleCivilian: domain.DefaultDailyLimits[domain.RoleCivilian],
	}

	raw, err := s.config.Get(ctx, ports.ConfigKeyRoleLimits)
	if err != nil {
		return nil, err
	}
	if raw == "" {
		return limits, nil
	}

	var overrides struct {
		Duke   *int `json:"duke"`
		Knight *int `json:"knight"`
	}
	if err := json.Unmarshal([]byte(raw), &overrides); err != nil {
		// A corrupt override blob falls back to defaults rather than
		// blocking every send.
		s.log.Warn().Err(err).Msg("ignoring unparseable role limit overrides")
		return limits, nil
	}
	if overrides.Duke != nil {
		limits[domain.RoleDuke] = *overrides.Duke
	}
	if overrides.Knight != nil {
		limits[domain.RoleKnight] = *overrides.Knight
	}
	return limits, nil
}

// todayStart returns UTC midnight of the current day. The counting window
// is the half-open interval [todayStart, todayStart+24h).
func (s *QuotaService) todayStart() time.Time {
	now := s.now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}
