package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/tempmailhq/tempmail-api/internal/api/metrics"
	"github.com/tempmailhq/tempmail-api/internal/core/ports"
)

// AdminHandler exposes runtime service configuration and the manual
// cleanup trigger. All routes are emperor-only, enforced by RBAC in the
// router.
type AdminHandler struct {
	config ports.ConfigStore
	emails ports.EmailService
}

func NewAdminHandler(config ports.ConfigStore, emails ports.EmailService) *AdminHandler {
	return &AdminHandler{config: config, emails: emails}
}

// GetServiceConfig handles GET /v1/admin/email-service.
func (h *AdminHandler) GetServiceConfig(c echo.Context) error {
	ctx := c.Request().Context()
	resp := serviceConfigResponse{}

	enabled, err := h.config.Get(ctx, ports.ConfigKeyServiceEnabled)
	if err != nil {
		return err
	}
	resp.Enabled = enabled == "true"

	rawLimits, err := h.config.Get(ctx, ports.ConfigKeyRoleLimits)
	if err != nil {
		return err
	}
	if rawLimits != "" {
		// Unparseable overrides read back as empty; the quota engine
		// ignores them the same way.
		_ = json.Unmarshal([]byte(rawLimits), &resp.RoleLimits)
	}

	rawDomains, err := h.config.Get(ctx, ports.ConfigKeyEmailDomains)
	if err != nil {
		return err
	}
	if rawDomains != "" {
		resp.Domains = strings.Split(rawDomains, ",")
	}

	rawMax, err := h.config.Get(ctx, ports.ConfigKeyMaxEmails)
	if err != nil {
		return err
	}
	if n, err := strconv.Atoi(rawMax); err == nil {
		resp.MaxEmails = n
	}

	return c.JSON(http.StatusOK, resp)
}

// UpdateServiceConfig handles PUT /v1/admin/email-service. Only the fields
// present in the request are written; everything else keeps its stored
// value. The relay API key is write-only and never read back.
func (h *AdminHandler) UpdateServiceConfig(c echo.Context) error {
	var req updateServiceConfigRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	ctx := c.Request().Context()

	if req.Enabled != nil {
		if err := h.config.Put(ctx, ports.ConfigKeyServiceEnabled, strconv.FormatBool(*req.Enabled)); err != nil {
			return err
		}
	}
	if req.RoleLimits != nil {
		raw, err := json.Marshal(req.RoleLimits)
		if err != nil {
			return err
		}
		if err := h.config.Put(ctx, ports.ConfigKeyRoleLimits, string(raw)); err != nil {
			return err
		}
	}
	if len(req.Domains) > 0 {
		if err := h.config.Put(ctx, ports.ConfigKeyEmailDomains, strings.Join(req.Domains, ",")); err != nil {
			return err
		}
	}
	if req.MaxEmails != nil {
		if err := h.config.Put(ctx, ports.ConfigKeyMaxEmails, strconv.Itoa(*req.MaxEmails)); err != nil {
			return err
		}
	}
	if req.RelayAPIKey != nil {
		if err := h.config.Put(ctx, ports.ConfigKeyRelayAPIKey, *req.RelayAPIKey); err != nil {
			return err
		}
	}

	return h.GetServiceConfig(c)
}

// Cleanup handles POST /v1/admin/cleanup — deletes one batch of expired
// mailboxes and their messages.
func (h *AdminHandler) Cleanup(c echo.Context) error {
	deleted, err := h.emails.PurgeExpired(c.Request().Context())
	if err != nil {
		return err
	}
	metrics.MailboxesPurgedTotal.Add(float64(deleted))
	return c.JSON(http.StatusOK, cleanupResponse{Deleted: deleted})
}
