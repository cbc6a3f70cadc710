package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tempmailhq/tempmail-api/internal/api/metrics"
	"github.com/tempmailhq/tempmail-api/internal/core/ports"
)

// EmailHandler handles mailbox provisioning and deletion.
type EmailHandler struct {
	service ports.EmailService
}

func NewEmailHandler(service ports.EmailService) *EmailHandler {
	return &EmailHandler{service: service}
}

// Create handles POST /v1/emails.
func (h *EmailHandler) Create(c echo.Context) error {
	var req createEmailRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	result, err := h.service.Provision(c.Request().Context(), ports.ProvisionEmailInput{
		UserID:       userID,
		Name:         req.Name,
		Domain:       req.Domain,
		ExpiryMillis: req.Expiry,
	})
	if err != nil {
		return err
	}

	metrics.MailboxesCreatedTotal.Inc()
	return c.JSON(http.StatusCreated, createEmailResponse{
		ID:      result.ID,
		Address: result.Address,
	})
}

// Delete handles DELETE /v1/emails/:id. The mailbox's messages are removed
// with it.
func (h *EmailHandler) Delete(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	if err := h.service.Delete(c.Request().Context(), c.Param("id"), userID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
