package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tempmailhq/tempmail-api/internal/api/metrics"
	"github.com/tempmailhq/tempmail-api/internal/core/domain"
	"github.com/tempmailhq/tempmail-api/internal/core/ports"
)

// MessageHandler handles feed reads, outbound sends, and the standalone
// permission probe.
type MessageHandler struct {
	messages ports.MessageService
	gate     ports.SendPermissionService
}

func NewMessageHandler(messages ports.MessageService, gate ports.SendPermissionService) *MessageHandler {
	return &MessageHandler{messages: messages, gate: gate}
}

// List handles GET /v1/emails/:id/messages?type=&cursor=.
//
// type selects the feed: "received" (default) or "sent". cursor is the
// opaque token from the previous page's next_cursor; omit it for page one.
func (h *MessageHandler) List(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	feed, err := parseFeed(c.QueryParam("type"))
	if err != nil {
		return err
	}

	result, err := h.messages.List(c.Request().Context(), ports.ListMessagesInput{
		EmailID: c.Param("id"),
		UserID:  userID,
		Feed:    feed,
		Cursor:  c.QueryParam("cursor"),
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toListResponse(result))
}

// Send handles POST /v1/emails/:id/send.
func (h *MessageHandler) Send(c echo.Context) error {
	var req sendMessageRequest
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

	result, err := h.messages.Send(c.Request().Context(), ports.SendMessageInput{
		EmailID: c.Param("id"),
		UserID:  userID,
		To:      req.To,
		Subject: req.Subject,
		Content: req.Content,
	})
	if err != nil {
		return err
	}

	metrics.MessagesSentTotal.Inc()
	return c.JSON(http.StatusOK, sendMessageResponse{
		ID:              result.Message.ID,
		SentAt:          *result.Message.SentAt,
		RemainingEmails: result.RemainingEmails,
	})
}

// SendPermission handles GET /v1/send-permission. It exposes the full gate
// decision without sending anything, so clients can grey out the compose
// button ahead of time.
func (h *MessageHandler) SendPermission(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	perm := h.gate.CheckSend(c.Request().Context(), userID)
	return c.JSON(http.StatusOK, perm)
}

func parseFeed(raw string) (domain.Direction, error) {
	switch raw {
	case "", "received":
		return domain.DirectionReceived, nil
	case "sent":
		return domain.DirectionSent, nil
	default:
		return "", echo.NewHTTPError(http.StatusBadRequest, "type must be received or sent")
	}
}
