package handler

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tempmailhq/tempmail-api/internal/core/ports"
)

// InboundDispatcher is the interface the handler uses to enqueue inbound
// mail for asynchronous delivery.
type InboundDispatcher interface {
	Enqueue(msg ports.InboundMessageInput)
	EnqueueBatch(msgs []ports.InboundMessageInput)
}

// InboundHandler ingests mail pushed by the SMTP bridge.
type InboundHandler struct {
	dispatcher InboundDispatcher
}

// NewInboundHandler creates an InboundHandler backed by the given dispatcher.
func NewInboundHandler(dispatcher InboundDispatcher) *InboundHandler {
	return &InboundHandler{dispatcher: dispatcher}
}

// Receive handles POST /v1/inbound — enqueues a single message, returns 202.
// Delivery is asynchronous; mail addressed to unknown mailboxes is dropped
// by the worker, not rejected here.
func (h *InboundHandler) Receive(c echo.Context) error {
	var req inboundMessageRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	h.dispatcher.Enqueue(toInboundInput(req))
	return c.JSON(http.StatusAccepted, acceptedResponse{Message: "message accepted"})
}

// ReceiveBatch handles POST /v1/inbound/batch — enqueues a batch, returns 202.
func (h *InboundHandler) ReceiveBatch(c echo.Context) error {
	var reqs []inboundMessageRequest
	if err := c.Bind(&reqs); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if len(reqs) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "batch cannot be empty")
	}

	inputs := make([]ports.InboundMessageInput, 0, len(reqs))
	for i, req := range reqs {
		if err := c.Validate(&req); err != nil {
			return echo.NewHTTPError(http.StatusUnprocessableEntity,
				fmt.Sprintf("message[%d]: %s", i, err.Error()))
		}
		inputs = append(inputs, toInboundInput(req))
	}

	h.dispatcher.EnqueueBatch(inputs)
	return c.JSON(http.StatusAccepted, acceptedResponse{
		Message: "messages accepted",
		Count:   len(inputs),
	})
}
