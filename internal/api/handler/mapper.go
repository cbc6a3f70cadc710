package handler

import (
	"github.com/tempmailhq/tempmail-api/internal/core/domain"
	"github.com/tempmailhq/tempmail-api/internal/core/ports"
)

// --- Request → Service input ---

func toInboundInput(r inboundMessageRequest) ports.InboundMessageInput {
	return ports.InboundMessageInput{
		ToAddress:   r.To,
		FromAddress: r.From,
		Subject:     r.Subject,
		Content:     r.Content,
		HTML:        r.HTML,
		ReceivedAt:  r.ReceivedAt,
	}
}

// --- Service result → HTTP response ---

func toMessageResponse(m *domain.Message) messageResponse {
	return messageResponse{
		ID:          m.ID,
		Direction:   string(m.Direction),
		FromAddress: m.FromAddress,
		ToAddress:   m.ToAddress,
		Subject:     m.Subject,
		Content:     m.Content,
		HTML:        m.HTML,
		ReceivedAt:  m.ReceivedAt,
		SentAt:      m.SentAt,
	}
}

func toListResponse(r *ports.MessageListResult) listMessagesResponse {
	items := make([]messageResponse, len(r.Items))
	for i, m := range r.Items {
		items[i] = toMessageResponse(m)
	}
	return listMessagesResponse{
		Data:       items,
		NextCursor: r.NextCursor,
		Total:      r.Total,
	}
}
