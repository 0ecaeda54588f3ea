package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/99-jordan/yarro-maintenance-triage/internal/service/conversation"
	"github.com/99-jordan/yarro-maintenance-triage/internal/service/summary"
)

type ConversationHandler struct {
	svc       conversation.Service
	summaries summary.Service
}

func NewConversationHandler(svc conversation.Service, summaries summary.Service) *ConversationHandler {
	return &ConversationHandler{svc: svc, summaries: summaries}
}

func mapConversationError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, conversation.ErrTicketNotFound):
		return notFound(c, err.Error())
	default:
		return internalError(c)
	}
}

// GET /tickets/:id/messages
func (h *ConversationHandler) ListMessages(c fiber.Ctx) error {
	ticketID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid ticket id")
	}

	var q struct {
		Limit int `query:"limit"`
	}
	_ = c.Bind().Query(&q)

	msgs, err := h.svc.List(c.Context(), ticketID, q.Limit)
	if err != nil {
		return mapConversationError(c, err)
	}

	return ok(c, msgs)
}

// GET /tickets/:id/summary
func (h *ConversationHandler) GetSummary(c fiber.Ctx) error {
	ticketID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid ticket id")
	}

	sum, err := h.summaries.Get(c.Context(), ticketID)
	if err != nil {
		if errors.Is(err, summary.ErrNotFound) {
			return notFound(c, err.Error())
		}
		return internalError(c)
	}

	return ok(c, sum)
}
