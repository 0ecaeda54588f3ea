package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/99-jordan/yarro-maintenance-triage/internal/service/ticket"
	"github.com/99-jordan/yarro-maintenance-triage/internal/service/triage"
)

type TriageHandler struct {
	svc triage.Service
}

func NewTriageHandler(svc triage.Service) *TriageHandler {
	return &TriageHandler{svc: svc}
}

type submitBody struct {
	SenderID string `json:"sender_id"`
	Body     string `json:"body"`
	ImageRef string `json:"image_ref"`
}

func (h *TriageHandler) submit(c fiber.Ctx, observe bool) error {
	ticketID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid ticket id")
	}

	var body submitBody
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	if body.Body == "" && body.ImageRef == "" {
		return badRequest(c, "body or image_ref is required")
	}
	senderID, err := uuid.Parse(body.SenderID)
	if err != nil {
		return badRequest(c, "invalid sender_id")
	}

	result, err := h.svc.Submit(c.Context(), triage.SubmitRequest{
		TicketID: ticketID,
		SenderID: senderID,
		Body:     body.Body,
		ImageRef: body.ImageRef,
		Observe:  observe,
	})
	if err != nil {
		if errors.Is(err, ticket.ErrNotFound) {
			return notFound(c, err.Error())
		}
		return internalError(c)
	}

	return created(c, result)
}

// POST /tickets/:id/messages
//
// Appends the sender's message and runs the AI turn against it. The response
// carries the stored inbound message, the assistant reply, and any action
// audit messages the turn produced.
func (h *TriageHandler) Submit(c fiber.Ctx) error {
	return h.submit(c, false)
}

// POST /tickets/:id/messages/observe
//
// Records the message without an AI turn. Used for imported history and
// channels where the assistant should stay quiet.
func (h *TriageHandler) Observe(c fiber.Ctx) error {
	return h.submit(c, true)
}
