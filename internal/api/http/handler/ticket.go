package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/99-jordan/yarro-maintenance-triage/internal/service/ticket"
)

type TicketHandler struct {
	svc ticket.Service
}

func NewTicketHandler(svc ticket.Service) *TicketHandler {
	return &TicketHandler{svc: svc}
}

func mapTicketError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, ticket.ErrNotFound):
		return notFound(c, err.Error())
	case errors.Is(err, ticket.ErrInvalidStatus), errors.Is(err, ticket.ErrInvalidSeverity):
		return badRequest(c, err.Error())
	default:
		return internalError(c)
	}
}

// POST /tickets
func (h *TicketHandler) Create(c fiber.Ctx) error {
	var body struct {
		TenantID    string  `json:"tenant_id"`
		PropertyID  string  `json:"property_id"`
		LandlordID  string  `json:"landlord_id"`
		AgentID     *string `json:"agent_id"`
		Title       string  `json:"title"`
		Description string  `json:"description"`
		Severity    string  `json:"severity"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	if body.Title == "" {
		return badRequest(c, "title is required")
	}
	tenantID, err := uuid.Parse(body.TenantID)
	if err != nil {
		return badRequest(c, "invalid tenant_id")
	}
	propertyID, err := uuid.Parse(body.PropertyID)
	if err != nil {
		return badRequest(c, "invalid property_id")
	}
	landlordID, err := uuid.Parse(body.LandlordID)
	if err != nil {
		return badRequest(c, "invalid landlord_id")
	}

	req := ticket.CreateRequest{
		TenantID:    tenantID,
		PropertyID:  propertyID,
		LandlordID:  landlordID,
		Title:       body.Title,
		Description: body.Description,
		Severity:    body.Severity,
	}
	if body.AgentID != nil {
		aid, err := uuid.Parse(*body.AgentID)
		if err != nil {
			return badRequest(c, "invalid agent_id")
		}
		req.AgentID = &aid
	}

	t, err := h.svc.Create(c.Context(), req)
	if err != nil {
		return mapTicketError(c, err)
	}

	return created(c, t)
}

// GET /tickets
func (h *TicketHandler) List(c fiber.Ctx) error {
	var q struct {
		Status  string `query:"status"`
		Page    int    `query:"page"`
		PerPage int    `query:"per_page"`
	}
	_ = c.Bind().Query(&q)

	req := ticket.ListRequest{
		Page:    q.Page,
		PerPage: q.PerPage,
	}
	if q.Status != "" {
		req.Status = &q.Status
	}

	tickets, err := h.svc.List(c.Context(), req)
	if err != nil {
		return mapTicketError(c, err)
	}

	return ok(c, tickets)
}

// GET /tickets/:id
func (h *TicketHandler) Get(c fiber.Ctx) error {
	ticketID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid ticket id")
	}

	t, err := h.svc.GetByID(c.Context(), ticketID)
	if err != nil {
		return mapTicketError(c, err)
	}

	return ok(c, t)
}

// PATCH /tickets/:id/status
func (h *TicketHandler) UpdateStatus(c fiber.Ctx) error {
	ticketID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid ticket id")
	}

	var body struct {
		Status string `json:"status"`
		Actor  string `json:"actor"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	if body.Status == "" {
		return badRequest(c, "status is required")
	}
	actor := body.Actor
	if actor == "" {
		actor = "api"
	}

	if err := h.svc.SetStatus(c.Context(), ticketID, body.Status, actor); err != nil {
		return mapTicketError(c, err)
	}

	return noContent(c)
}
