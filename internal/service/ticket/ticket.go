package ticket

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/99-jordan/yarro-maintenance-triage/internal/store"
)

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type CreateRequest struct {
	TenantID    uuid.UUID
	PropertyID  uuid.UUID
	LandlordID  uuid.UUID
	AgentID     *uuid.UUID
	Title       string
	Description string
	Severity    string // defaults to normal
}

type ListRequest struct {
	Status  *string
	Page    int
	PerPage int
}

// ---------------------------------------------------------------------------
// Interface
// ---------------------------------------------------------------------------

// Service owns the ticket entity and its status lifecycle. Any of the four
// statuses may transition to any other: human agents reopen resolved tickets,
// so no transition matrix is enforced beyond the value check.
type Service interface {
	Create(ctx context.Context, req CreateRequest) (*store.Ticket, error)
	GetByID(ctx context.Context, ticketID uuid.UUID) (*store.Ticket, error)
	List(ctx context.Context, req ListRequest) ([]*store.Ticket, error)
	// SetStatus validates newStatus against the recognized values and bumps
	// updated_at. The actor is recorded in logs only; notification is the
	// caller's concern.
	SetStatus(ctx context.Context, ticketID uuid.UUID, newStatus string, actor string) error
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type ticketService struct {
	drv store.Driver
}

func New(drv store.Driver) Service {
	return &ticketService{drv: drv}
}

func (s *ticketService) Create(ctx context.Context, req CreateRequest) (*store.Ticket, error) {
	severity := store.SeverityNormal
	if req.Severity != "" {
		parsed, ok := store.ParseSeverity(req.Severity)
		if !ok {
			return nil, ErrInvalidSeverity
		}
		severity = parsed
	}

	t := &store.Ticket{
		TenantID:    req.TenantID,
		PropertyID:  req.PropertyID,
		LandlordID:  req.LandlordID,
		AgentID:     req.AgentID,
		Title:       req.Title,
		Description: req.Description,
		Status:      store.StatusOpen,
		Severity:    severity,
	}
	if err := s.drv.CreateTicket(ctx, t); err != nil {
		return nil, fmt.Errorf("create ticket: %w", err)
	}
	return t, nil
}

func (s *ticketService) GetByID(ctx context.Context, ticketID uuid.UUID) (*store.Ticket, error) {
	t, err := s.drv.GetTicket(ctx, ticketID)
	if err != nil {
		if err == store.ErrNotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get ticket: %w", err)
	}
	return t, nil
}

func (s *ticketService) List(ctx context.Context, req ListRequest) ([]*store.Ticket, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.PerPage < 1 || req.PerPage > 100 {
		req.PerPage = 20
	}

	find := store.FindTickets{
		Limit:  req.PerPage,
		Offset: (req.Page - 1) * req.PerPage,
	}
	if req.Status != nil {
		status, ok := store.ParseTicketStatus(*req.Status)
		if !ok {
			return nil, ErrInvalidStatus
		}
		find.Status = &status
	}

	tickets, err := s.drv.ListTickets(ctx, find)
	if err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}
	return tickets, nil
}

func (s *ticketService) SetStatus(ctx context.Context, ticketID uuid.UUID, newStatus string, actor string) error {
	status, ok := store.ParseTicketStatus(newStatus)
	if !ok {
		return ErrInvalidStatus
	}

	if err := s.drv.UpdateTicketStatus(ctx, ticketID, status); err != nil {
		if err == store.ErrNotFound {
			return ErrNotFound
		}
		return fmt.Errorf("set ticket status: %w", err)
	}

	slog.Info("ticket status changed",
		"ticket_id", ticketID,
		"status", status,
		"actor", actor,
	)
	return nil
}
