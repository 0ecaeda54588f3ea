// Package conversation is the message store for ticket threads: an
// append-only per-ticket log ordered by creation time.
package conversation

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/99-jordan/yarro-maintenance-triage/internal/store"
)

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type AppendRequest struct {
	TicketID uuid.UUID
	SenderID uuid.UUID
	Body     string
	IsSystem bool
	Meta     store.Meta
}

// ---------------------------------------------------------------------------
// Interface
// ---------------------------------------------------------------------------

type Service interface {
	// Append inserts at the end of the ticket's log. Fails with
	// ErrTicketNotFound if the ticket does not exist; body content is not
	// validated.
	Append(ctx context.Context, req AppendRequest) (*store.Message, error)
	// List returns messages ascending by created_at. A positive limit returns
	// the most recent limit messages, still ascending: the tail window fed
	// to the AI.
	List(ctx context.Context, ticketID uuid.UUID, limit int) ([]*store.Message, error)
	// HasActionID reports whether any message in the ticket carries an audit
	// record with the given action id. Linear scan over the ticket's meta;
	// ticket threads stay small, so an index is not warranted yet.
	HasActionID(ctx context.Context, ticketID uuid.UUID, actionID string) (bool, error)
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type conversationService struct {
	drv store.Driver
}

func New(drv store.Driver) Service {
	return &conversationService{drv: drv}
}

func (s *conversationService) Append(ctx context.Context, req AppendRequest) (*store.Message, error) {
	if _, err := s.drv.GetTicket(ctx, req.TicketID); err != nil {
		if err == store.ErrNotFound {
			return nil, ErrTicketNotFound
		}
		return nil, fmt.Errorf("check ticket: %w", err)
	}

	meta := req.Meta
	if meta.Kind == "" {
		meta = store.PlainMeta()
	}
	encoded, err := meta.Encode()
	if err != nil {
		return nil, err
	}

	msg := &store.Message{
		TicketID: req.TicketID,
		SenderID: req.SenderID,
		Body:     req.Body,
		IsSystem: req.IsSystem,
		Meta:     encoded,
	}
	if err := s.drv.CreateMessage(ctx, msg); err != nil {
		return nil, fmt.Errorf("append message: %w", err)
	}
	return msg, nil
}

func (s *conversationService) List(ctx context.Context, ticketID uuid.UUID, limit int) ([]*store.Message, error) {
	msgs, err := s.drv.ListMessages(ctx, ticketID, limit)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return msgs, nil
}

func (s *conversationService) HasActionID(ctx context.Context, ticketID uuid.UUID, actionID string) (bool, error) {
	if actionID == "" {
		return false, nil
	}
	msgs, err := s.drv.ListMessages(ctx, ticketID, 0)
	if err != nil {
		return false, fmt.Errorf("scan messages for action id: %w", err)
	}
	for _, m := range msgs {
		if store.MetaActionID(m.Meta) == actionID {
			return true, nil
		}
	}
	return false, nil
}
