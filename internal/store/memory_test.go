package store

import (
	"context"
	"testing"

	"github.com/google/uuid"
)

func TestMemoryDriver_MessageOrdering(t *testing.T) {
	drv := NewMemoryDriver()
	ctx := context.Background()

	ticket := &Ticket{TenantID: uuid.New(), Title: "leak"}
	if err := drv.CreateTicket(ctx, ticket); err != nil {
		t.Fatalf("CreateTicket failed: %v", err)
	}

	for i := 0; i < 5; i++ {
		if err := drv.CreateMessage(ctx, &Message{TicketID: ticket.ID, SenderID: ticket.TenantID}); err != nil {
			t.Fatalf("CreateMessage %d failed: %v", i, err)
		}
	}

	msgs, err := drv.ListMessages(ctx, ticket.ID, 0)
	if err != nil {
		t.Fatalf("ListMessages failed: %v", err)
	}
	if len(msgs) != 5 {
		t.Fatalf("got %d messages, want 5", len(msgs))
	}
	for i := 1; i < len(msgs); i++ {
		if !msgs[i].CreatedAt.After(msgs[i-1].CreatedAt) {
			t.Errorf("message %d not strictly after message %d", i, i-1)
		}
	}
}

func TestMemoryDriver_TailWindow(t *testing.T) {
	drv := NewMemoryDriver()
	ctx := context.Background()

	ticket := &Ticket{TenantID: uuid.New(), Title: "leak"}
	if err := drv.CreateTicket(ctx, ticket); err != nil {
		t.Fatalf("CreateTicket failed: %v", err)
	}

	var ids []uuid.UUID
	for i := 0; i < 10; i++ {
		m := &Message{TicketID: ticket.ID, SenderID: ticket.TenantID}
		if err := drv.CreateMessage(ctx, m); err != nil {
			t.Fatalf("CreateMessage failed: %v", err)
		}
		ids = append(ids, m.ID)
	}

	msgs, err := drv.ListMessages(ctx, ticket.ID, 3)
	if err != nil {
		t.Fatalf("ListMessages failed: %v", err)
	}
	if len(msgs) != 3 {
		t.Fatalf("got %d messages, want 3", len(msgs))
	}
	// The tail window keeps the most recent messages, oldest first.
	for i, want := range ids[7:] {
		if msgs[i].ID != want {
			t.Errorf("window[%d] = %s, want %s", i, msgs[i].ID, want)
		}
	}
}

func TestMemoryDriver_TicketNotFound(t *testing.T) {
	drv := NewMemoryDriver()
	ctx := context.Background()

	if _, err := drv.GetTicket(ctx, uuid.New()); err != ErrNotFound {
		t.Errorf("GetTicket on missing id = %v, want ErrNotFound", err)
	}
	if err := drv.UpdateTicketStatus(ctx, uuid.New(), StatusResolved); err != ErrNotFound {
		t.Errorf("UpdateTicketStatus on missing id = %v, want ErrNotFound", err)
	}
	if _, err := drv.GetSummary(ctx, uuid.New()); err != ErrNotFound {
		t.Errorf("GetSummary on missing id = %v, want ErrNotFound", err)
	}
}

func TestMemoryDriver_CreateDefaults(t *testing.T) {
	drv := NewMemoryDriver()
	ctx := context.Background()

	ticket := &Ticket{TenantID: uuid.New(), Title: "no hot water"}
	if err := drv.CreateTicket(ctx, ticket); err != nil {
		t.Fatalf("CreateTicket failed: %v", err)
	}

	if ticket.ID == uuid.Nil {
		t.Error("ID not assigned")
	}
	if ticket.Status != StatusOpen {
		t.Errorf("Status = %q, want open", ticket.Status)
	}
	if ticket.Severity != SeverityNormal {
		t.Errorf("Severity = %q, want normal", ticket.Severity)
	}
	if ticket.CreatedAt.IsZero() {
		t.Error("CreatedAt not stamped")
	}
}

func TestMemoryDriver_ListTicketsFilter(t *testing.T) {
	drv := NewMemoryDriver()
	ctx := context.Background()

	open := &Ticket{TenantID: uuid.New(), Title: "a"}
	resolved := &Ticket{TenantID: uuid.New(), Title: "b", Status: StatusResolved}
	for _, tk := range []*Ticket{open, resolved} {
		if err := drv.CreateTicket(ctx, tk); err != nil {
			t.Fatalf("CreateTicket failed: %v", err)
		}
	}

	status := StatusResolved
	got, err := drv.ListTickets(ctx, FindTickets{Status: &status})
	if err != nil {
		t.Fatalf("ListTickets failed: %v", err)
	}
	if len(got) != 1 || got[0].ID != resolved.ID {
		t.Errorf("status filter returned %d tickets, want the resolved one", len(got))
	}
}
