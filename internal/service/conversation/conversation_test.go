package conversation

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/99-jordan/yarro-maintenance-triage/internal/store"
)

func seedTicket(t *testing.T, drv *store.MemoryDriver) *store.Ticket {
	t.Helper()
	ticket := &store.Ticket{TenantID: uuid.New(), Title: "broken boiler"}
	if err := drv.CreateTicket(context.Background(), ticket); err != nil {
		t.Fatalf("CreateTicket failed: %v", err)
	}
	return ticket
}

func TestAppend_TicketMissing(t *testing.T) {
	svc := New(store.NewMemoryDriver())

	_, err := svc.Append(context.Background(), AppendRequest{
		TicketID: uuid.New(),
		SenderID: uuid.New(),
		Body:     "hello",
	})
	if err != ErrTicketNotFound {
		t.Errorf("Append to missing ticket = %v, want ErrTicketNotFound", err)
	}
}

func TestAppend_OrderPreserved(t *testing.T) {
	drv := store.NewMemoryDriver()
	svc := New(drv)
	ctx := context.Background()
	ticket := seedTicket(t, drv)

	bodies := []string{"first", "second", "third"}
	for _, b := range bodies {
		if _, err := svc.Append(ctx, AppendRequest{TicketID: ticket.ID, SenderID: ticket.TenantID, Body: b}); err != nil {
			t.Fatalf("Append(%q) failed: %v", b, err)
		}
	}

	msgs, err := svc.List(ctx, ticket.ID, 0)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(msgs) != len(bodies) {
		t.Fatalf("got %d messages, want %d", len(msgs), len(bodies))
	}
	for i, b := range bodies {
		if msgs[i].Body != b {
			t.Errorf("message %d = %q, want %q", i, msgs[i].Body, b)
		}
	}
}

func TestAppend_DefaultsToPlainMeta(t *testing.T) {
	drv := store.NewMemoryDriver()
	svc := New(drv)
	ctx := context.Background()
	ticket := seedTicket(t, drv)

	msg, err := svc.Append(ctx, AppendRequest{TicketID: ticket.ID, SenderID: ticket.TenantID, Body: "hi"})
	if err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	meta, err := store.DecodeMeta(msg.Meta)
	if err != nil {
		t.Fatalf("DecodeMeta failed: %v", err)
	}
	if meta.Kind != store.MetaKindPlain {
		t.Errorf("Kind = %q, want plain", meta.Kind)
	}
}

func TestList_TailWindow(t *testing.T) {
	drv := store.NewMemoryDriver()
	svc := New(drv)
	ctx := context.Background()
	ticket := seedTicket(t, drv)

	for _, b := range []string{"a", "b", "c", "d"} {
		if _, err := svc.Append(ctx, AppendRequest{TicketID: ticket.ID, SenderID: ticket.TenantID, Body: b}); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}

	msgs, err := svc.List(ctx, ticket.ID, 2)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(msgs) != 2 || msgs[0].Body != "c" || msgs[1].Body != "d" {
		t.Errorf("tail window = %v, want [c d]", bodiesOf(msgs))
	}
}

func TestHasActionID(t *testing.T) {
	drv := store.NewMemoryDriver()
	svc := New(drv)
	ctx := context.Background()
	ticket := seedTicket(t, drv)

	audit := store.Meta{
		Kind: store.MetaKindActionAudit,
		Audit: &store.ActionAudit{
			ActionType: "request_photos",
			ActionID:   "act-42",
			Outcome:    "ok",
		},
	}
	if _, err := svc.Append(ctx, AppendRequest{
		TicketID: ticket.ID,
		SenderID: uuid.Nil,
		Body:     "Please share a photo.",
		IsSystem: true,
		Meta:     audit,
	}); err != nil {
		t.Fatalf("Append audit message failed: %v", err)
	}

	seen, err := svc.HasActionID(ctx, ticket.ID, "act-42")
	if err != nil {
		t.Fatalf("HasActionID failed: %v", err)
	}
	if !seen {
		t.Error("HasActionID(act-42) = false, want true")
	}

	seen, err = svc.HasActionID(ctx, ticket.ID, "act-43")
	if err != nil {
		t.Fatalf("HasActionID failed: %v", err)
	}
	if seen {
		t.Error("HasActionID(act-43) = true, want false")
	}

	// An empty id never matches, even though plain messages carry no audit.
	seen, err = svc.HasActionID(ctx, ticket.ID, "")
	if err != nil {
		t.Fatalf("HasActionID failed: %v", err)
	}
	if seen {
		t.Error("HasActionID(\"\") = true, want false")
	}
}

func bodiesOf(msgs []*store.Message) []string {
	out := make([]string, len(msgs))
	for i, m := range msgs {
		out[i] = m.Body
	}
	return out
}
