package summary

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/99-jordan/yarro-maintenance-triage/internal/store"
)

func TestAppendLine_FirstWriteIsBareLine(t *testing.T) {
	svc := New(store.NewMemoryDriver())
	ctx := context.Background()
	ticketID := uuid.New()

	if err := svc.AppendLine(ctx, ticketID, "Tenant reported a leaking tap"); err != nil {
		t.Fatalf("AppendLine failed: %v", err)
	}

	sum, err := svc.Get(ctx, ticketID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if sum.SummaryText != "Tenant reported a leaking tap" {
		t.Errorf("SummaryText = %q, want the bare line", sum.SummaryText)
	}
	if sum.LastMessageAt.IsZero() {
		t.Error("LastMessageAt not stamped")
	}
}

func TestAppendLine_GrowsOnly(t *testing.T) {
	svc := New(store.NewMemoryDriver())
	ctx := context.Background()
	ticketID := uuid.New()

	lines := []string{
		"Tenant reported a leaking tap",
		"AI classified as plumbing, normal severity",
		"Photos requested",
	}
	for _, l := range lines {
		if err := svc.AppendLine(ctx, ticketID, l); err != nil {
			t.Fatalf("AppendLine(%q) failed: %v", l, err)
		}
	}

	sum, err := svc.Get(ctx, ticketID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	want := lines[0] + "\n- " + lines[1] + "\n- " + lines[2]
	if sum.SummaryText != want {
		t.Errorf("SummaryText = %q, want %q", sum.SummaryText, want)
	}
}

func TestAppendLine_EmptyIsNoOp(t *testing.T) {
	svc := New(store.NewMemoryDriver())
	ctx := context.Background()
	ticketID := uuid.New()

	if err := svc.AppendLine(ctx, ticketID, "   "); err != nil {
		t.Fatalf("AppendLine of blank line failed: %v", err)
	}

	if _, err := svc.Get(ctx, ticketID); err != ErrNotFound {
		t.Errorf("Get after blank append = %v, want ErrNotFound", err)
	}
}
