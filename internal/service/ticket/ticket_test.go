package ticket

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/99-jordan/yarro-maintenance-triage/internal/store"
)

func newService(t *testing.T) (Service, *store.MemoryDriver) {
	t.Helper()
	drv := store.NewMemoryDriver()
	return New(drv), drv
}

func TestCreate_DefaultSeverity(t *testing.T) {
	svc, _ := newService(t)

	created, err := svc.Create(context.Background(), CreateRequest{
		TenantID: uuid.New(),
		Title:    "leaking tap",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created.Severity != store.SeverityNormal {
		t.Errorf("Severity = %q, want normal", created.Severity)
	}
	if created.Status != store.StatusOpen {
		t.Errorf("Status = %q, want open", created.Status)
	}
}

func TestCreate_InvalidSeverity(t *testing.T) {
	svc, _ := newService(t)

	_, err := svc.Create(context.Background(), CreateRequest{
		TenantID: uuid.New(),
		Title:    "leaking tap",
		Severity: "catastrophic",
	})
	if err != ErrInvalidSeverity {
		t.Errorf("Create with bad severity = %v, want ErrInvalidSeverity", err)
	}
}

func TestSetStatus_AnyTransitionAllowed(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateRequest{TenantID: uuid.New(), Title: "t"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// Resolved tickets can be reopened, cancelled tickets resolved; there is
	// no transition matrix.
	for _, status := range []string{"resolved", "open", "cancelled", "in_progress", "resolved"} {
		if err := svc.SetStatus(ctx, created.ID, status, "agent"); err != nil {
			t.Fatalf("SetStatus(%q) failed: %v", status, err)
		}
		got, err := svc.GetByID(ctx, created.ID)
		if err != nil {
			t.Fatalf("GetByID failed: %v", err)
		}
		if string(got.Status) != status {
			t.Errorf("Status = %q, want %q", got.Status, status)
		}
	}
}

func TestSetStatus_CaseInsensitive(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateRequest{TenantID: uuid.New(), Title: "t"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := svc.SetStatus(ctx, created.ID, "Resolved", "agent"); err != nil {
		t.Fatalf("SetStatus(Resolved) failed: %v", err)
	}
	got, _ := svc.GetByID(ctx, created.ID)
	if got.Status != store.StatusResolved {
		t.Errorf("Status = %q, want resolved", got.Status)
	}
}

func TestSetStatus_InvalidValue(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateRequest{TenantID: uuid.New(), Title: "t"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := svc.SetStatus(ctx, created.ID, "closed", "agent"); err != ErrInvalidStatus {
		t.Errorf("SetStatus(closed) = %v, want ErrInvalidStatus", err)
	}

	// The ticket is untouched.
	got, _ := svc.GetByID(ctx, created.ID)
	if got.Status != store.StatusOpen {
		t.Errorf("Status = %q after rejected update, want open", got.Status)
	}
}

func TestSetStatus_NotFound(t *testing.T) {
	svc, _ := newService(t)

	if err := svc.SetStatus(context.Background(), uuid.New(), "resolved", "agent"); err != ErrNotFound {
		t.Errorf("SetStatus on missing ticket = %v, want ErrNotFound", err)
	}
}

func TestList_StatusFilterAndPaging(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := svc.Create(ctx, CreateRequest{TenantID: uuid.New(), Title: "t"}); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	status := "open"
	got, err := svc.List(ctx, ListRequest{Status: &status, Page: 1, PerPage: 2})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("got %d tickets on page 1, want 2", len(got))
	}

	bad := "unknown"
	if _, err := svc.List(ctx, ListRequest{Status: &bad}); err != ErrInvalidStatus {
		t.Errorf("List with bad status = %v, want ErrInvalidStatus", err)
	}
}
