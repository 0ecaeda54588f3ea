package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryDriver is an in-memory Driver used by unit tests and the seed
// command's dry-run mode. CreatedAt stamps are strictly increasing so
// ordering by CreatedAt always matches insertion order.
type MemoryDriver struct {
	mu        sync.RWMutex
	tickets   map[uuid.UUID]*Ticket
	messages  map[uuid.UUID][]*Message
	summaries map[uuid.UUID]*ConversationSummary
	lastTime  time.Time
}

func NewMemoryDriver() *MemoryDriver {
	return &MemoryDriver{
		tickets:   make(map[uuid.UUID]*Ticket),
		messages:  make(map[uuid.UUID][]*Message),
		summaries: make(map[uuid.UUID]*ConversationSummary),
	}
}

// tick returns a timestamp strictly after any previously handed out.
// Callers must hold mu.
func (d *MemoryDriver) tick() time.Time {
	now := time.Now().UTC()
	if !now.After(d.lastTime) {
		now = d.lastTime.Add(time.Microsecond)
	}
	d.lastTime = now
	return now
}

func (d *MemoryDriver) CreateTicket(_ context.Context, t *Ticket) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	now := d.tick()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	t.UpdatedAt = now
	if t.Status == "" {
		t.Status = StatusOpen
	}
	if t.Severity == "" {
		t.Severity = SeverityNormal
	}
	cp := *t
	d.tickets[t.ID] = &cp
	return nil
}

func (d *MemoryDriver) GetTicket(_ context.Context, id uuid.UUID) (*Ticket, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	t, ok := d.tickets[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (d *MemoryDriver) ListTickets(_ context.Context, find FindTickets) ([]*Ticket, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var out []*Ticket
	for _, t := range d.tickets {
		if find.Status != nil && t.Status != *find.Status {
			continue
		}
		cp := *t
		out = append(out, &cp)
	}
	// newest first, matching the postgres driver
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if out[j].CreatedAt.After(out[i].CreatedAt) {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	if find.Offset > 0 {
		if find.Offset >= len(out) {
			return nil, nil
		}
		out = out[find.Offset:]
	}
	if find.Limit > 0 && len(out) > find.Limit {
		out = out[:find.Limit]
	}
	return out, nil
}

func (d *MemoryDriver) UpdateTicketStatus(_ context.Context, id uuid.UUID, status TicketStatus) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	t, ok := d.tickets[id]
	if !ok {
		return ErrNotFound
	}
	t.Status = status
	t.UpdatedAt = d.tick()
	return nil
}

func (d *MemoryDriver) CreateMessage(_ context.Context, m *Message) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = d.tick()
	}
	cp := *m
	d.messages[m.TicketID] = append(d.messages[m.TicketID], &cp)
	return nil
}

func (d *MemoryDriver) ListMessages(_ context.Context, ticketID uuid.UUID, limit int) ([]*Message, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	msgs := d.messages[ticketID]
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	out := make([]*Message, 0, len(msgs))
	for _, m := range msgs {
		cp := *m
		out = append(out, &cp)
	}
	return out, nil
}

func (d *MemoryDriver) GetSummary(_ context.Context, ticketID uuid.UUID) (*ConversationSummary, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	s, ok := d.summaries[ticketID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (d *MemoryDriver) UpsertSummary(_ context.Context, s *ConversationSummary) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	s.UpdatedAt = d.tick()
	cp := *s
	d.summaries[s.TicketID] = &cp
	return nil
}
