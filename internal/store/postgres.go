package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PostgresDriver implements Driver on a gorm connection.
type PostgresDriver struct {
	db *gorm.DB
}

func NewPostgresDriver(db *gorm.DB) *PostgresDriver {
	return &PostgresDriver{db: db}
}

// AutoMigrate creates or updates the engine's tables.
func (d *PostgresDriver) AutoMigrate() error {
	if err := d.db.AutoMigrate(&Ticket{}, &Message{}, &ConversationSummary{}); err != nil {
		return fmt.Errorf("migrate triage tables: %w", err)
	}
	return nil
}

func (d *PostgresDriver) CreateTicket(ctx context.Context, t *Ticket) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	now := time.Now().UTC()
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
	if err := d.db.WithContext(ctx).Create(t).Error; err != nil {
		return fmt.Errorf("create ticket: %w", err)
	}
	return nil
}

func (d *PostgresDriver) GetTicket(ctx context.Context, id uuid.UUID) (*Ticket, error) {
	var t Ticket
	err := d.db.WithContext(ctx).Where("id = ?", id).First(&t).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get ticket: %w", err)
	}
	return &t, nil
}

func (d *PostgresDriver) ListTickets(ctx context.Context, find FindTickets) ([]*Ticket, error) {
	q := d.db.WithContext(ctx).Model(&Ticket{})
	if find.Status != nil {
		q = q.Where("status = ?", *find.Status)
	}
	if find.Limit > 0 {
		q = q.Limit(find.Limit)
	}
	if find.Offset > 0 {
		q = q.Offset(find.Offset)
	}
	var tickets []*Ticket
	if err := q.Order("created_at DESC").Find(&tickets).Error; err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}
	return tickets, nil
}

func (d *PostgresDriver) UpdateTicketStatus(ctx context.Context, id uuid.UUID, status TicketStatus) error {
	result := d.db.WithContext(ctx).Model(&Ticket{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":     status,
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return fmt.Errorf("update ticket status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (d *PostgresDriver) CreateMessage(ctx context.Context, m *Message) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	if err := d.db.WithContext(ctx).Create(m).Error; err != nil {
		return fmt.Errorf("create message: %w", err)
	}
	return nil
}

func (d *PostgresDriver) ListMessages(ctx context.Context, ticketID uuid.UUID, limit int) ([]*Message, error) {
	var msgs []*Message

	if limit > 0 {
		// Tail window: most recent limit rows, returned oldest-first.
		sub := d.db.WithContext(ctx).Model(&Message{}).
			Where("ticket_id = ?", ticketID).
			Order("created_at DESC").
			Limit(limit)
		if err := d.db.WithContext(ctx).
			Table("(?) AS recent", sub).
			Order("created_at ASC").
			Find(&msgs).Error; err != nil {
			return nil, fmt.Errorf("list messages: %w", err)
		}
		return msgs, nil
	}

	if err := d.db.WithContext(ctx).
		Where("ticket_id = ?", ticketID).
		Order("created_at ASC").
		Find(&msgs).Error; err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return msgs, nil
}

func (d *PostgresDriver) GetSummary(ctx context.Context, ticketID uuid.UUID) (*ConversationSummary, error) {
	var s ConversationSummary
	err := d.db.WithContext(ctx).Where("ticket_id = ?", ticketID).First(&s).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get summary: %w", err)
	}
	return &s, nil
}

func (d *PostgresDriver) UpsertSummary(ctx context.Context, s *ConversationSummary) error {
	s.UpdatedAt = time.Now().UTC()
	if err := d.db.WithContext(ctx).Save(s).Error; err != nil {
		return fmt.Errorf("upsert summary: %w", err)
	}
	return nil
}
