// Package store holds the persisted entities of the triage engine and the
// Driver interface over them. The postgres driver backs production; the
// memory driver backs tests.
package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

var ErrNotFound = errors.New("record not found")

// ---------------------------------------------------------------------------
// Enums
// ---------------------------------------------------------------------------

type TicketStatus string

const (
	StatusOpen       TicketStatus = "open"
	StatusInProgress TicketStatus = "in_progress"
	StatusResolved   TicketStatus = "resolved"
	StatusCancelled  TicketStatus = "cancelled"
)

// ParseTicketStatus recognizes the four ticket statuses, case-insensitively.
func ParseTicketStatus(s string) (TicketStatus, bool) {
	switch TicketStatus(strings.ToLower(strings.TrimSpace(s))) {
	case StatusOpen:
		return StatusOpen, true
	case StatusInProgress:
		return StatusInProgress, true
	case StatusResolved:
		return StatusResolved, true
	case StatusCancelled:
		return StatusCancelled, true
	}
	return "", false
}

type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityNormal Severity = "normal"
	SeverityHigh   Severity = "high"
	SeverityUrgent Severity = "urgent"
)

func ParseSeverity(s string) (Severity, bool) {
	switch Severity(strings.ToLower(strings.TrimSpace(s))) {
	case SeverityLow:
		return SeverityLow, true
	case SeverityNormal:
		return SeverityNormal, true
	case SeverityHigh:
		return SeverityHigh, true
	case SeverityUrgent:
		return SeverityUrgent, true
	}
	return "", false
}

// ---------------------------------------------------------------------------
// Entities
// ---------------------------------------------------------------------------

type Ticket struct {
	ID          uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID    uuid.UUID    `gorm:"type:uuid;not null;index" json:"tenant_id"`
	PropertyID  uuid.UUID    `gorm:"type:uuid;not null;index" json:"property_id"`
	LandlordID  uuid.UUID    `gorm:"type:uuid;not null;index" json:"landlord_id"`
	AgentID     *uuid.UUID   `gorm:"type:uuid;index" json:"agent_id,omitempty"`
	Title       string       `gorm:"size:200;not null" json:"title"`
	Description string       `gorm:"type:text" json:"description"`
	Status      TicketStatus `gorm:"size:20;not null;index" json:"status"`
	Severity    Severity     `gorm:"size:20;not null" json:"severity"`
	CreatedAt   time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time    `gorm:"not null" json:"updated_at"`
}

func (Ticket) TableName() string { return "tickets" }

// Message is one entry in a ticket's append-only conversation log. Rows are
// never mutated or deleted after creation; ordering is by CreatedAt ascending,
// which matches insertion order.
type Message struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	TicketID  uuid.UUID      `gorm:"type:uuid;not null;index" json:"ticket_id"`
	SenderID  uuid.UUID      `gorm:"type:uuid;not null" json:"sender_id"`
	Body      string         `gorm:"type:text;not null" json:"body"`
	IsSystem  bool           `gorm:"not null;default:false" json:"is_system"`
	Meta      datatypes.JSON `gorm:"type:jsonb" json:"meta,omitempty"`
	CreatedAt time.Time      `gorm:"not null;index" json:"created_at"`
}

func (Message) TableName() string { return "ticket_messages" }

// ConversationSummary is the rolling one-per-ticket summary. SummaryText only
// ever grows: updates append a bullet line, never replace prior text.
type ConversationSummary struct {
	TicketID      uuid.UUID `gorm:"type:uuid;primaryKey" json:"ticket_id"`
	SummaryText   string    `gorm:"type:text;not null" json:"summary_text"`
	LastMessageAt time.Time `gorm:"not null" json:"last_message_at"`
	UpdatedAt     time.Time `gorm:"not null" json:"updated_at"`
}

func (ConversationSummary) TableName() string { return "conversation_summaries" }

// ---------------------------------------------------------------------------
// Driver
// ---------------------------------------------------------------------------

type FindTickets struct {
	Status  *TicketStatus
	Limit   int
	Offset  int
}

// Driver is the persistence boundary. Implementations must make each call
// independently atomic; no cross-call transaction is assumed.
type Driver interface {
	CreateTicket(ctx context.Context, t *Ticket) error
	GetTicket(ctx context.Context, id uuid.UUID) (*Ticket, error)
	ListTickets(ctx context.Context, find FindTickets) ([]*Ticket, error)
	UpdateTicketStatus(ctx context.Context, id uuid.UUID, status TicketStatus) error

	CreateMessage(ctx context.Context, m *Message) error
	// ListMessages returns messages ascending by CreatedAt. A positive limit
	// returns the most recent limit messages, still in ascending order.
	ListMessages(ctx context.Context, ticketID uuid.UUID, limit int) ([]*Message, error)

	GetSummary(ctx context.Context, ticketID uuid.UUID) (*ConversationSummary, error)
	UpsertSummary(ctx context.Context, s *ConversationSummary) error
}
