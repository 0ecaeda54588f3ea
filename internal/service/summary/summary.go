// Package summary maintains the rolling per-ticket conversation summary.
// It is a best-effort side channel: callers log and swallow its errors so a
// failed append never blocks message delivery or action execution.
package summary

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/99-jordan/yarro-maintenance-triage/internal/store"
)

var ErrNotFound = errors.New("no summary for ticket")

type Service interface {
	// AppendLine creates the ticket's summary row on first write, and on
	// later writes appends "\n- " plus the line to the prior text. Prior
	// text is never replaced or compacted.
	AppendLine(ctx context.Context, ticketID uuid.UUID, line string) error
	Get(ctx context.Context, ticketID uuid.UUID) (*store.ConversationSummary, error)
}

type summaryService struct {
	drv store.Driver
}

func New(drv store.Driver) Service {
	return &summaryService{drv: drv}
}

func (s *summaryService) AppendLine(ctx context.Context, ticketID uuid.UUID, line string) error {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}

	now := time.Now().UTC()

	existing, err := s.drv.GetSummary(ctx, ticketID)
	if err != nil && err != store.ErrNotFound {
		return fmt.Errorf("load summary: %w", err)
	}

	if existing == nil {
		existing = &store.ConversationSummary{
			TicketID:    ticketID,
			SummaryText: line,
		}
	} else {
		existing.SummaryText = existing.SummaryText + "\n- " + line
	}
	existing.LastMessageAt = now

	if err := s.drv.UpsertSummary(ctx, existing); err != nil {
		return fmt.Errorf("store summary: %w", err)
	}
	return nil
}

func (s *summaryService) Get(ctx context.Context, ticketID uuid.UUID) (*store.ConversationSummary, error) {
	sum, err := s.drv.GetSummary(ctx, ticketID)
	if err != nil {
		if err == store.ErrNotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get summary: %w", err)
	}
	return sum, nil
}
