// Package triage runs the AI turn for tenant maintenance tickets: it
// classifies the inbound message, generates the reply, and applies the
// model's proposed actions with idempotency and audit trails.
package triage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/99-jordan/yarro-maintenance-triage/config"
	"github.com/99-jordan/yarro-maintenance-triage/internal/service/conversation"
	"github.com/99-jordan/yarro-maintenance-triage/internal/service/summary"
	"github.com/99-jordan/yarro-maintenance-triage/internal/service/ticket"
	"github.com/99-jordan/yarro-maintenance-triage/internal/store"
	"github.com/99-jordan/yarro-maintenance-triage/pkg/llm"
	"github.com/99-jordan/yarro-maintenance-triage/pkg/singleflight"
)

// Reasoner is the AI backend. *llm.Client satisfies it; tests substitute
// a fake.
type Reasoner interface {
	Chat(ctx context.Context, req llm.ChatRequest) (string, error)
}

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type SubmitRequest struct {
	TicketID uuid.UUID
	SenderID uuid.UUID
	Body     string
	// ImageRef is an opaque reference to an uploaded photo, forwarded to the
	// reasoning service as-is.
	ImageRef string
	// Observe suppresses the AI turn: the message is recorded and summarized
	// but no reply, classification, or actions are produced.
	Observe bool
}

// TurnResult is everything one submitted message produced.
type TurnResult struct {
	// Inbound is the stored tenant message.
	Inbound *store.Message
	// Reply is the stored AI reply, nil for observe-only submissions.
	Reply *store.Message
	// Audits are the system messages written by action execution, in
	// execution order.
	Audits []*store.Message
	// Fallback reports that the reasoning call failed or returned an
	// unusable decision and the canned reply was used instead.
	Fallback bool
}

// ---------------------------------------------------------------------------
// Interface
// ---------------------------------------------------------------------------

type Service interface {
	// Submit appends the tenant's message and, unless req.Observe is set,
	// runs the full AI turn against it. Returns ticket.ErrNotFound when the
	// ticket does not exist; reasoning and action failures never surface as
	// errors, they degrade to the fallback reply or an audit record.
	Submit(ctx context.Context, req SubmitRequest) (*TurnResult, error)
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type engine struct {
	tickets   ticket.Service
	conv      conversation.Service
	summaries summary.Service
	reasoner  Reasoner
	exec      *executor
	publisher EventPublisher
	cfg       config.TriageConfig
	locks     *singleflight.KeyedMutex
}

func New(
	tickets ticket.Service,
	conv conversation.Service,
	summaries summary.Service,
	reasoner Reasoner,
	publisher EventPublisher,
	cfg config.TriageConfig,
) Service {
	return &engine{
		tickets:   tickets,
		conv:      conv,
		summaries: summaries,
		reasoner:  reasoner,
		exec: &executor{
			tickets:     tickets,
			conv:        conv,
			publisher:   publisher,
			photoPrompt: cfg.PhotoPrompt,
		},
		publisher: publisher,
		cfg:       cfg,
		locks:     singleflight.New(),
	}
}

func (e *engine) Submit(ctx context.Context, req SubmitRequest) (*TurnResult, error) {
	if e.cfg.SingleFlight {
		unlock := e.locks.Lock(req.TicketID.String())
		defer unlock()
	}

	t, err := e.tickets.GetByID(ctx, req.TicketID)
	if err != nil {
		if err == ticket.ErrNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("load ticket: %w", err)
	}

	inbound, err := e.appendInbound(ctx, req)
	if err != nil {
		return nil, err
	}

	if req.Observe {
		e.appendSummaryLine(ctx, t.ID, observeLine(req.Body))
		return &TurnResult{Inbound: inbound}, nil
	}

	decision, fellBack := e.decide(ctx, t, req)

	reply := e.appendReply(ctx, t, decision)

	if !fellBack {
		e.appendSummaryLine(ctx, t.ID, decision.SummaryUpdate)
	}

	audits := e.exec.execute(ctx, t, decision.Actions)

	e.publishTurn(t.ID)

	return &TurnResult{
		Inbound:  inbound,
		Reply:    reply,
		Audits:   audits,
		Fallback: fellBack,
	}, nil
}

func (e *engine) appendInbound(ctx context.Context, req SubmitRequest) (*store.Message, error) {
	meta := store.PlainMeta()
	meta.ImageRef = req.ImageRef

	msg, err := e.conv.Append(ctx, conversation.AppendRequest{
		TicketID: req.TicketID,
		SenderID: req.SenderID,
		Body:     req.Body,
		Meta:     meta,
	})
	if err != nil {
		if err == conversation.ErrTicketNotFound {
			return nil, ticket.ErrNotFound
		}
		return nil, fmt.Errorf("append message: %w", err)
	}
	return msg, nil
}

// decide gathers context, calls the reasoner, and parses its output. Any
// failure along the way falls back to the canned decision; by that point the
// inbound message is already stored, so the turn always completes.
func (e *engine) decide(ctx context.Context, t *store.Ticket, req SubmitRequest) (Decision, bool) {
	history, err := e.conv.List(ctx, t.ID, e.cfg.ContextWindow)
	if err != nil {
		slog.Error("history load failed, using fallback reply", "ticket_id", t.ID, "err", err)
		return fallbackDecision(), true
	}

	summaryText := ""
	if sum, err := e.summaries.Get(ctx, t.ID); err == nil {
		summaryText = sum.SummaryText
	} else if err != summary.ErrNotFound {
		slog.Warn("summary load failed, proceeding without it", "ticket_id", t.ID, "err", err)
	}

	raw, err := e.reasoner.Chat(ctx, llm.ChatRequest{
		System:     buildSystemPrompt(t, summaryText),
		Turns:      buildTurns(history),
		ImageURL:   req.ImageRef,
		SchemaName: "triage_decision",
		Schema:     decisionSchema,
	})
	if err != nil {
		slog.Error("reasoning call failed, using fallback reply", "ticket_id", t.ID, "err", err)
		return fallbackDecision(), true
	}

	decision, err := parseDecision(raw)
	if err != nil {
		slog.Error("reasoning output unusable, using fallback reply", "ticket_id", t.ID, "err", err)
		return fallbackDecision(), true
	}
	return decision, false
}

func (e *engine) appendReply(ctx context.Context, t *store.Ticket, d Decision) *store.Message {
	meta := store.Meta{
		Kind: store.MetaKindClassification,
		Classification: &store.Classification{
			Category:    d.Category,
			Severity:    d.Severity,
			NextActions: d.NextActions,
			Escalate:    d.Escalate,
			Reason:      d.Reason,
		},
	}
	msg, err := e.conv.Append(ctx, conversation.AppendRequest{
		TicketID: t.ID,
		SenderID: uuid.Nil,
		Body:     d.Reply,
		IsSystem: true,
		Meta:     meta,
	})
	if err != nil {
		// The reply is lost but the inbound message is safe; the next turn
		// will see it in history.
		slog.Error("reply append failed", "ticket_id", t.ID, "err", err)
		return nil
	}
	return msg
}

// appendSummaryLine is best-effort: summary failures never fail a turn.
func (e *engine) appendSummaryLine(ctx context.Context, ticketID uuid.UUID, line string) {
	if err := e.summaries.AppendLine(ctx, ticketID, line); err != nil {
		slog.Warn("summary append failed", "ticket_id", ticketID, "err", err)
	}
}

func (e *engine) publishTurn(ticketID uuid.UUID) {
	if e.publisher == nil {
		return
	}
	subject := fmt.Sprintf("yarro.ticket.turn.%s", ticketID)
	if err := e.publisher.Publish(subject, []byte(ticketID.String())); err != nil {
		slog.Warn("turn notify failed", "ticket_id", ticketID, "err", err)
	}
}
