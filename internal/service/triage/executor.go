package triage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/99-jordan/yarro-maintenance-triage/internal/service/conversation"
	"github.com/99-jordan/yarro-maintenance-triage/internal/service/ticket"
	"github.com/99-jordan/yarro-maintenance-triage/internal/store"
)

// actorAI is the actor tag recorded for status changes applied by the engine.
const actorAI = "triage-assistant"

// EventPublisher is the optional fire-and-forget notification channel used by
// escalate_to_agent. *nats.Conn satisfies it.
type EventPublisher interface {
	Publish(subject string, data []byte) error
}

// executor turns each proposed action into at most one durable effect with an
// audit message per outcome. Actions are isolated: one failing does not stop
// the rest of the batch, and no action error reaches the engine's caller.
type executor struct {
	tickets     ticket.Service
	conv        conversation.Service
	publisher   EventPublisher
	photoPrompt string
}

// execute runs the actions in order and returns the audit messages created.
func (e *executor) execute(ctx context.Context, t *store.Ticket, actions []Action) []*store.Message {
	var audits []*store.Message
	for _, action := range actions {
		seen, err := e.conv.HasActionID(ctx, t.ID, action.ID)
		if err != nil {
			slog.Warn("action id scan failed, skipping action",
				"ticket_id", t.ID, "action_id", action.ID, "err", err)
			continue
		}
		if seen {
			// Already processed in a prior turn; skip silently.
			continue
		}

		if msg := e.dispatch(ctx, t, action); msg != nil {
			audits = append(audits, msg)
		}
	}
	return audits
}

func (e *executor) dispatch(ctx context.Context, t *store.Ticket, action Action) *store.Message {
	switch action.Type {
	case ActionUpdateTicketStatus:
		return e.updateStatus(ctx, t, action)
	case ActionRequestPhotos:
		return e.requestPhotos(ctx, t, action)
	case ActionEscalateToAgent:
		return e.escalate(ctx, t, action)
	default:
		slog.Warn("unknown action type proposed",
			"ticket_id", t.ID, "action_type", action.Type, "action_id", action.ID)
		return e.audit(ctx, t, action, OutcomeSkippedUnknownType, "",
			fmt.Sprintf("Unrecognized action %q was not applied.", action.Type))
	}
}

func (e *executor) updateStatus(ctx context.Context, t *store.Ticket, action Action) *store.Message {
	rawStatus, _ := action.Params["status"].(string)
	status, ok := store.ParseTicketStatus(rawStatus)
	if !ok {
		return e.audit(ctx, t, action, OutcomeSkippedInvalidStatus, "",
			fmt.Sprintf("Proposed status %q is not recognized; ticket left as %s.", rawStatus, t.Status))
	}

	if err := e.tickets.SetStatus(ctx, t.ID, string(status), actorAI); err != nil {
		return e.audit(ctx, t, action, OutcomeFailed, err.Error(),
			fmt.Sprintf("Could not move ticket to %s.", status))
	}
	return e.audit(ctx, t, action, OutcomeOK, "",
		fmt.Sprintf("Ticket status changed to %s.", status))
}

func (e *executor) requestPhotos(ctx context.Context, t *store.Ticket, action Action) *store.Message {
	prompt, _ := action.Params["prompt"].(string)
	if prompt == "" {
		prompt = e.photoPrompt
	}
	return e.audit(ctx, t, action, OutcomeOK, "", prompt)
}

func (e *executor) escalate(ctx context.Context, t *store.Ticket, action Action) *store.Message {
	reason, _ := action.Params["reason"].(string)
	body := "This ticket has been flagged for the managing agent's attention."
	if reason != "" {
		body = fmt.Sprintf("Escalated to the managing agent: %s", reason)
	}

	// The audit message is written unconditionally; the notification is
	// fire-and-forget and must not affect it.
	msg := e.audit(ctx, t, action, OutcomeOK, "", body)

	if e.publisher != nil {
		subject := fmt.Sprintf("yarro.ticket.escalated.%s", t.ID)
		if err := e.publisher.Publish(subject, []byte(reason)); err != nil {
			slog.Warn("escalation notify failed", "ticket_id", t.ID, "err", err)
		}
	}
	return msg
}

// audit appends the system message recording an action outcome. Its meta is
// what future idempotency scans match against, so an append failure here is
// logged loudly: a lost audit row means the action could re-run next turn.
func (e *executor) audit(ctx context.Context, t *store.Ticket, action Action, outcome, errDetail, body string) *store.Message {
	meta := store.Meta{
		Kind: store.MetaKindActionAudit,
		Audit: &store.ActionAudit{
			ActionType: action.Type,
			ActionID:   action.ID,
			Params:     action.Params,
			Outcome:    outcome,
			Error:      errDetail,
		},
	}
	msg, err := e.conv.Append(ctx, conversation.AppendRequest{
		TicketID: t.ID,
		SenderID: uuid.Nil,
		Body:     body,
		IsSystem: true,
		Meta:     meta,
	})
	if err != nil {
		slog.Error("audit message append failed",
			"ticket_id", t.ID, "action_id", action.ID, "outcome", outcome, "err", err)
		return nil
	}
	return msg
}
