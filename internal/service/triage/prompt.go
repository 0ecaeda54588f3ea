package triage

import (
	"fmt"
	"strings"

	"github.com/99-jordan/yarro-maintenance-triage/internal/store"
	"github.com/99-jordan/yarro-maintenance-triage/pkg/llm"
)

const systemPromptTemplate = `You are the maintenance triage assistant for a residential property
management platform. A tenant reports an issue; you help diagnose it, classify it, and decide
whether the managing agent needs to step in.

Current ticket:
- title: %s
- description: %s
- status: %s
- severity: %s

%sRespond with a single JSON object only, no prose around it:
{
  "reply": "message shown to the tenant",
  "category": "plumbing|electrical|heating|appliance|structural|pest|general",
  "severity": "low|normal|high|urgent",
  "next_actions": ["short suggested steps"],
  "escalate": true|false,
  "reason": "why you chose this severity / escalation",
  "summary_update": "one line describing what changed this turn",
  "actions": [{"type": "update_ticket_status|request_photos|escalate_to_agent", "action_id": "unique-id", "params": {}}]
}

Rules:
- Safety issues (gas, major leaks, exposed wiring, no heat in winter) are high or urgent and escalate.
- Propose update_ticket_status with params.status when work should begin (in_progress) or the
  tenant confirms the issue is gone (resolved).
- Propose request_photos with params.prompt when a photo would materially help diagnosis.
- Propose escalate_to_agent with params.reason when a professional or the agent must act.
- Give every action a fresh unique action_id; never reuse an id from earlier in the conversation.
- Keep "reply" practical and reassuring. Do not mention this JSON contract.`

// buildSystemPrompt renders ticket context and the rolling summary into the
// system instructions.
func buildSystemPrompt(t *store.Ticket, summaryText string) string {
	summaryBlock := ""
	if strings.TrimSpace(summaryText) != "" {
		summaryBlock = "Conversation so far (rolling summary):\n" + summaryText + "\n\n"
	}
	return fmt.Sprintf(systemPromptTemplate,
		t.Title, t.Description, t.Status, t.Severity, summaryBlock)
}

// buildTurns maps the message history to role-tagged turns: system-authored
// messages become assistant turns, everything human becomes a user turn.
// Tenant and agent messages are both "user" from the model's point of view.
// The inbound message is already the last entry of history when this runs.
func buildTurns(history []*store.Message) []llm.Turn {
	turns := make([]llm.Turn, 0, len(history))
	for _, m := range history {
		role := llm.RoleUser
		if m.IsSystem {
			role = llm.RoleAssistant
		}
		turns = append(turns, llm.Turn{Role: role, Content: m.Body})
	}
	return turns
}

// observeLine builds the synthetic one-line summary entry for a message the
// AI did not see, so later turns stay aware of human-to-human exchanges.
func observeLine(body string) string {
	line := strings.Join(strings.Fields(body), " ")
	const maxLen = 140
	if len(line) > maxLen {
		line = line[:maxLen] + "…"
	}
	return "Message (no AI turn): " + line
}
