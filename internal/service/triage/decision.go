package triage

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/99-jordan/yarro-maintenance-triage/internal/store"
)

// Action types the executor understands.
const (
	ActionUpdateTicketStatus = "update_ticket_status"
	ActionRequestPhotos      = "request_photos"
	ActionEscalateToAgent    = "escalate_to_agent"
)

// Audit outcomes recorded on action audit messages.
const (
	OutcomeOK                   = "ok"
	OutcomeFailed               = "failed"
	OutcomeSkippedInvalidStatus = "skipped_invalid_status"
	OutcomeSkippedUnknownType   = "skipped_unknown_type"
)

// Categories the model may classify a ticket into.
var knownCategories = map[string]bool{
	"plumbing":   true,
	"electrical": true,
	"heating":    true,
	"appliance":  true,
	"structural": true,
	"pest":       true,
	"general":    true,
}

// Action is one instruction proposed by the model. ID is the caller-supplied
// idempotency key: an id that already produced an audit message is skipped.
type Action struct {
	Type   string         `json:"type"`
	ID     string         `json:"action_id"`
	Params map[string]any `json:"params,omitempty"`
}

// Decision is the structured output of one triage turn.
type Decision struct {
	Reply         string   `json:"reply"`
	Category      string   `json:"category"`
	Severity      string   `json:"severity"`
	NextActions   []string `json:"next_actions"`
	Escalate      bool     `json:"escalate"`
	Reason        string   `json:"reason"`
	SummaryUpdate string   `json:"summary_update,omitempty"`
	Actions       []Action `json:"actions,omitempty"`
}

const fallbackReply = "Thanks for the update. Could you tell us a bit more about the issue, when it started," +
	"where in the property it is, and anything you've already tried? A photo also helps."

// fallbackDecision is returned whenever the reasoning call fails, times out,
// or produces output we cannot parse. A triage turn must never leave the
// ticket without a reply.
func fallbackDecision() Decision {
	return Decision{
		Reply:       fallbackReply,
		Category:    "general",
		Severity:    string(store.SeverityNormal),
		NextActions: []string{},
		Escalate:    false,
		Reason:      "reasoning service unavailable; requested more detail",
	}
}

// decisionSchema is sent to the reasoning service as the json_schema response
// format, so structured output is enforced upstream where supported.
var decisionSchema = json.RawMessage(`{
	"type": "object",
	"additionalProperties": false,
	"properties": {
		"reply": {"type": "string"},
		"category": {"type": "string", "enum": ["plumbing", "electrical", "heating", "appliance", "structural", "pest", "general"]},
		"severity": {"type": "string", "enum": ["low", "normal", "high", "urgent"]},
		"next_actions": {"type": "array", "items": {"type": "string"}},
		"escalate": {"type": "boolean"},
		"reason": {"type": "string"},
		"summary_update": {"type": "string"},
		"actions": {
			"type": "array",
			"items": {
				"type": "object",
				"additionalProperties": false,
				"properties": {
					"type": {"type": "string", "enum": ["update_ticket_status", "request_photos", "escalate_to_agent"]},
					"action_id": {"type": "string"},
					"params": {"type": "object", "additionalProperties": true}
				},
				"required": ["type", "action_id", "params"]
			}
		}
	},
	"required": ["reply", "category", "severity", "next_actions", "escalate", "reason", "summary_update", "actions"]
}`)

// parseDecision decodes the model's raw output into a Decision, normalizing
// out-of-enum category/severity values instead of rejecting the whole turn.
func parseDecision(raw string) (Decision, error) {
	raw = stripCodeFence(raw)

	var d Decision
	if err := json.Unmarshal([]byte(raw), &d); err != nil {
		return Decision{}, fmt.Errorf("parse triage decision: %w", err)
	}
	if strings.TrimSpace(d.Reply) == "" {
		return Decision{}, fmt.Errorf("parse triage decision: empty reply")
	}

	d.Category = strings.ToLower(strings.TrimSpace(d.Category))
	if !knownCategories[d.Category] {
		d.Category = "general"
	}
	if sev, ok := store.ParseSeverity(d.Severity); ok {
		d.Severity = string(sev)
	} else {
		d.Severity = string(store.SeverityNormal)
	}
	if d.NextActions == nil {
		d.NextActions = []string{}
	}
	return d, nil
}

// stripCodeFence removes a surrounding markdown code fence, which some models
// wrap around JSON output even in structured mode.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
