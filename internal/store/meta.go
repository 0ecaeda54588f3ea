package store

import (
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"
)

// MetaKind discriminates the message meta union. In process the engine works
// with exhaustive-checked variants; at the storage boundary the union is
// flattened into the message's JSON meta column.
type MetaKind string

const (
	// MetaKindPlain marks an ordinary human or system message with no
	// structured payload.
	MetaKindPlain MetaKind = "plain"
	// MetaKindClassification marks the system message carrying an AI triage
	// decision.
	MetaKindClassification MetaKind = "ai_classification"
	// MetaKindActionAudit marks a system message recording the outcome of a
	// proposed action.
	MetaKindActionAudit MetaKind = "action_audit"
)

// Classification is the AI's triage decision attached to its reply message.
type Classification struct {
	Category    string   `json:"category"`
	Severity    string   `json:"severity"`
	NextActions []string `json:"next_actions,omitempty"`
	Escalate    bool     `json:"escalate"`
	Reason      string   `json:"reason,omitempty"`
}

// ActionAudit records what happened to one proposed action. The ActionID
// field is what idempotency checks scan against.
type ActionAudit struct {
	ActionType string         `json:"action_type"`
	ActionID   string         `json:"action_id"`
	Params     map[string]any `json:"params,omitempty"`
	Outcome    string         `json:"outcome"`
	Error      string         `json:"error,omitempty"`
}

// Meta is the tagged union carried by every message. Exactly one of the
// variant pointers is set for non-plain kinds.
type Meta struct {
	Kind           MetaKind        `json:"kind"`
	Classification *Classification `json:"classification,omitempty"`
	Audit          *ActionAudit    `json:"audit,omitempty"`
	ImageRef       string          `json:"image_ref,omitempty"`
}

func PlainMeta() Meta {
	return Meta{Kind: MetaKindPlain}
}

func (m Meta) Encode() (datatypes.JSON, error) {
	raw, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encode message meta: %w", err)
	}
	return datatypes.JSON(raw), nil
}

// DecodeMeta parses a stored meta column. A null or empty column decodes to
// a plain meta so old rows without the kind tag stay readable.
func DecodeMeta(raw datatypes.JSON) (Meta, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return PlainMeta(), nil
	}
	var m Meta
	if err := json.Unmarshal(raw, &m); err != nil {
		return Meta{}, fmt.Errorf("decode message meta: %w", err)
	}
	if m.Kind == "" {
		m.Kind = MetaKindPlain
	}
	return m, nil
}

// MetaActionID extracts the audit action id from a stored meta column,
// returning "" for non-audit messages. Used by the idempotency scan.
func MetaActionID(raw datatypes.JSON) string {
	m, err := DecodeMeta(raw)
	if err != nil || m.Audit == nil {
		return ""
	}
	return m.Audit.ActionID
}
