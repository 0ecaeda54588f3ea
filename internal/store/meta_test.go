package store

import (
	"testing"
)

func TestEncodeDecodeMeta_Classification(t *testing.T) {
	meta := Meta{
		Kind: MetaKindClassification,
		Classification: &Classification{
			Category:    "plumbing",
			Severity:    "urgent",
			NextActions: []string{"send plumber"},
			Escalate:    true,
			Reason:      "active leak",
		},
	}

	raw, err := meta.Encode()
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	decoded, err := DecodeMeta(raw)
	if err != nil {
		t.Fatalf("DecodeMeta failed: %v", err)
	}
	if decoded.Kind != MetaKindClassification {
		t.Errorf("Kind = %q, want %q", decoded.Kind, MetaKindClassification)
	}
	if decoded.Classification == nil {
		t.Fatal("Classification is nil after decode")
	}
	if decoded.Classification.Category != "plumbing" {
		t.Errorf("Category = %q, want plumbing", decoded.Classification.Category)
	}
	if !decoded.Classification.Escalate {
		t.Error("Escalate lost in round trip")
	}
}

func TestDecodeMeta_EmptyDefaultsToPlain(t *testing.T) {
	for _, raw := range [][]byte{nil, []byte(""), []byte("null")} {
		meta, err := DecodeMeta(raw)
		if err != nil {
			t.Fatalf("DecodeMeta(%q) failed: %v", raw, err)
		}
		if meta.Kind != MetaKindPlain {
			t.Errorf("DecodeMeta(%q).Kind = %q, want plain", raw, meta.Kind)
		}
	}
}

func TestMetaActionID(t *testing.T) {
	meta := Meta{
		Kind: MetaKindActionAudit,
		Audit: &ActionAudit{
			ActionType: "update_ticket_status",
			ActionID:   "act-1",
			Outcome:    "ok",
		},
	}
	raw, err := meta.Encode()
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	if got := MetaActionID(raw); got != "act-1" {
		t.Errorf("MetaActionID = %q, want act-1", got)
	}

	plain, _ := PlainMeta().Encode()
	if got := MetaActionID(plain); got != "" {
		t.Errorf("MetaActionID on plain meta = %q, want empty", got)
	}
}
