package llm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/99-jordan/yarro-maintenance-triage/config"
)

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	c, err := NewFromCentral(config.ReasoningConfig{
		BaseURL: baseURL,
		APIKey:  "test-key",
		Model:   "gpt-4o-mini",
	})
	if err != nil {
		t.Fatalf("NewFromCentral failed: %v", err)
	}
	return c
}

func completionResponse(content string) string {
	return `{"id": "cmpl-1", "choices": [{"index": 0, "message": {"role": "assistant", "content": ` +
		string(mustJSON(content)) + `}}]}`
}

func mustJSON(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}

func TestChat_RequestShape(t *testing.T) {
	var captured map[string]any
	var gotAuth string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &captured); err != nil {
			t.Errorf("request body not JSON: %v", err)
		}
		_, _ = w.Write([]byte(completionResponse(`{"ok": true}`)))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	out, err := c.Chat(context.Background(), ChatRequest{
		System:     "be useful",
		Turns:      []Turn{{Role: RoleUser, Content: "hi"}},
		SchemaName: "triage_decision",
		Schema:     json.RawMessage(`{"type": "object"}`),
	})
	if err != nil {
		t.Fatalf("Chat failed: %v", err)
	}
	if out != `{"ok": true}` {
		t.Errorf("Chat = %q", out)
	}

	if gotAuth != "Bearer test-key" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if captured["model"] != "gpt-4o-mini" {
		t.Errorf("model = %v", captured["model"])
	}

	msgs, _ := captured["messages"].([]any)
	if len(msgs) != 2 {
		t.Fatalf("got %d messages, want system + user", len(msgs))
	}
	first, _ := msgs[0].(map[string]any)
	if first["role"] != "system" || first["content"] != "be useful" {
		t.Errorf("first message = %v", first)
	}

	rf, _ := captured["response_format"].(map[string]any)
	if rf["type"] != "json_schema" {
		t.Errorf("response_format = %v", rf)
	}
	js, _ := rf["json_schema"].(map[string]any)
	if js["name"] != "triage_decision" || js["strict"] != true {
		t.Errorf("json_schema config = %v", js)
	}
}

func TestChat_ImageAttachedToFinalUserTurn(t *testing.T) {
	var captured map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &captured)
		_, _ = w.Write([]byte(completionResponse("seen")))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	_, err := c.Chat(context.Background(), ChatRequest{
		Turns: []Turn{
			{Role: RoleUser, Content: "earlier message"},
			{Role: RoleAssistant, Content: "noted"},
			{Role: RoleUser, Content: "photo attached"},
		},
		ImageURL: "https://cdn.example.com/leak.jpg",
	})
	if err != nil {
		t.Fatalf("Chat failed: %v", err)
	}

	msgs, _ := captured["messages"].([]any)
	if len(msgs) != 3 {
		t.Fatalf("got %d messages, want 3", len(msgs))
	}

	// Earlier turns stay plain strings.
	first, _ := msgs[0].(map[string]any)
	if _, isString := first["content"].(string); !isString {
		t.Errorf("first message content = %T, want string", first["content"])
	}

	// The final user turn becomes text + image parts.
	last, _ := msgs[2].(map[string]any)
	parts, _ := last["content"].([]any)
	if len(parts) != 2 {
		t.Fatalf("final content = %v, want two parts", last["content"])
	}
	img, _ := parts[1].(map[string]any)
	if img["type"] != "image_url" {
		t.Errorf("second part = %v", img)
	}
}

func TestChat_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error": "rate limited"}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	_, err := c.Chat(context.Background(), ChatRequest{
		Turns: []Turn{{Role: RoleUser, Content: "hi"}},
	})
	if err == nil {
		t.Fatal("Chat succeeded, want status error")
	}

	var statusErr *HTTPStatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("error = %v, want HTTPStatusError", err)
	}
	if statusErr.StatusCode != http.StatusTooManyRequests {
		t.Errorf("StatusCode = %d, want 429", statusErr.StatusCode)
	}
}

func TestChat_NoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id": "cmpl-1", "choices": []}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	_, err := c.Chat(context.Background(), ChatRequest{
		Turns: []Turn{{Role: RoleUser, Content: "hi"}},
	})
	if err == nil {
		t.Error("Chat succeeded on empty choices, want error")
	}
}

func TestChatURL(t *testing.T) {
	cases := map[string]string{
		"https://api.openai.com/v1":  "https://api.openai.com/v1/chat/completions",
		"https://api.openai.com/v1/": "https://api.openai.com/v1/chat/completions",
		"http://localhost:11434":     "http://localhost:11434/v1/chat/completions",
		"":                           "https://api.openai.com/v1/chat/completions",
	}
	for base, want := range cases {
		if got := chatURL(base); got != want {
			t.Errorf("chatURL(%q) = %q, want %q", base, got, want)
		}
	}
}

func TestNewFromCentral_RequiresModel(t *testing.T) {
	if _, err := NewFromCentral(config.ReasoningConfig{}); err == nil {
		t.Error("NewFromCentral without model succeeded, want error")
	}
}
