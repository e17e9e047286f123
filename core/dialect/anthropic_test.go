package dialect

import (
	"strings"
	"testing"

	"github.com/leofalp/switchboard/core/chat"
	"github.com/leofalp/switchboard/providers/catalog"
)

func anthropicDef() catalog.ProviderDefinition {
	return catalog.ProviderDefinition{
		ID:       "anthropic",
		Name:     "Anthropic",
		BaseURL:  "https://api.anthropic.com",
		ChatPath: "/v1/messages",
		Dialect:  catalog.DialectAnthropic,
	}
}

// TestBuildAnthropic verifies the Messages wire form: system extraction,
// the mandatory max_tokens default, and the x-api-key/version headers.
func TestBuildAnthropic(t *testing.T) {
	request := &chat.Request{
		Model: "claude-sonnet-4-20250514",
		Messages: []chat.Message{
			chat.System("be helpful"),
			chat.System("and brief"),
			chat.User("hello"),
			chat.Assistant("hi"),
		},
	}

	built, err := BuildRequest(anthropicDef(), request, "sk-ant", false)
	if err != nil {
		t.Fatalf("BuildRequest: %v", err)
	}

	if built.URL != "https://api.anthropic.com/v1/messages" {
		t.Errorf("URL = %q", built.URL)
	}
	if got := findHeader(t, built, "x-api-key"); got != "sk-ant" {
		t.Errorf("x-api-key = %q", got)
	}
	if got := findHeader(t, built, "anthropic-version"); got != "2023-06-01" {
		t.Errorf("anthropic-version = %q", got)
	}
	if got := findHeader(t, built, "Authorization"); got != "" {
		t.Errorf("Authorization = %q, want none on this dialect", got)
	}

	body := bodyAsMap(t, built)
	if body["system"] != "be helpful\n\nand brief" {
		t.Errorf("system = %q", body["system"])
	}
	messages := body["messages"].([]any)
	if len(messages) != 2 {
		t.Fatalf("len(messages) = %d, want 2 (system extracted)", len(messages))
	}
	first := messages[0].(map[string]any)
	if first["role"] != "user" {
		t.Errorf("first role = %v", first["role"])
	}
	if body["max_tokens"] != float64(4096) {
		t.Errorf("max_tokens = %v, want the 4096 default", body["max_tokens"])
	}
}

// TestBuildAnthropic_Params verifies parameter mapping, including the
// max_tokens override and stop sequence renaming.
func TestBuildAnthropic_Params(t *testing.T) {
	temp := 0.3
	topK := 40
	maxTokens := 1000
	request := &chat.Request{
		Model:    "claude-sonnet-4-20250514",
		Messages: []chat.Message{chat.User("hi")},
		Params: &chat.Params{
			Temperature: &temp,
			TopK:        &topK,
			MaxTokens:   &maxTokens,
			Stop:        []string{"STOP"},
		},
	}

	built, err := BuildRequest(anthropicDef(), request, "sk-ant", true)
	if err != nil {
		t.Fatalf("BuildRequest: %v", err)
	}

	body := bodyAsMap(t, built)
	if body["max_tokens"] != float64(1000) {
		t.Errorf("max_tokens = %v", body["max_tokens"])
	}
	if body["temperature"] != 0.3 {
		t.Errorf("temperature = %v", body["temperature"])
	}
	if body["top_k"] != float64(40) {
		t.Errorf("top_k = %v", body["top_k"])
	}
	stops := body["stop_sequences"].([]any)
	if len(stops) != 1 || stops[0] != "STOP" {
		t.Errorf("stop_sequences = %v", stops)
	}
	if body["stream"] != true {
		t.Error("stream should be set")
	}
}

// TestParseAnthropic verifies block extraction: first text block, then any
// block carrying text or thinking.
func TestParseAnthropic(t *testing.T) {
	t.Run("first text block", func(t *testing.T) {
		body := []byte(`{"id":"msg_1","content":[
			{"type":"thinking","thinking":"hmm"},
			{"type":"text","text":"the answer"}
		],"usage":{"input_tokens":9,"output_tokens":3}}`)

		response := ParseResponse(anthropicDef(), "m", 200, body, nil)
		if response.Text != "the answer" {
			t.Errorf("Text = %q", response.Text)
		}
		if response.RequestID != "msg_1" {
			t.Errorf("RequestID = %q", response.RequestID)
		}
		if response.Usage == nil || response.Usage.InputTokens != 9 || response.Usage.TotalTokens != 12 {
			t.Errorf("usage = %+v", response.Usage)
		}
	})

	t.Run("thinking only", func(t *testing.T) {
		body := []byte(`{"content":[{"type":"thinking","thinking":"all reasoning"}]}`)
		response := ParseResponse(anthropicDef(), "m", 200, body, nil)
		if response.Text != "all reasoning" {
			t.Errorf("Text = %q", response.Text)
		}
	})

	t.Run("empty content errors with count", func(t *testing.T) {
		response := ParseResponse(anthropicDef(), "m", 200, []byte(`{"content":[]}`), nil)
		if response.OK() {
			t.Fatal("expected an error response")
		}
		if !strings.Contains(response.ErrorMessage, "0") {
			t.Errorf("error = %q", response.ErrorMessage)
		}
	})

	t.Run("error envelope", func(t *testing.T) {
		body := []byte(`{"type":"error","error":{"type":"overloaded_error","message":"Overloaded"}}`)
		response := ParseResponse(anthropicDef(), "m", 200, body, nil)
		if response.OK() || !strings.Contains(response.ErrorMessage, "Overloaded") {
			t.Errorf("error = %q", response.ErrorMessage)
		}
	})

	t.Run("non-2xx", func(t *testing.T) {
		body := []byte(`{"type":"error","error":{"type":"authentication_error","message":"invalid x-api-key"}}`)
		response := ParseResponse(anthropicDef(), "m", 401, body, nil)
		if !strings.Contains(response.ErrorMessage, "401") || !strings.Contains(response.ErrorMessage, "invalid x-api-key") {
			t.Errorf("error = %q", response.ErrorMessage)
		}
	})
}
