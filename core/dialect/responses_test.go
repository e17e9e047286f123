package dialect

import (
	"strings"
	"testing"

	"github.com/leofalp/switchboard/core/chat"
	"github.com/leofalp/switchboard/providers/catalog"
)

func responsesDef() catalog.ProviderDefinition {
	def := openAIDef()
	def.ResponsesPrefix = "gpt-5"
	def.ResponsesPath = "/v1/responses"
	return def
}

// TestBuildResponses_Routing verifies that only models under the declared
// prefix take the responses endpoint.
func TestBuildResponses_Routing(t *testing.T) {
	def := responsesDef()
	request := &chat.Request{Model: "gpt-5-mini", Messages: []chat.Message{chat.User("hi")}}

	built, err := BuildRequest(def, request, "sk", false)
	if err != nil {
		t.Fatalf("BuildRequest: %v", err)
	}
	if !strings.HasSuffix(built.URL, "/v1/responses") {
		t.Errorf("URL = %q, want responses endpoint", built.URL)
	}

	request.Model = "acme-large"
	built, err = BuildRequest(def, request, "sk", false)
	if err != nil {
		t.Fatalf("BuildRequest: %v", err)
	}
	if !strings.HasSuffix(built.URL, "/v1/chat/completions") {
		t.Errorf("URL = %q, want chat completions endpoint", built.URL)
	}
}

// TestBuildResponses_Body verifies the wire shape: system prompt in
// instructions, remaining turns in input, max_output_tokens naming.
func TestBuildResponses_Body(t *testing.T) {
	maxTokens := 64
	request := &chat.Request{
		Model: "gpt-5-mini",
		Messages: []chat.Message{
			chat.System("be terse"),
			chat.User("hello"),
			chat.Assistant("hi"),
			chat.User("more"),
		},
		Params:   &chat.Params{MaxTokens: &maxTokens},
		JSONMode: true,
	}

	built, err := BuildRequest(responsesDef(), request, "sk", false)
	if err != nil {
		t.Fatalf("BuildRequest: %v", err)
	}

	body := bodyAsMap(t, built)
	if body["instructions"] != "be terse" {
		t.Errorf("instructions = %v", body["instructions"])
	}
	input := body["input"].([]any)
	if len(input) != 3 {
		t.Fatalf("len(input) = %d, want 3 (system extracted)", len(input))
	}
	if body["max_output_tokens"] != float64(64) {
		t.Errorf("max_output_tokens = %v", body["max_output_tokens"])
	}
	text := body["text"].(map[string]any)
	format := text["format"].(map[string]any)
	if format["type"] != "json_object" {
		t.Errorf("text.format = %v", format)
	}
	if got := findHeader(t, built, "Authorization"); got != "Bearer sk" {
		t.Errorf("Authorization = %q", got)
	}
}

// TestParseResponses_FallbackChain walks the extraction order.
func TestParseResponses_FallbackChain(t *testing.T) {
	def := responsesDef()

	t.Run("output_text wins", func(t *testing.T) {
		body := []byte(`{"output_text":"direct","output":[{"type":"message","content":[{"type":"output_text","text":"nested"}]}]}`)
		response := ParseResponse(def, "gpt-5-mini", 200, body, nil)
		if response.Text != "direct" {
			t.Errorf("Text = %q, want direct", response.Text)
		}
	})

	t.Run("string text field", func(t *testing.T) {
		body := []byte(`{"text":"inlined"}`)
		response := ParseResponse(def, "gpt-5-mini", 200, body, nil)
		if response.Text != "inlined" {
			t.Errorf("Text = %q, want inlined", response.Text)
		}
	})

	t.Run("object text field is not content", func(t *testing.T) {
		body := []byte(`{"text":{"format":{"type":"text"}},"output":[{"type":"message","content":[{"type":"output_text","text":"real"}]}]}`)
		response := ParseResponse(def, "gpt-5-mini", 200, body, nil)
		if response.Text != "real" {
			t.Errorf("Text = %q, want real", response.Text)
		}
	})

	t.Run("typed part beats untyped", func(t *testing.T) {
		body := []byte(`{"output":[{"type":"message","content":[{"type":"annotation","text":"meta"},{"type":"output_text","text":"real"}]}]}`)
		response := ParseResponse(def, "gpt-5-mini", 200, body, nil)
		if response.Text != "real" {
			t.Errorf("Text = %q, want the output_text part", response.Text)
		}
	})

	t.Run("item inline text", func(t *testing.T) {
		body := []byte(`{"output":[{"type":"message","text":"inline item"}]}`)
		response := ParseResponse(def, "gpt-5-mini", 200, body, nil)
		if response.Text != "inline item" {
			t.Errorf("Text = %q", response.Text)
		}
	})

	t.Run("first message item parts", func(t *testing.T) {
		body := []byte(`{"output":[
			{"type":"reasoning","content":[]},
			{"type":"message","content":[{"type":"output_text","text":"part one"},{"type":"output_text","text":" and two"}]}
		]}`)
		response := ParseResponse(def, "gpt-5-mini", 200, body, nil)
		if response.Text != "part one and two" {
			t.Errorf("Text = %q", response.Text)
		}
	})

	t.Run("first text anywhere", func(t *testing.T) {
		body := []byte(`{"output":[
			{"type":"reasoning","content":[]},
			{"type":"note","content":[{"text":"beta"}]}
		]}`)
		response := ParseResponse(def, "gpt-5-mini", 200, body, nil)
		if response.Text != "beta" {
			t.Errorf("Text = %q, want the first text found", response.Text)
		}
	})

	t.Run("empty output errors with count", func(t *testing.T) {
		response := ParseResponse(def, "gpt-5-mini", 200, []byte(`{"output":[]}`), nil)
		if response.OK() {
			t.Fatal("expected an error response")
		}
		if !strings.Contains(response.ErrorMessage, "0") {
			t.Errorf("error = %q, want the item count", response.ErrorMessage)
		}
	})
}

// TestParseResponses_Usage verifies the input/output token naming on the
// responses endpoint.
func TestParseResponses_Usage(t *testing.T) {
	body := []byte(`{"id":"resp_1","output_text":"ok","usage":{"input_tokens":11,"output_tokens":22}}`)
	response := ParseResponse(responsesDef(), "gpt-5-mini", 200, body, nil)
	if response.Usage == nil || response.Usage.InputTokens != 11 || response.Usage.OutputTokens != 22 {
		t.Errorf("usage = %+v", response.Usage)
	}
	if response.RequestID != "resp_1" {
		t.Errorf("RequestID = %q", response.RequestID)
	}
}
