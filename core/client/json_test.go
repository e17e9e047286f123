package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/leofalp/switchboard/core/chat"
)

type release struct {
	Version string `json:"version"`
	Stable  bool   `json:"stable"`
}

// TestCompleteJSON verifies the structured path: JSON mode is forced onto
// the wire request and the completion parses into the target type.
func TestCompleteJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var wire struct {
			ResponseFormat *struct {
				Type string `json:"type"`
			} `json:"response_format"`
		}
		if err := json.NewDecoder(r.Body).Decode(&wire); err != nil {
			t.Errorf("decoding request body: %v", err)
		}
		if wire.ResponseFormat == nil || wire.ResponseFormat.Type != "json_object" {
			t.Errorf("response_format = %+v, want json_object", wire.ResponseFormat)
		}

		fmt.Fprint(w, completionPayload("req-1", `{"version":"2.4.0","stable":true}`, 5, 9))
	}))
	defer server.Close()

	c := newTestClient(t, testCatalog(t, openAIDef("unit-box", server.URL)))
	value, response, err := CompleteJSON[release](context.Background(), c, "unit-box", &chat.Request{
		Messages: []chat.Message{chat.User("latest release?")},
	})
	if err != nil {
		t.Fatalf("CompleteJSON: %v", err)
	}

	if value.Version != "2.4.0" || !value.Stable {
		t.Errorf("parsed %+v, want version 2.4.0 stable", value)
	}
	if response == nil || response.Text == "" {
		t.Error("raw response missing alongside the parsed value")
	}
}

// TestCompleteJSON_DoesNotMutateRequest verifies the caller's request is
// left untouched when JSON mode is forced.
func TestCompleteJSON_DoesNotMutateRequest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, completionPayload("req-1", `{"version":"1.0.0","stable":false}`, 1, 1))
	}))
	defer server.Close()

	c := newTestClient(t, testCatalog(t, openAIDef("unit-box", server.URL)))
	request := &chat.Request{Messages: []chat.Message{chat.User("hi")}}
	if _, _, err := CompleteJSON[release](context.Background(), c, "unit-box", request); err != nil {
		t.Fatalf("CompleteJSON: %v", err)
	}
	if request.JSONMode {
		t.Error("caller's request was mutated to JSON mode")
	}
}

// TestCompleteJSON_RepairsDressedPayload verifies the parser tolerance
// carries through: fenced and narrated JSON still parses.
func TestCompleteJSON_RepairsDressedPayload(t *testing.T) {
	content := "Here is the release info:\n```json\n{\"version\": \"3.1.0\", \"stable\": true}\n```"
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, completionPayload("req-1", content, 4, 12))
	}))
	defer server.Close()

	c := newTestClient(t, testCatalog(t, openAIDef("unit-box", server.URL)))
	value, _, err := CompleteJSON[release](context.Background(), c, "unit-box", &chat.Request{
		Messages: []chat.Message{chat.User("latest release?")},
	})
	if err != nil {
		t.Fatalf("CompleteJSON: %v", err)
	}
	if value.Version != "3.1.0" {
		t.Errorf("Version = %q, want %q", value.Version, "3.1.0")
	}
}

// TestCompleteJSON_ProviderError verifies an error response comes back
// alongside the error so callers keep the diagnostics.
func TestCompleteJSON_ProviderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error":{"message":"bad key"}}`)
	}))
	defer server.Close()

	c := newTestClient(t, testCatalog(t, openAIDef("unit-box", server.URL)))
	_, response, err := CompleteJSON[release](context.Background(), c, "unit-box", &chat.Request{
		Messages: []chat.Message{chat.User("hi")},
	})
	if err == nil {
		t.Fatal("CompleteJSON succeeded against a failing provider")
	}
	if !strings.Contains(err.Error(), "provider error") {
		t.Errorf("error = %q, want the provider-error wrap", err)
	}
	if response == nil || response.OK() {
		t.Error("expected the error response alongside the error")
	}
}

// TestCompleteJSON_UnparseableCompletion verifies a completion that cannot
// be coerced into the target type errors but keeps the raw response.
func TestCompleteJSON_UnparseableCompletion(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, completionPayload("req-1", "I cannot answer that.", 3, 6))
	}))
	defer server.Close()

	c := newTestClient(t, testCatalog(t, openAIDef("unit-box", server.URL)))
	_, response, err := CompleteJSON[release](context.Background(), c, "unit-box", &chat.Request{
		Messages: []chat.Message{chat.User("hi")},
	})
	if err == nil {
		t.Fatal("CompleteJSON parsed prose as a release")
	}
	if !strings.Contains(err.Error(), "parsing structured response") {
		t.Errorf("error = %q, want the parse wrap", err)
	}
	if response == nil || response.Text != "I cannot answer that." {
		t.Error("expected the raw response alongside the parse error")
	}
}
