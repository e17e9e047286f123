package chat

import "testing"

// TestResponseOK verifies the success/error exclusivity rule.
func TestResponseOK(t *testing.T) {
	success := NewTextResponse("openai", "gpt-4.1", "hello")
	if !success.OK() {
		t.Error("text response should be OK")
	}
	if success.ErrorMessage != "" {
		t.Errorf("text response carries error %q", success.ErrorMessage)
	}

	failure := NewErrorResponse("openai", "gpt-4.1", "rate limited")
	if failure.OK() {
		t.Error("error response should not be OK")
	}
	if failure.Text != "" {
		t.Errorf("error response carries text %q", failure.Text)
	}
}

// TestResponse_EmptyTextStillOK verifies that an empty completion without a
// recorded error counts as success; only the normalizer decides when empty
// content becomes an error.
func TestResponse_EmptyTextStillOK(t *testing.T) {
	r := &Response{Provider: "groq", Model: "m"}
	if !r.OK() {
		t.Error("response without error message should be OK")
	}
}
