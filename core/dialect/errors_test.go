package dialect

import (
	"strings"
	"testing"
)

// TestErrorMessageFromJSON covers the three envelope forms.
func TestErrorMessageFromJSON(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{"nested object", `{"error":{"message":"insufficient quota","type":"billing"}}`, "insufficient quota"},
		{"plain string error", `{"error":"model not found"}`, "model not found"},
		{"top-level message", `{"message":"forbidden"}`, "forbidden"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := errorMessageFromJSON([]byte(tc.body))
			if !ok {
				t.Fatal("expected a message")
			}
			if got != tc.want {
				t.Errorf("got %q, want %q", got, tc.want)
			}
		})
	}

	t.Run("no envelope", func(t *testing.T) {
		if _, ok := errorMessageFromJSON([]byte(`{"choices":[]}`)); ok {
			t.Error("a normal payload should not yield an error message")
		}
	})

	t.Run("not json", func(t *testing.T) {
		if _, ok := errorMessageFromJSON([]byte("Bad Gateway")); ok {
			t.Error("plain text should not parse as an envelope")
		}
	})
}

// TestExtractErrorMessage covers the non-JSON renderings.
func TestExtractErrorMessage(t *testing.T) {
	t.Run("json envelope", func(t *testing.T) {
		got := extractErrorMessage([]byte(`{"error":{"message":"boom"}}`))
		if got != "boom" {
			t.Errorf("got %q", got)
		}
	})

	t.Run("html page to markdown", func(t *testing.T) {
		html := `<!DOCTYPE html><html><head><title>502</title></head>
			<body><h1>502 Bad Gateway</h1><p>The upstream server is down.</p></body></html>`
		got := extractErrorMessage([]byte(html))
		if strings.Contains(got, "<body>") || strings.Contains(got, "<p>") {
			t.Errorf("markup should be gone: %q", got)
		}
		if !strings.Contains(got, "Bad Gateway") {
			t.Errorf("useful words should survive: %q", got)
		}
	})

	t.Run("plain text passthrough", func(t *testing.T) {
		got := extractErrorMessage([]byte("  service unavailable\n"))
		if got != "service unavailable" {
			t.Errorf("got %q", got)
		}
	})

	t.Run("empty body", func(t *testing.T) {
		got := extractErrorMessage(nil)
		if got != "empty response body" {
			t.Errorf("got %q", got)
		}
	})

	t.Run("long bodies truncate", func(t *testing.T) {
		got := extractErrorMessage([]byte(strings.Repeat("x", 5000)))
		if len(got) > 600 {
			t.Errorf("len = %d, want truncated output", len(got))
		}
	})
}
