package switchboard

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/leofalp/switchboard/core/chat"
	"github.com/leofalp/switchboard/internal/config"
	"github.com/leofalp/switchboard/providers/catalog"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		DataDir:         t.TempDir(),
		Timeout:         "30s",
		LogLevel:        "error",
		DefaultProvider: "unit-box",
	}
}

// TestNew_WiresSubsystems verifies one New call produces a working catalog,
// pricing resolver, and client sharing the data directory.
func TestNew_WiresSubsystems(t *testing.T) {
	sw, err := New(WithConfig(testConfig(t)), WithoutLedger())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer sw.Close()

	if sw.Catalog == nil || sw.Pricing == nil || sw.Client == nil || sw.Config == nil {
		t.Fatal("New left a subsystem nil")
	}
	if sw.Ledger != nil {
		t.Error("Ledger is set despite WithoutLedger")
	}
	if len(sw.Catalog.All()) == 0 {
		t.Error("catalog is empty, want the bundled providers")
	}
}

// TestSwitchboard_DefaultProviderRouting verifies an empty provider id
// routes to the configured default, with the key resolved from the
// configuration.
func TestSwitchboard_DefaultProviderRouting(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer configured-key" {
			t.Errorf("Authorization = %q, want the configured key", got)
		}
		fmt.Fprint(w, `{"id":"req-1","choices":[{"message":{"content":"routed"}}]}`)
	}))
	defer server.Close()

	cfg := testConfig(t)
	cfg.Providers = map[string]config.ProviderConfig{
		"unit-box": {APIKey: "configured-key"},
	}

	sw, err := New(WithConfig(cfg), WithoutLedger())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer sw.Close()

	if err := sw.Catalog.Add(catalog.ProviderDefinition{
		ID:           "unit-box",
		Name:         "Unit Box",
		BaseURL:      server.URL,
		ChatPath:     "/v1/chat/completions",
		Dialect:      catalog.DialectOpenAI,
		DefaultModel: "unit-1",
	}); err != nil {
		t.Fatalf("Add: %v", err)
	}

	response, err := sw.Complete(context.Background(), "", &chat.Request{
		Messages: []chat.Message{chat.User("hi")},
	})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if response.Text != "routed" {
		t.Errorf("Text = %q, want %q", response.Text, "routed")
	}
	if response.Provider != "unit-box" {
		t.Errorf("Provider = %q, want the default provider", response.Provider)
	}
}

// TestNewLogger verifies level parsing and the invalid-level error.
func TestNewLogger(t *testing.T) {
	logger, err := NewLogger("debug")
	if err != nil {
		t.Fatalf("NewLogger(debug): %v", err)
	}
	if logger == nil {
		t.Fatal("NewLogger returned nil logger")
	}

	if _, err := NewLogger("chatty"); err == nil {
		t.Error("NewLogger accepted an invalid level")
	} else if !strings.Contains(err.Error(), "invalid log level") {
		t.Errorf("error = %q, want the invalid-level message", err)
	}
}
