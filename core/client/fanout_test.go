package client

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/leofalp/switchboard/core/chat"
)

// TestClient_FanOut verifies index alignment and error folding: every
// provider produces a response at its input position, even the ones that
// fail before reaching the wire.
func TestClient_FanOut(t *testing.T) {
	alpha := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, completionPayload("req-a", "from alpha", 1, 1))
	}))
	defer alpha.Close()
	beta := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, completionPayload("req-b", "from beta", 1, 1))
	}))
	defer beta.Close()

	cat := testCatalog(t, openAIDef("alpha", alpha.URL), openAIDef("beta", beta.URL))
	c := newTestClient(t, cat)

	request := &chat.Request{Messages: []chat.Message{chat.User("hi")}}
	results := c.FanOut(context.Background(), []string{"beta", "ghost", "alpha"}, request)

	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	if results[0].Text != "from beta" {
		t.Errorf("results[0].Text = %q, want %q", results[0].Text, "from beta")
	}
	if results[1].OK() {
		t.Error("results[1] is OK, want an error response for the unknown provider")
	}
	if results[1].Provider != "ghost" {
		t.Errorf("results[1].Provider = %q, want %q", results[1].Provider, "ghost")
	}
	if !strings.Contains(results[1].ErrorMessage, "not found") {
		t.Errorf("results[1].ErrorMessage = %q, want the not-found message", results[1].ErrorMessage)
	}
	if results[2].Text != "from alpha" {
		t.Errorf("results[2].Text = %q, want %q", results[2].Text, "from alpha")
	}
}

// TestClient_FanOut_AllConcurrent verifies the calls overlap rather than
// run serially: with every provider stalled until all of them are reached,
// serial dispatch would deadlock the barrier and fail the test by timeout.
func TestClient_FanOut_AllConcurrent(t *testing.T) {
	const n = 3
	barrier := make(chan struct{})
	arrivals := make(chan struct{}, n)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		arrivals <- struct{}{}
		<-barrier
		fmt.Fprint(w, completionPayload("req", "ok", 1, 1))
	}))
	defer server.Close()

	defs := []string{"p0", "p1", "p2"}
	cat := testCatalog(t,
		openAIDef("p0", server.URL), openAIDef("p1", server.URL), openAIDef("p2", server.URL))
	c := newTestClient(t, cat)

	go func() {
		for range n {
			<-arrivals
		}
		close(barrier)
	}()

	results := c.FanOut(context.Background(), defs, &chat.Request{
		Messages: []chat.Message{chat.User("hi")},
	})
	for i, response := range results {
		if !response.OK() {
			t.Errorf("results[%d] not OK: %s", i, response.ErrorMessage)
		}
	}
}
