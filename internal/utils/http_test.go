package utils

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// ---- DoPostRaw tests --------------------------------------------------------

// TestDoPostRaw_Success verifies that a 200 response returns the status code
// and raw body without error.
func TestDoPostRaw_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, `{"value":42}`)
	}))
	defer server.Close()

	status, body, err := DoPostRaw(context.Background(), server.Client(), server.URL, []byte(`{}`))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if status != http.StatusOK {
		t.Errorf("expected status 200, got %d", status)
	}
	if string(body) != `{"value":42}` {
		t.Errorf("unexpected body: %s", body)
	}
}

// TestDoPostRaw_Non2xxIsNotAnError verifies that non-2xx statuses are
// returned to the caller with the body intact rather than as an error, since
// provider error payloads must survive for normalization.
func TestDoPostRaw_Non2xxIsNotAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, `{"error":{"message":"slow down"}}`)
	}))
	defer server.Close()

	status, body, err := DoPostRaw(context.Background(), server.Client(), server.URL, []byte(`{}`))
	if err != nil {
		t.Fatalf("expected no transport error, got %v", err)
	}
	if status != http.StatusTooManyRequests {
		t.Errorf("expected status 429, got %d", status)
	}
	if !strings.Contains(string(body), "slow down") {
		t.Errorf("expected error payload in body, got: %s", body)
	}
}

// TestDoPostRaw_CustomHeaders verifies that headers passed via HeaderOption
// are sent on the outgoing request and can override defaults.
func TestDoPostRaw_CustomHeaders(t *testing.T) {
	var capturedAPIKey, capturedContentType string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedAPIKey = r.Header.Get("x-api-key")
		capturedContentType = r.Header.Get("Content-Type")
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, `{}`)
	}))
	defer server.Close()

	_, _, err := DoPostRaw(
		context.Background(),
		server.Client(),
		server.URL,
		[]byte(`{}`),
		HeaderOption{Key: "x-api-key", Value: "secret"},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if capturedAPIKey != "secret" {
		t.Errorf("expected x-api-key %q, got %q", "secret", capturedAPIKey)
	}
	if capturedContentType != "application/json" {
		t.Errorf("expected Content-Type application/json, got %q", capturedContentType)
	}
}

// TestDoPostRaw_RequestCreateError verifies that an invalid URL causes
// http.NewRequestWithContext to fail and the error is propagated.
func TestDoPostRaw_RequestCreateError(t *testing.T) {
	// A URL with a leading space triggers a parse error in net/http.
	_, _, err := DoPostRaw(context.Background(), nil, " bad url", nil)
	if err == nil {
		t.Fatal("expected request creation error, got nil")
	}
}

// ---- DoGetJSON tests --------------------------------------------------------

// TestDoGetJSON_Success verifies that a 200 response with valid JSON is
// unmarshaled into the output struct.
func TestDoGetJSON_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, `{"value":42}`)
	}))
	defer server.Close()

	type response struct {
		Value int `json:"value"`
	}

	result, err := DoGetJSON[response](context.Background(), server.Client(), server.URL)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result == nil {
		t.Fatal("expected non-nil result, got nil")
	}
	if result.Value != 42 {
		t.Errorf("expected Value=42, got %d", result.Value)
	}
}

// TestDoGetJSON_Non2xxStatus verifies that a non-2xx status returns an
// HTTPStatusError carrying both the code and the body.
func TestDoGetJSON_Non2xxStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, "bad request")
	}))
	defer server.Close()

	type response struct {
		Value int `json:"value"`
	}

	_, err := DoGetJSON[response](context.Background(), server.Client(), server.URL)
	if err == nil {
		t.Fatal("expected error for 400 response, got nil")
	}

	var statusErr *HTTPStatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected *HTTPStatusError, got %T: %v", err, err)
	}
	if statusErr.StatusCode != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", statusErr.StatusCode)
	}
	if !strings.Contains(string(statusErr.Body), "bad request") {
		t.Errorf("expected body to contain server message, got: %s", statusErr.Body)
	}
}

// TestDoGetJSON_UnmarshalError verifies that a 200 response with a body that
// cannot be unmarshaled into the output struct returns an error mentioning
// "unmarshal".
func TestDoGetJSON_UnmarshalError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, `"not json"`)
	}))
	defer server.Close()

	type response struct {
		Value int `json:"value"`
	}

	_, err := DoGetJSON[response](context.Background(), server.Client(), server.URL)
	if err == nil {
		t.Fatal("expected unmarshal error, got nil")
	}
	if !strings.Contains(strings.ToLower(err.Error()), "unmarshal") {
		t.Errorf("expected error to contain 'unmarshal', got: %v", err)
	}
}

// TestDoGetJSON_NilClient_UsesDefault verifies that a nil HTTP client falls
// back to http.DefaultClient.
func TestDoGetJSON_NilClient_UsesDefault(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, `{"received":true}`)
	}))
	defer server.Close()

	type response struct {
		Received bool `json:"received"`
	}

	result, err := DoGetJSON[response](context.Background(), nil, server.URL)
	if err != nil {
		t.Fatalf("expected no error with nil client, got %v", err)
	}
	if result == nil || !result.Received {
		t.Error("expected Received=true")
	}
}

// ---- CloseWithLog tests -----------------------------------------------------

// errCloser is a mock io.Closer that always returns the configured error.
type errCloser struct {
	closeErr error
}

func (ec *errCloser) Close() error {
	return ec.closeErr
}

// TestCloseWithLog_ErrorPath verifies that CloseWithLog does not panic when
// the underlying closer returns an error. The error is only logged.
func TestCloseWithLog_ErrorPath(t *testing.T) {
	closer := &errCloser{closeErr: errors.New("close error")}
	CloseWithLog(closer)
}
