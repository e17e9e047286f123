package utils

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"
)

// maxResponseBodySize is the maximum response body size (10 MB). Enforced via
// io.LimitReader to prevent unbounded memory allocation from rogue responses.
const maxResponseBodySize int64 = 10 * 1024 * 1024

// HeaderOption is a single HTTP header to set on an outgoing request.
// Options are applied after the defaults, so they can override Content-Type
// or carry provider-specific authentication such as x-api-key.
type HeaderOption struct {
	Key   string
	Value string
}

// CloseWithLog closes c and logs a warning when the close fails. Intended for
// defer statements where the close error has nowhere to go.
func CloseWithLog(c io.Closer) {
	if err := c.Close(); err != nil {
		zap.L().Warn("failed to close response body", zap.Error(err))
	}
}

// HTTPStatusError reports a non-2xx HTTP response together with the capped
// response body, which typically carries the provider's error payload.
type HTTPStatusError struct {
	StatusCode int
	Body       []byte
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("non-2xx status %d: %s", e.StatusCode, TruncateString(string(e.Body), DefaultMaxStringLength))
}

// DoPostRaw performs an HTTP POST with a pre-marshaled JSON body and returns
// the response status code and raw body bytes. Unlike [DoGetJSON] it does not
// treat non-2xx statuses as errors: callers that normalize provider error
// payloads need the status and body regardless of outcome. The returned error
// is non-nil only for transport-level failures (request construction,
// connection, body read).
func DoPostRaw(ctx context.Context, client *http.Client, url string, body []byte, headers ...HeaderOption) (int, []byte, error) {
	httpClient := client
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return 0, nil, fmt.Errorf("error creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	for _, header := range headers {
		req.Header.Set(header.Key, header.Value)
	}

	response, err := httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("error sending request: %w", err)
	}
	defer CloseWithLog(response.Body)

	respBody, err := io.ReadAll(io.LimitReader(response.Body, maxResponseBodySize))
	if err != nil {
		return response.StatusCode, nil, fmt.Errorf("error reading response body: %w", err)
	}

	return response.StatusCode, respBody, nil
}

// DoGetJSON performs an HTTP GET and unmarshals a 2xx JSON response into
// OutputStruct. Non-2xx statuses return an [*HTTPStatusError] carrying the
// capped body so callers can inspect the provider's error payload.
func DoGetJSON[OutputStruct any](ctx context.Context, client *http.Client, url string, headers ...HeaderOption) (*OutputStruct, error) {
	httpClient := client
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	for _, header := range headers {
		req.Header.Set(header.Key, header.Value)
	}

	response, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error sending request: %w", err)
	}
	defer CloseWithLog(response.Body)

	body, err := io.ReadAll(io.LimitReader(response.Body, maxResponseBodySize))
	if err != nil {
		return nil, fmt.Errorf("error reading response body: %w", err)
	}

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return nil, &HTTPStatusError{StatusCode: response.StatusCode, Body: body}
	}

	var output OutputStruct
	if err := json.Unmarshal(body, &output); err != nil {
		return nil, fmt.Errorf("error unmarshaling response: %w (body: %s)", err, TruncateString(string(body), DefaultMaxStringLength))
	}

	return &output, nil
}

// MarshalBody marshals a request body to JSON, wrapping failures with
// context. Split out so request builders can report marshal errors uniformly.
func MarshalBody(body any) ([]byte, error) {
	encoded, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("error marshaling body: %w", err)
	}
	return encoded, nil
}
