package utils

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
)

// DoPostStream performs an HTTP POST with a pre-marshaled JSON body and
// returns the response with its body left open for SSE reading. The caller
// owns the body and must close it when done.
//
// On non-2xx statuses the body is read (capped), closed, and returned inside
// an [*HTTPStatusError] so callers can surface the provider's error payload.
func DoPostStream(ctx context.Context, client *http.Client, url string, body []byte, headers ...HeaderOption) (*http.Response, error) {
	httpClient := client
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")
	for _, header := range headers {
		req.Header.Set(header.Key, header.Value)
	}

	response, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error sending stream request: %w", err)
	}

	// Non-2xx: drain (capped) and close before returning, the stream never starts.
	if response.StatusCode < 200 || response.StatusCode >= 300 {
		defer CloseWithLog(response.Body)
		errorBody, readErr := io.ReadAll(io.LimitReader(response.Body, maxResponseBodySize))
		if readErr != nil {
			return nil, fmt.Errorf("non-2xx status %d (failed to read body: %v)", response.StatusCode, readErr)
		}
		return nil, &HTTPStatusError{StatusCode: response.StatusCode, Body: errorBody}
	}

	return response, nil
}
