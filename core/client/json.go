package client

import (
	"context"
	"fmt"

	"github.com/leofalp/switchboard/core/chat"
	"github.com/leofalp/switchboard/core/parse"
)

// CompleteJSON performs an exchange and parses the completion into T,
// forcing JSON mode on the request. The raw response is returned alongside
// the parsed value whenever an exchange happened, so callers keep access to
// usage, cost, and the unparsed text even when parsing fails.
func CompleteJSON[T any](ctx context.Context, c *Client, providerID string, request *chat.Request) (T, *chat.Response, error) {
	var zero T

	jsonRequest := *request
	jsonRequest.JSONMode = true

	response, err := c.Complete(ctx, providerID, &jsonRequest)
	if err != nil {
		return zero, nil, err
	}
	if !response.OK() {
		return zero, response, fmt.Errorf("provider error: %s", response.ErrorMessage)
	}

	value, err := parse.StringAs[T](response.Text)
	if err != nil {
		return zero, response, fmt.Errorf("parsing structured response: %w", err)
	}
	return value, response, nil
}
