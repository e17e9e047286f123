package client

import (
	"context"
	"sync"

	"github.com/leofalp/switchboard/core/chat"
)

// FanOut sends the same request to several providers concurrently and
// returns one response per provider, index-aligned with providerIDs. Nothing
// here raises: pre-flight failures (unknown provider, missing key) are
// folded into error responses so a partial outage still yields a full
// result set.
func (c *Client) FanOut(ctx context.Context, providerIDs []string, request *chat.Request) []*chat.Response {
	results := make([]*chat.Response, len(providerIDs))

	var wg sync.WaitGroup
	for i, providerID := range providerIDs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			response, err := c.Complete(ctx, providerID, request)
			if err != nil {
				response = chat.NewErrorResponse(providerID, request.Model, err.Error())
			}
			results[i] = response
		}()
	}
	wg.Wait()

	return results
}
