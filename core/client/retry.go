package client

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/leofalp/switchboard/core/chat"
)

const defaultRetryDelay = 500 * time.Millisecond

// retryMiddleware is the coordinator New installs as the innermost chain
// layer. A failed exchange (transport error or error response) is retried
// exactly once after a short pause; a transport failure on the second
// attempt is converted into a synthetic error response so the non-streaming
// path never raises a Go error for anything that happened on the wire.
// Streaming bypasses it entirely.
func (c *Client) retryMiddleware() MiddlewareConfig {
	return MiddlewareConfig{
		Send: func(next SendFunc) SendFunc {
			return func(ctx context.Context, call *Call) (*chat.Response, error) {
				response, err := next(ctx, call)
				if err == nil && response.OK() {
					return response, nil
				}

				c.log.Warn("chat call failed, retrying once",
					zap.String("provider", call.Def.ID),
					zap.String("model", call.Built.Model),
					zap.Error(err))

				select {
				case <-ctx.Done():
					if err != nil {
						return chat.NewErrorResponse(call.Def.ID, call.Built.Model, "network error after retry: "+err.Error()), nil
					}
					return response, nil
				case <-time.After(c.retryDelay):
				}

				retried, err := next(ctx, call)
				if err != nil {
					return chat.NewErrorResponse(call.Def.ID, call.Built.Model, "network error after retry: "+err.Error()), nil
				}
				return retried, nil
			}
		},
	}
}
