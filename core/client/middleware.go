package client

import (
	"context"

	"github.com/leofalp/switchboard/core/chat"
	"github.com/leofalp/switchboard/core/dialect"
	"github.com/leofalp/switchboard/providers/catalog"
)

// Call carries one outbound exchange through the middleware chain: the
// provider definition that will serve it, the logical request, and the
// wire-ready form the dialect builder produced. ID is a locally generated
// request id, used on the response when the provider does not return one.
type Call struct {
	ID      string
	Def     catalog.ProviderDefinition
	Request *chat.Request
	Built   dialect.BuiltRequest
}

// SendFunc performs one complete (non-streaming) exchange. It is the base
// unit threaded through the send middleware chain.
type SendFunc func(ctx context.Context, call *Call) (*chat.Response, error)

// StreamFunc opens one streaming exchange and returns its fragment stream.
// It is the base unit threaded through the stream middleware chain.
type StreamFunc func(ctx context.Context, call *Call) (*chat.Stream, error)

// Middleware wraps a SendFunc. Each middleware receives the next SendFunc in
// the chain and returns a new one around it; middlewares apply
// outermost-first, so the first entry passed to [WithMiddleware] runs first
// on the way in and last on the way out.
type Middleware func(next SendFunc) SendFunc

// StreamMiddleware is the streaming counterpart of Middleware. It may wrap
// the returned stream to observe fragments or manage resources tied to the
// stream's lifetime.
type StreamMiddleware func(next StreamFunc) StreamFunc

// MiddlewareConfig pairs a send middleware with its optional streaming
// counterpart. Send is required. A nil Stream means streaming calls bypass
// this entry entirely; the retry coordinator uses exactly that, since a
// partially consumed stream cannot be transparently replayed.
type MiddlewareConfig struct {
	Send   Middleware
	Stream StreamMiddleware
}

// buildSendChain wraps base with the middlewares in reverse order, so the
// first entry becomes the outermost wrapper.
func buildSendChain(base SendFunc, middlewares []MiddlewareConfig) SendFunc {
	chain := base
	for i := len(middlewares) - 1; i >= 0; i-- {
		chain = middlewares[i].Send(chain)
	}
	return chain
}

// buildStreamChain is buildSendChain for the stream side; entries with a nil
// Stream are skipped.
func buildStreamChain(base StreamFunc, middlewares []MiddlewareConfig) StreamFunc {
	chain := base
	for i := len(middlewares) - 1; i >= 0; i-- {
		if middlewares[i].Stream != nil {
			chain = middlewares[i].Stream(chain)
		}
	}
	return chain
}
