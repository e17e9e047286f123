// Package client orchestrates chat exchanges across the provider catalog:
// one [Client] serves every definition, routing each call through the right
// dialect and credentials.
//
// Every exchange passes through a middleware chain ([MiddlewareConfig]); the
// retry coordinator is always its innermost layer, so the non-streaming path
// settles into error responses rather than raising transport failures.
// Streaming bypasses retry and reports failures through the stream iterator
// instead.
//
// The primary entry points are [New], [Client.Complete], [Client.Stream],
// [CompleteJSON], [Client.FanOut], [Client.Models], and
// [Client.EstimateCost].
package client
