package utils

import (
	"fmt"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// rateLimitedTransport throttles outgoing requests through a token bucket
// before delegating to the base RoundTripper. Wait respects the request
// context, so cancellation interrupts a blocked send.
type rateLimitedTransport struct {
	base    http.RoundTripper
	limiter *rate.Limiter
}

func (t *rateLimitedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := t.limiter.Wait(req.Context()); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}
	return t.base.RoundTrip(req)
}

// NewRateLimitedClient returns an http.Client whose requests are throttled to
// rps requests per second with the given burst. A non-positive rps disables
// throttling. The timeout applies to the whole exchange including the body;
// pass zero for clients used with streaming responses, where the body
// outlives the request by design of the protocol.
func NewRateLimitedClient(rps float64, burst int, timeout time.Duration) *http.Client {
	client := &http.Client{Timeout: timeout}
	if rps > 0 {
		if burst < 1 {
			burst = 1
		}
		client.Transport = &rateLimitedTransport{
			base:    http.DefaultTransport,
			limiter: rate.NewLimiter(rate.Limit(rps), burst),
		}
	}
	return client
}
