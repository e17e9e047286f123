package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/leofalp/switchboard/core/chat"
	"github.com/leofalp/switchboard/core/dialect"
	"github.com/leofalp/switchboard/core/pricing"
	"github.com/leofalp/switchboard/internal/store"
	"github.com/leofalp/switchboard/internal/utils"
	"github.com/leofalp/switchboard/providers/catalog"
)

// ErrNoAPIKey is returned when a provider requires a key and the lookup
// produced none. Keyless providers (NoAuth definitions) never hit this.
var ErrNoAPIKey = errors.New("client: no API key configured")

// Client sends chat requests to any provider in the catalog. It is safe for
// concurrent use; all per-call state travels in the Call value.
type Client struct {
	catalog    *catalog.Catalog
	costs      *pricing.Resolver
	httpClient *http.Client
	log        *zap.Logger
	keys       func(providerID string) string
	ledger     *store.Ledger
	retryDelay time.Duration

	middlewares []MiddlewareConfig
	send        SendFunc
	stream      StreamFunc
}

// Option configures a Client at construction.
type Option func(*Client)

// WithHTTPClient replaces the transport. Pass a client without a Timeout
// when streaming: the response body outlives the request by design of SSE.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// WithLogger sets the logger used by the client and the stream decoder.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.log = logger
		}
	}
}

// WithAPIKeys replaces the credential lookup. The default reads the
// conventional <PROVIDER>_API_KEY environment variable, dashes mapped to
// underscores.
func WithAPIKeys(lookup func(providerID string) string) Option {
	return func(c *Client) {
		if lookup != nil {
			c.keys = lookup
		}
	}
}

// WithLedger records each call's token usage and cost to the given ledger.
func WithLedger(ledger *store.Ledger) Option {
	return func(c *Client) {
		c.ledger = ledger
	}
}

// WithMiddleware appends middleware entries, outermost first.
func WithMiddleware(middlewares ...MiddlewareConfig) Option {
	return func(c *Client) {
		c.middlewares = append(c.middlewares, middlewares...)
	}
}

// withRetryDelay shortens the retry pause in tests.
func withRetryDelay(delay time.Duration) Option {
	return func(c *Client) {
		c.retryDelay = delay
	}
}

// New wires a Client over a catalog and an optional pricing resolver (nil
// means responses carry no cost). The retry coordinator is always installed
// as the innermost chain layer, so the non-streaming path returns error
// responses rather than raising transport failures, whatever middlewares the
// caller adds outside it.
func New(cat *catalog.Catalog, costs *pricing.Resolver, options ...Option) (*Client, error) {
	if cat == nil {
		return nil, errors.New("client: catalog must not be nil")
	}

	c := &Client{
		catalog:    cat,
		costs:      costs,
		httpClient: http.DefaultClient,
		log:        zap.NewNop(),
		keys:       defaultKeys,
		retryDelay: defaultRetryDelay,
	}
	for _, option := range options {
		option(c)
	}

	for i, middleware := range c.middlewares {
		if middleware.Send == nil {
			return nil, fmt.Errorf("client: middleware %d has a nil Send", i)
		}
	}

	chain := append(append([]MiddlewareConfig{}, c.middlewares...), c.retryMiddleware())
	c.send = buildSendChain(c.baseSend, chain)
	c.stream = buildStreamChain(c.baseStream, chain)

	return c, nil
}

// Complete performs one chat exchange with the given provider. Failures to
// even attempt the call (unknown provider, missing key, unbuildable request)
// are Go errors; once the request is on the wire the outcome is always a
// response, with ErrorMessage set when the exchange failed.
func (c *Client) Complete(ctx context.Context, providerID string, request *chat.Request) (*chat.Response, error) {
	call, err := c.prepare(providerID, request, false)
	if err != nil {
		return nil, err
	}

	timer := utils.NewTimer()
	response, err := c.send(ctx, call)
	if err != nil {
		return nil, err
	}

	response.Duration = timer.Stop()
	if response.RequestID == "" {
		response.RequestID = call.ID
	}
	c.record(ctx, response)
	return response, nil
}

// Stream performs one streaming chat exchange. The returned stream must be
// consumed (or abandoned by breaking out of its loop) to release the
// connection. Streaming is never retried; failures to open the stream come
// back as Go errors and mid-stream failures arrive through the iterator.
func (c *Client) Stream(ctx context.Context, providerID string, request *chat.Request) (*chat.Stream, error) {
	call, err := c.prepare(providerID, request, true)
	if err != nil {
		return nil, err
	}
	return c.stream(ctx, call)
}

// prepare resolves the definition and credentials and builds the wire
// request. Everything here is pre-flight: failures are Go errors, not error
// responses.
func (c *Client) prepare(providerID string, request *chat.Request, stream bool) (*Call, error) {
	def, err := c.catalog.FindByID(providerID)
	if err != nil {
		return nil, err
	}

	apiKey := ""
	if !def.NoAuth {
		if apiKey = c.keys(def.ID); apiKey == "" {
			return nil, fmt.Errorf("%w for provider %q (set %s)", ErrNoAPIKey, def.ID, envKeyName(def.ID))
		}
	}

	built, err := dialect.BuildRequest(def, request, apiKey, stream)
	if err != nil {
		return nil, err
	}

	return &Call{ID: uuid.NewString(), Def: def, Request: request, Built: built}, nil
}

// baseSend is the innermost send: one HTTP POST, normalized. Non-2xx
// statuses become error responses inside ParseResponse; only transport
// failures surface as Go errors, for the retry coordinator to absorb.
func (c *Client) baseSend(ctx context.Context, call *Call) (*chat.Response, error) {
	status, body, err := utils.DoPostRaw(ctx, c.httpClient, call.Built.URL, call.Built.Body, call.Built.Headers...)
	if err != nil {
		return nil, err
	}

	var costs dialect.CostResolver
	if c.costs != nil {
		costs = c.costs
	}
	return dialect.ParseResponse(call.Def, call.Built.Model, status, body, costs), nil
}

// baseStream is the innermost stream: one HTTP POST with the body left open,
// decoded per the definition's dialect.
func (c *Client) baseStream(ctx context.Context, call *Call) (*chat.Stream, error) {
	response, err := utils.DoPostStream(ctx, c.httpClient, call.Built.URL, call.Built.Body, call.Built.Headers...)
	if err != nil {
		return nil, err
	}
	return dialect.DecodeStream(ctx, call.Def, call.Built.Model, response.Body, c.log), nil
}

// record adds the exchange to the usage ledger when one is configured.
// Recording failures are logged, never surfaced; accounting must not break
// completions.
func (c *Client) record(ctx context.Context, response *chat.Response) {
	if c.ledger == nil || response.Usage == nil {
		return
	}
	cost := 0.0
	if response.Cost != nil {
		cost = *response.Cost
	}
	err := c.ledger.Record(ctx, response.Provider, response.Model,
		int64(response.Usage.InputTokens), int64(response.Usage.OutputTokens), cost)
	if err != nil {
		c.log.Warn("recording usage failed", zap.Error(err))
	}
}

// envKeyName is the conventional environment variable holding a provider's
// API key ("z-ai" -> Z_AI_API_KEY).
func envKeyName(providerID string) string {
	return strings.ToUpper(strings.ReplaceAll(providerID, "-", "_")) + "_API_KEY"
}

func defaultKeys(providerID string) string {
	return os.Getenv(envKeyName(providerID))
}
