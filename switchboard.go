// Package switchboard talks to every major LLM provider through one client.
// Provider definitions live in a persistent catalog keyed by id; each
// definition names one of three wire dialects (OpenAI-compatible, Anthropic,
// Google) plus the quirks that vary between otherwise-compatible APIs, so
// adding a provider is data, not code. Responses are normalized, priced
// through a tiered pricing resolver, and optionally recorded to a local
// usage ledger.
//
// [New] wires the whole stack from configuration:
//
//	sw, err := switchboard.New()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer sw.Close()
//
//	response, err := sw.Complete(ctx, "anthropic", &chat.Request{
//	    Messages: []chat.Message{chat.User("hello")},
//	})
//
// Library users who want finer control can assemble the pieces themselves;
// see [client.New], [catalog.New], and [pricing.NewResolver].
package switchboard

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/leofalp/switchboard/core/chat"
	"github.com/leofalp/switchboard/core/client"
	"github.com/leofalp/switchboard/core/pricing"
	"github.com/leofalp/switchboard/internal/config"
	"github.com/leofalp/switchboard/internal/store"
	"github.com/leofalp/switchboard/internal/utils"
	"github.com/leofalp/switchboard/providers/catalog"
)

// Switchboard bundles the wired subsystems. The fields are exported so
// callers can reach past the convenience methods when they need the full
// client, catalog, or pricing API.
type Switchboard struct {
	Config  *config.Config
	Catalog *catalog.Catalog
	Pricing *pricing.Resolver
	Client  *client.Client
	Ledger  *store.Ledger
	Log     *zap.Logger
}

// Option configures New.
type Option func(*options)

type options struct {
	configFile string
	config     *config.Config
	logger     *zap.Logger
	noLedger   bool
}

// WithConfigFile loads configuration from an explicit path instead of the
// default search locations.
func WithConfigFile(path string) Option {
	return func(o *options) { o.configFile = path }
}

// WithConfig injects a pre-built configuration, skipping the load step.
func WithConfig(cfg *config.Config) Option {
	return func(o *options) { o.config = cfg }
}

// WithLogger replaces the logger built from the configured log level.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithoutLedger disables usage recording entirely; no database is opened.
func WithoutLedger() Option {
	return func(o *options) { o.noLedger = true }
}

// New wires configuration, storage, catalog, pricing, and the chat client
// into one value. Every subsystem shares the data directory and the
// rate-limited HTTP transport; the request timeout is enforced through a
// timeout middleware rather than the transport, so streaming responses are
// not cut off at the connection level.
func New(opts ...Option) (*Switchboard, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	cfg := o.config
	if cfg == nil {
		loaded, err := config.Load(o.configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	logger := o.logger
	if logger == nil {
		built, err := NewLogger(cfg.LogLevel)
		if err != nil {
			return nil, err
		}
		logger = built
	}

	fileStore, err := store.NewFileStore(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("opening data dir: %w", err)
	}

	var ledger *store.Ledger
	if !o.noLedger {
		ledger, err = store.OpenLedger(cfg.DataDir)
		if err != nil {
			return nil, fmt.Errorf("opening usage ledger: %w", err)
		}
	}

	cat := catalog.New(fileStore, logger)
	httpClient := utils.NewRateLimitedClient(cfg.RequestsPerSecond, int(cfg.RequestsPerSecond), 0)
	resolver := pricing.NewResolver(fileStore, httpClient, logger)

	clientOptions := []client.Option{
		client.WithHTTPClient(httpClient),
		client.WithLogger(logger),
		client.WithAPIKeys(cfg.APIKeyFor),
		client.WithMiddleware(
			client.NewLoggingMiddleware(logger),
			client.NewTimeoutMiddleware(cfg.RequestTimeout()),
		),
	}
	if ledger != nil {
		clientOptions = append(clientOptions, client.WithLedger(ledger))
	}

	chatClient, err := client.New(cat, resolver, clientOptions...)
	if err != nil {
		return nil, err
	}

	return &Switchboard{
		Config:  cfg,
		Catalog: cat,
		Pricing: resolver,
		Client:  chatClient,
		Ledger:  ledger,
		Log:     logger,
	}, nil
}

// Complete sends one chat exchange. An empty providerID routes to the
// configured default provider.
func (s *Switchboard) Complete(ctx context.Context, providerID string, request *chat.Request) (*chat.Response, error) {
	return s.Client.Complete(ctx, s.providerOrDefault(providerID), request)
}

// Stream sends one streaming chat exchange. An empty providerID routes to
// the configured default provider.
func (s *Switchboard) Stream(ctx context.Context, providerID string, request *chat.Request) (*chat.Stream, error) {
	return s.Client.Stream(ctx, s.providerOrDefault(providerID), request)
}

// Close releases held resources. Safe to call on a partially used value.
func (s *Switchboard) Close() error {
	if s.Ledger != nil {
		return s.Ledger.Close()
	}
	return nil
}

func (s *Switchboard) providerOrDefault(providerID string) string {
	if providerID != "" {
		return providerID
	}
	return s.Config.DefaultProvider
}

// NewLogger builds the standard stderr JSON logger at the given level.
func NewLogger(level string) (*zap.Logger, error) {
	parsed, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(parsed)
	cfg.OutputPaths = []string{"stderr"}
	return cfg.Build()
}
