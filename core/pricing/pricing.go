package pricing

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/leofalp/switchboard/core/chat"
	"github.com/leofalp/switchboard/core/cost"
	"github.com/leofalp/switchboard/internal/store"
	"github.com/leofalp/switchboard/providers/catalog"
)

// Source identifies the pricing tier that produced a figure.
type Source string

const (
	SourceAPI        Source = "API"
	SourceOverride   Source = "OVERRIDE"
	SourceOpenRouter Source = "OPENROUTER"
	SourceLiteLLM    Source = "LITELLM"
	SourceFallback   Source = "FALLBACK"
	SourceDefault    Source = "DEFAULT"
)

// defaultPricing is the floor of the tier walk: applied when no table knows
// the model, so resolution never fails.
var defaultPricing = cost.ModelCost{InputPerMillion: 2.50, OutputPerMillion: 5.00}

// storeKey is the blob-store key holding overrides and the OpenRouter table.
const storeKey = "pricing"

// ModelPricing is a resolved price for one model, tagged with the tier it
// came from.
type ModelPricing struct {
	Model string `json:"model"`
	cost.ModelCost
	Source Source `json:"source"`
}

// tables is the immutable snapshot reads go against. Mutations build a new
// value and republish.
type tables struct {
	overrides         map[string]cost.ModelCost
	openRouter        map[string]openRouterRow
	openRouterFetched time.Time
	liteLLM           map[string]cost.ModelCost
}

// persistedState is the blob-store representation of the mutable tables.
type persistedState struct {
	Overrides         map[string]cost.ModelCost `json:"overrides,omitempty"`
	OpenRouter        map[string]openRouterRow  `json:"openrouter,omitempty"`
	OpenRouterFetched time.Time                 `json:"openrouter_fetched,omitempty"`
}

// Resolver answers cost questions for (provider, model) pairs. State loads
// lazily on first use; a single lock serializes mutations while reads stay
// lock-free against the last published snapshot.
type Resolver struct {
	store  store.Store
	client *http.Client
	log    *zap.Logger
	now    func() time.Time

	// openRouterURL is overridable in tests.
	openRouterURL string

	loadOnce sync.Once
	mu       sync.Mutex
	tables   atomic.Pointer[tables]
}

// NewResolver returns a Resolver persisting through s. httpClient is used
// for OpenRouter refreshes and may be nil; logger may be nil.
func NewResolver(s store.Store, httpClient *http.Client, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{
		store:         s,
		client:        httpClient,
		log:           logger,
		now:           time.Now,
		openRouterURL: openRouterModelsURL,
	}
}

// ensure loads persisted state exactly once. Failures degrade to empty
// tables; pricing must keep answering.
func (r *Resolver) ensure() {
	r.loadOnce.Do(func() {
		t := &tables{
			overrides: map[string]cost.ModelCost{},
			liteLLM:   loadLiteLLM(),
		}

		blob, err := r.store.Get(storeKey)
		if err != nil {
			r.log.Warn("reading persisted pricing failed, starting empty", zap.Error(err))
			r.tables.Store(t)
			return
		}
		if blob != nil {
			var state persistedState
			if err := json.Unmarshal(blob, &state); err != nil {
				r.log.Warn("persisted pricing unparseable, starting empty", zap.Error(err))
			} else {
				if state.Overrides != nil {
					t.overrides = state.Overrides
				}
				t.openRouter = state.OpenRouter
				t.openRouterFetched = state.OpenRouterFetched
			}
		}
		r.tables.Store(t)
	})
}

func (r *Resolver) snapshot() *tables {
	r.ensure()
	return r.tables.Load()
}

// Resolve walks OVERRIDE -> OPENROUTER -> LITELLM -> FALLBACK -> DEFAULT and
// returns the first hit. It never fails: an unknown model prices at the
// DEFAULT floor. The API tier sits above these and is consulted separately
// via ResolveCost since it needs the response payload.
func (r *Resolver) Resolve(def catalog.ProviderDefinition, model string) ModelPricing {
	t := r.snapshot()

	if mc, ok := t.overrides[overrideKey(def.ID, model)]; ok {
		return ModelPricing{Model: model, ModelCost: mc, Source: SourceOverride}
	}
	if row, ok := lookupOpenRouter(t.openRouter, def.PricingPrefix(), model); ok {
		return ModelPricing{Model: model, ModelCost: row.Cost, Source: SourceOpenRouter}
	}
	if mc, ok := lookupLiteLLM(t.liteLLM, def.PricingPrefix(), model); ok {
		return ModelPricing{Model: model, ModelCost: mc, Source: SourceLiteLLM}
	}
	if mc, ok := lookupFallback(model); ok {
		return ModelPricing{Model: model, ModelCost: mc, Source: SourceFallback}
	}
	return ModelPricing{Model: model, ModelCost: defaultPricing, Source: SourceDefault}
}

// APIReportedCost extracts a cost figure embedded in the provider's usage
// payload. Returns nil unless the definition trusts API cost and the payload
// carries one of the known encodings: a plain USD number, a {"total_cost":n}
// object, or integer ticks divided by the definition's divisor.
func (r *Resolver) APIReportedCost(def catalog.ProviderDefinition, rawUsage json.RawMessage) *float64 {
	if !def.TrustAPICost || len(rawUsage) == 0 {
		return nil
	}

	var envelope struct {
		Cost json.RawMessage `json:"cost"`
	}
	if err := json.Unmarshal(rawUsage, &envelope); err != nil || len(envelope.Cost) == 0 {
		return nil
	}

	// Object form first: a number fails to unmarshal into the struct.
	var object struct {
		TotalCost *float64 `json:"total_cost"`
	}
	if err := json.Unmarshal(envelope.Cost, &object); err == nil && object.TotalCost != nil {
		return object.TotalCost
	}

	var number float64
	if err := json.Unmarshal(envelope.Cost, &number); err != nil {
		return nil
	}
	if def.CostInTicks {
		number /= def.TicksDivisor()
	}
	return &number
}

// ResolveCost produces the final cost for one exchange: the trusted API
// figure when present, otherwise an estimate from token usage at the
// resolved rate. A nil usage with no API figure yields (nil, "").
func (r *Resolver) ResolveCost(def catalog.ProviderDefinition, model string, usage *chat.Usage, rawUsage json.RawMessage) (*float64, string) {
	if c := r.APIReportedCost(def, rawUsage); c != nil {
		return c, string(SourceAPI)
	}
	if usage == nil {
		return nil, ""
	}
	mp := r.Resolve(def, model)
	total := mp.Total(usage.InputTokens, usage.OutputTokens)
	return &total, string(mp.Source)
}

// SetOverride records a manual price for a (provider, model) pair and
// persists it.
func (r *Resolver) SetOverride(providerID, model string, mc cost.ModelCost) error {
	r.ensure()
	r.mu.Lock()
	defer r.mu.Unlock()

	next := r.tables.Load().clone()
	next.overrides[overrideKey(providerID, model)] = mc
	return r.persistAndPublish(next)
}

// RemoveOverride deletes a manual price. Removing an absent override is not
// an error.
func (r *Resolver) RemoveOverride(providerID, model string) error {
	r.ensure()
	r.mu.Lock()
	defer r.mu.Unlock()

	next := r.tables.Load().clone()
	delete(next.overrides, overrideKey(providerID, model))
	return r.persistAndPublish(next)
}

// Overrides returns the current manual prices keyed by "provider/model",
// sorted for stable display.
func (r *Resolver) Overrides() []ModelPricing {
	t := r.snapshot()
	keys := make([]string, 0, len(t.overrides))
	for key := range t.overrides {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	out := make([]ModelPricing, 0, len(keys))
	for _, key := range keys {
		out = append(out, ModelPricing{Model: key, ModelCost: t.overrides[key], Source: SourceOverride})
	}
	return out
}

// persistAndPublish writes mutable state to the store and, only on success,
// publishes the new snapshot. Callers hold r.mu.
func (r *Resolver) persistAndPublish(next *tables) error {
	state := persistedState{
		Overrides:         next.overrides,
		OpenRouter:        next.openRouter,
		OpenRouterFetched: next.openRouterFetched,
	}
	blob, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling pricing state: %w", err)
	}
	if err := r.store.Put(storeKey, blob); err != nil {
		return fmt.Errorf("persisting pricing state: %w", err)
	}
	r.tables.Store(next)
	return nil
}

func (t *tables) clone() *tables {
	next := &tables{
		overrides:         make(map[string]cost.ModelCost, len(t.overrides)),
		openRouter:        t.openRouter,
		openRouterFetched: t.openRouterFetched,
		liteLLM:           t.liteLLM,
	}
	for key, mc := range t.overrides {
		next.overrides[key] = mc
	}
	return next
}

func overrideKey(providerID, model string) string {
	return providerID + "/" + model
}

// normalizeModel strips any vendor prefix and lowercases, so fallback keys
// match path-style ids like "meta-llama/Llama-3.3-70B-Instruct".
func normalizeModel(model string) string {
	if i := strings.LastIndex(model, "/"); i >= 0 {
		model = model[i+1:]
	}
	return strings.ToLower(model)
}
