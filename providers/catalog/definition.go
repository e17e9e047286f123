package catalog

import (
	"strings"
)

// Dialect identifies which of the three wire protocols a provider speaks.
type Dialect string

const (
	// DialectOpenAI covers every OpenAI-compatible chat completions API,
	// including the alternate "responses" endpoint newer OpenAI models use.
	DialectOpenAI Dialect = "OPENAI_COMPATIBLE"
	// DialectAnthropic is the Anthropic Messages API.
	DialectAnthropic Dialect = "ANTHROPIC"
	// DialectGoogle is the Google generateContent API.
	DialectGoogle Dialect = "GOOGLE"
)

// Model list shapes. Most OpenAI-compatible providers wrap the list in an
// object ({"data":[...]}); a few return a bare JSON array.
const (
	ModelListObject = "object"
	ModelListArray  = "array"
)

// defaultTicksDivisor converts integer cost ticks to USD when a definition
// does not override the divisor.
const defaultTicksDivisor = 1_000_000.0

// ProviderDefinition declares everything needed to talk to one provider:
// endpoint layout, wire dialect, and the behavioral quirks that vary across
// otherwise-compatible APIs. Definitions are plain values; identity is the
// ID alone, so two definitions with the same ID describe the same provider
// regardless of their other fields.
type ProviderDefinition struct {
	ID      string `json:"id" yaml:"id" validate:"required"`
	Name    string `json:"name" yaml:"name" validate:"required"`
	BaseURL string `json:"base_url" yaml:"base_url" validate:"required,url"`

	// ChatPath is the chat endpoint relative to BaseURL. A {model}
	// placeholder is interpolated for path-addressed APIs such as Google's.
	ChatPath string `json:"chat_path" yaml:"chat_path" validate:"required"`

	// ModelsPath is the model-listing endpoint relative to BaseURL, empty
	// when the provider has none (see Models for a hardcoded list instead).
	ModelsPath string `json:"models_path,omitempty" yaml:"models_path,omitempty"`

	Dialect Dialect `json:"dialect" yaml:"dialect" validate:"required,oneof=OPENAI_COMPATIBLE ANTHROPIC GOOGLE"`

	// DefaultModel is used when a request does not name a model.
	DefaultModel string `json:"default_model,omitempty" yaml:"default_model,omitempty"`

	// NoAuth marks keyless providers (local runtimes like ollama); no
	// credential is attached and a missing API key is not an error.
	NoAuth bool `json:"no_auth,omitempty" yaml:"no_auth,omitempty"`

	// SeedField renames the sampling-seed body field for providers that
	// diverge from the common "seed" (Mistral uses "random_seed").
	SeedField string `json:"seed_field,omitempty" yaml:"seed_field,omitempty"`

	// SupportsCitations enables the citation request flag and response
	// extraction for this provider.
	SupportsCitations bool `json:"supports_citations,omitempty" yaml:"supports_citations,omitempty"`

	// SupportsSearchRecency enables the search-recency window parameter.
	SupportsSearchRecency bool `json:"supports_search_recency,omitempty" yaml:"supports_search_recency,omitempty"`

	// CostInTicks marks providers whose usage payload reports cost as an
	// integer number of ticks instead of USD; CostTicksDivisor (default
	// one million) converts ticks to dollars.
	CostInTicks      bool    `json:"cost_in_ticks,omitempty" yaml:"cost_in_ticks,omitempty"`
	CostTicksDivisor float64 `json:"cost_ticks_divisor,omitempty" yaml:"cost_ticks_divisor,omitempty"`

	// ModelListShape selects how the models endpoint wraps its list:
	// "object" ({"data":[...]}) or "array" (bare list). Empty means object.
	ModelListShape string `json:"model_list_shape,omitempty" yaml:"model_list_shape,omitempty" validate:"omitempty,oneof=object array"`

	// ModelFilter is a regular expression; when set, listed model ids not
	// matching it are dropped.
	ModelFilter string `json:"model_filter,omitempty" yaml:"model_filter,omitempty"`

	// Models is a hardcoded model list for providers without a listing
	// endpoint.
	Models []string `json:"models,omitempty" yaml:"models,omitempty"`

	// OpenRouterName is the vendor prefix OpenRouter files this provider's
	// models under when it differs from ID ("mistral" -> "mistralai").
	OpenRouterName string `json:"openrouter_name,omitempty" yaml:"openrouter_name,omitempty"`

	// TrustAPICost gates the highest pricing tier: only when set is a
	// cost figure embedded in the provider's usage payload believed.
	TrustAPICost bool `json:"trust_api_cost,omitempty" yaml:"trust_api_cost,omitempty"`

	// ResponsesPrefix and ResponsesPath route models whose id starts with
	// the prefix to the alternate "responses" endpoint and wire shape.
	ResponsesPrefix string `json:"responses_prefix,omitempty" yaml:"responses_prefix,omitempty"`
	ResponsesPath   string `json:"responses_path,omitempty" yaml:"responses_path,omitempty"`
}

// ModelOrDefault returns requested when non-empty, the definition's default
// model otherwise.
func (d ProviderDefinition) ModelOrDefault(requested string) string {
	if requested != "" {
		return requested
	}
	return d.DefaultModel
}

// UsesResponsesAPI reports whether model is served by the alternate
// "responses" endpoint.
func (d ProviderDefinition) UsesResponsesAPI(model string) bool {
	return d.ResponsesPrefix != "" && d.ResponsesPath != "" && strings.HasPrefix(model, d.ResponsesPrefix)
}

// Endpoint joins BaseURL with a relative path, interpolating the {model}
// placeholder.
func (d ProviderDefinition) Endpoint(path, model string) string {
	path = strings.ReplaceAll(path, "{model}", model)
	return strings.TrimRight(d.BaseURL, "/") + path
}

// ChatEndpoint returns the absolute chat URL for model.
func (d ProviderDefinition) ChatEndpoint(model string) string {
	if d.UsesResponsesAPI(model) {
		return d.Endpoint(d.ResponsesPath, model)
	}
	return d.Endpoint(d.ChatPath, model)
}

// TicksDivisor returns the divisor converting cost ticks to USD.
func (d ProviderDefinition) TicksDivisor() float64 {
	if d.CostTicksDivisor > 0 {
		return d.CostTicksDivisor
	}
	return defaultTicksDivisor
}

// PricingPrefix returns the vendor prefix used for `<prefix>/<model>`
// lookups in cross-provider pricing tables.
func (d ProviderDefinition) PricingPrefix() string {
	if d.OpenRouterName != "" {
		return d.OpenRouterName
	}
	return d.ID
}
