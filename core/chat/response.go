package chat

import (
	"encoding/json"
	"time"
)

// Usage is the token accounting for one exchange. Fields the provider did
// not report are zero; a missing usage block entirely is a nil *Usage on the
// response.
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

// SearchResult is one web source returned alongside a search-enabled
// completion.
type SearchResult struct {
	Title string `json:"title,omitempty"`
	URL   string `json:"url"`
}

// Response is the normalized result of one chat exchange. Exactly one of
// Text and ErrorMessage describes the outcome: a response never carries
// both a successful completion and an error.
type Response struct {
	// Provider is the id of the provider definition that served the call.
	Provider string `json:"provider"`
	// Model is the model id the request was sent to.
	Model string `json:"model"`
	// RequestID identifies the exchange for logging and the usage ledger.
	RequestID string `json:"request_id,omitempty"`

	Text         string `json:"text,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`

	// Usage is nil when the provider reported no token counts.
	Usage *Usage `json:"usage,omitempty"`

	// Cost is the resolved cost in USD, nil when unknowable (no usage and
	// no trusted provider-reported figure). CostSource names the pricing
	// tier that produced it.
	Cost       *float64 `json:"cost,omitempty"`
	CostSource string   `json:"cost_source,omitempty"`

	Citations        []string       `json:"citations,omitempty"`
	SearchResults    []SearchResult `json:"search_results,omitempty"`
	RelatedQuestions []string       `json:"related_questions,omitempty"`

	// RawUsage preserves the provider's usage payload for diagnostics.
	RawUsage json.RawMessage `json:"raw_usage,omitempty"`
	// HTTPStatus is the status code of the upstream exchange, zero when the
	// request never reached the provider.
	HTTPStatus int `json:"http_status,omitempty"`

	Duration time.Duration `json:"duration,omitempty"`
}

// OK reports whether the exchange produced a normal completion.
func (r *Response) OK() bool {
	return r.ErrorMessage == ""
}

// NewTextResponse returns a successful response carrying extracted text.
func NewTextResponse(provider, model, text string) *Response {
	return &Response{Provider: provider, Model: model, Text: text}
}

// NewErrorResponse returns a failed response carrying an error message and
// no text.
func NewErrorResponse(provider, model, message string) *Response {
	return &Response{Provider: provider, Model: model, ErrorMessage: message}
}
