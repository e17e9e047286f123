package dialect

import (
	"encoding/json"
	"fmt"

	"github.com/leofalp/switchboard/core/chat"
	"github.com/leofalp/switchboard/internal/utils"
	"github.com/leofalp/switchboard/providers/catalog"
)

/*
	CHAT COMPLETIONS WIRE FORMAT
*/

// openAIRequest is the chat completions request body. Only the fields this
// library sets are declared; omitempty keeps provider defaults in force for
// everything unset.
type openAIRequest struct {
	Model            string          `json:"model"`
	Messages         []openAIMessage `json:"messages"`
	Temperature      *float64        `json:"temperature,omitempty"`
	TopP             *float64        `json:"top_p,omitempty"`
	TopK             *int            `json:"top_k,omitempty"`
	MaxTokens        *int            `json:"max_tokens,omitempty"`
	FrequencyPenalty *float64        `json:"frequency_penalty,omitempty"`
	PresencePenalty  *float64        `json:"presence_penalty,omitempty"`
	Stop             []string        `json:"stop,omitempty"`
	Seed             *int            `json:"seed,omitempty"`
	Stream           bool            `json:"stream,omitempty"`

	ResponseFormat *openAIResponseFormat `json:"response_format,omitempty"`

	// Search requests provider-side web search; passed ungated, providers
	// without the feature ignore it.
	Search bool `json:"search,omitempty"`

	// SearchRecencyFilter and ReturnCitations are Perplexity extensions,
	// gated by the definition's support flags.
	SearchRecencyFilter string `json:"search_recency_filter,omitempty"`
	ReturnCitations     bool   `json:"return_citations,omitempty"`
}

type openAIMessage struct {
	Role    string `json:"role"` // system, user, assistant
	Content string `json:"content"`
}

type openAIResponseFormat struct {
	Type string `json:"type"` // "json_object"
}

// openAIResponse is the chat completions response envelope. Usage is kept
// raw so provider extensions (embedded cost, cache counters) survive into
// the response for the pricing layer.
type openAIResponse struct {
	ID      string          `json:"id"`
	Model   string          `json:"model,omitempty"`
	Choices []openAIChoice  `json:"choices"`
	Usage   json.RawMessage `json:"usage,omitempty"`

	// Perplexity extensions.
	Citations        []string             `json:"citations,omitempty"`
	SearchResults    []openAISearchResult `json:"search_results,omitempty"`
	RelatedQuestions []string             `json:"related_questions,omitempty"`
}

type openAIChoice struct {
	Index        int                   `json:"index"`
	Message      openAIResponseMessage `json:"message"`
	FinishReason string                `json:"finish_reason,omitempty"`
}

type openAIResponseMessage struct {
	Role    string `json:"role,omitempty"`
	Content string `json:"content,omitempty"`
	// ReasoningContent is how DeepSeek-style reasoning models deliver chain
	// output; Reasoning is the OpenRouter spelling of the same field.
	ReasoningContent string `json:"reasoning_content,omitempty"`
	Reasoning        string `json:"reasoning,omitempty"`
}

type openAISearchResult struct {
	Title string `json:"title,omitempty"`
	URL   string `json:"url"`
}

// openAIUsage covers both field spellings in the wild: chat completions
// (prompt_tokens/completion_tokens) and the responses endpoint
// (input_tokens/output_tokens). Pointer fields distinguish absent from zero.
type openAIUsage struct {
	PromptTokens     *int `json:"prompt_tokens"`
	CompletionTokens *int `json:"completion_tokens"`
	InputTokens      *int `json:"input_tokens"`
	OutputTokens     *int `json:"output_tokens"`
	TotalTokens      *int `json:"total_tokens"`
}

/*
	CONVERSION
*/

// buildOpenAI converts a chat request to the chat completions wire form.
func buildOpenAI(def catalog.ProviderDefinition, request *chat.Request, model, apiKey string, stream bool) (BuiltRequest, error) {
	wire := openAIRequest{
		Model:  model,
		Stream: stream,
	}

	for _, message := range request.Messages {
		wire.Messages = append(wire.Messages, openAIMessage{
			Role:    string(message.Role),
			Content: message.Content,
		})
	}

	if params := request.Params; params != nil {
		wire.Temperature = params.Temperature
		wire.TopP = params.TopP
		wire.TopK = params.TopK
		wire.MaxTokens = params.MaxTokens
		wire.FrequencyPenalty = params.FrequencyPenalty
		wire.PresencePenalty = params.PresencePenalty
		wire.Stop = params.Stop
		wire.Seed = params.Seed
	}

	if request.JSONMode {
		wire.ResponseFormat = &openAIResponseFormat{Type: "json_object"}
	}
	wire.Search = request.WebSearch
	if request.Citations && def.SupportsCitations {
		wire.ReturnCitations = true
	}
	if request.SearchRecency != "" && def.SupportsSearchRecency {
		wire.SearchRecencyFilter = request.SearchRecency
	}

	body, err := utils.MarshalBody(wire)
	if err != nil {
		return BuiltRequest{}, err
	}

	// Seed field rename quirk (Mistral wants "random_seed").
	if wire.Seed != nil && def.SeedField != "" && def.SeedField != "seed" {
		body, err = renameJSONField(body, "seed", def.SeedField)
		if err != nil {
			return BuiltRequest{}, err
		}
	}

	return BuiltRequest{
		URL:     def.ChatEndpoint(model),
		Headers: authHeader(def, apiKey),
		Body:    body,
		Model:   model,
	}, nil
}

// parseOpenAI extracts text from a chat completions payload. The fallback
// order tolerates reasoning-only replies and providers that pad choices:
// first choice content, first choice reasoning, any choice content, any
// choice reasoning, then the payload's own error message, and finally a
// "no response content" error naming the choice count.
func parseOpenAI(response *chat.Response, body []byte) {
	var wire openAIResponse
	if err := json.Unmarshal(body, &wire); err != nil {
		response.ErrorMessage = fmt.Sprintf("unparseable response body: %s", utils.TruncateString(string(body), utils.DefaultMaxStringLength))
		return
	}

	if wire.ID != "" {
		response.RequestID = wire.ID
	}
	applyOpenAIUsage(response, wire.Usage)

	response.Citations = wire.Citations
	response.RelatedQuestions = wire.RelatedQuestions
	for _, result := range wire.SearchResults {
		response.SearchResults = append(response.SearchResults, chat.SearchResult{Title: result.Title, URL: result.URL})
	}

	if len(wire.Choices) > 0 {
		first := wire.Choices[0].Message
		switch {
		case first.Content != "":
			response.Text = first.Content
			return
		case reasoningText(first) != "":
			response.Text = reasoningText(first)
			return
		}
		for _, choice := range wire.Choices {
			if choice.Message.Content != "" {
				response.Text = choice.Message.Content
				return
			}
		}
		for _, choice := range wire.Choices {
			if text := reasoningText(choice.Message); text != "" {
				response.Text = text
				return
			}
		}
	}

	if message, ok := errorMessageFromJSON(body); ok {
		response.ErrorMessage = message
		return
	}
	response.ErrorMessage = fmt.Sprintf("no response content (choices: %d)", len(wire.Choices))
}

// reasoningText returns whichever reasoning field spelling the provider
// used.
func reasoningText(message openAIResponseMessage) string {
	if message.ReasoningContent != "" {
		return message.ReasoningContent
	}
	return message.Reasoning
}

// applyOpenAIUsage decodes a raw usage block, keeping the original payload
// on the response for the pricing layer. No usage block means a nil Usage.
func applyOpenAIUsage(response *chat.Response, raw json.RawMessage) {
	if len(raw) == 0 {
		return
	}
	response.RawUsage = raw

	var wire openAIUsage
	if err := json.Unmarshal(raw, &wire); err != nil {
		return
	}

	usage := &chat.Usage{}
	switch {
	case wire.PromptTokens != nil:
		usage.InputTokens = *wire.PromptTokens
	case wire.InputTokens != nil:
		usage.InputTokens = *wire.InputTokens
	}
	switch {
	case wire.CompletionTokens != nil:
		usage.OutputTokens = *wire.CompletionTokens
	case wire.OutputTokens != nil:
		usage.OutputTokens = *wire.OutputTokens
	}
	if wire.TotalTokens != nil {
		usage.TotalTokens = *wire.TotalTokens
	} else {
		usage.TotalTokens = usage.InputTokens + usage.OutputTokens
	}
	response.Usage = usage
}
