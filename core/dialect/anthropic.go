package dialect

import (
	"encoding/json"
	"fmt"

	"github.com/leofalp/switchboard/core/chat"
	"github.com/leofalp/switchboard/internal/utils"
	"github.com/leofalp/switchboard/providers/catalog"
)

// anthropicVersion is the API version header every Messages request must
// carry.
const anthropicVersion = "2023-06-01"

// defaultAnthropicMaxTokens is applied when the request sets no limit:
// max_tokens is mandatory on the Messages API.
const defaultAnthropicMaxTokens = 4096

/*
	MESSAGES API WIRE FORMAT
*/

type anthropicRequest struct {
	Model string `json:"model"`

	// System carries the system prompt out-of-band; messages hold only user
	// and assistant turns.
	System string `json:"system,omitempty"`

	Messages  []anthropicMessage `json:"messages"`
	MaxTokens int                `json:"max_tokens"`

	Temperature   *float64 `json:"temperature,omitempty"`
	TopP          *float64 `json:"top_p,omitempty"`
	TopK          *int     `json:"top_k,omitempty"`
	StopSequences []string `json:"stop_sequences,omitempty"`
	Stream        bool     `json:"stream,omitempty"`
}

type anthropicMessage struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

type anthropicResponse struct {
	ID         string                  `json:"id"`
	Model      string                  `json:"model,omitempty"`
	Content    []anthropicContentBlock `json:"content"`
	StopReason string                  `json:"stop_reason,omitempty"`
	Usage      json.RawMessage         `json:"usage,omitempty"`
}

type anthropicContentBlock struct {
	Type     string `json:"type"`
	Text     string `json:"text,omitempty"`
	Thinking string `json:"thinking,omitempty"`
}

type anthropicUsage struct {
	InputTokens  *int `json:"input_tokens"`
	OutputTokens *int `json:"output_tokens"`
}

/*
	CONVERSION
*/

// buildAnthropic converts a chat request to the Messages API wire form.
// System messages move to the top-level system field; authentication is
// x-api-key plus the pinned version header, not a bearer token.
func buildAnthropic(def catalog.ProviderDefinition, request *chat.Request, model, apiKey string, stream bool) (BuiltRequest, error) {
	system, rest := request.SystemText()

	wire := anthropicRequest{
		Model:     model,
		System:    system,
		MaxTokens: defaultAnthropicMaxTokens,
		Stream:    stream,
	}
	for _, message := range rest {
		wire.Messages = append(wire.Messages, anthropicMessage{
			Role:    string(message.Role),
			Content: message.Content,
		})
	}

	if params := request.Params; params != nil {
		wire.Temperature = params.Temperature
		wire.TopP = params.TopP
		wire.TopK = params.TopK
		wire.StopSequences = params.Stop
		if params.MaxTokens != nil && *params.MaxTokens > 0 {
			wire.MaxTokens = *params.MaxTokens
		}
	}

	body, err := utils.MarshalBody(wire)
	if err != nil {
		return BuiltRequest{}, err
	}

	headers := []utils.HeaderOption{{Key: "anthropic-version", Value: anthropicVersion}}
	if !def.NoAuth && apiKey != "" {
		headers = append(headers, utils.HeaderOption{Key: "x-api-key", Value: apiKey})
	}

	return BuiltRequest{
		URL:     def.Endpoint(def.ChatPath, model),
		Headers: headers,
		Body:    body,
		Model:   model,
	}, nil
}

// parseAnthropic extracts text from a Messages payload: the first text
// block, then any block with text, then the payload's own error message.
func parseAnthropic(response *chat.Response, body []byte) {
	var wire anthropicResponse
	if err := json.Unmarshal(body, &wire); err != nil {
		response.ErrorMessage = fmt.Sprintf("unparseable response body: %s", utils.TruncateString(string(body), utils.DefaultMaxStringLength))
		return
	}

	if wire.ID != "" {
		response.RequestID = wire.ID
	}
	applyAnthropicUsage(response, wire.Usage)

	for _, block := range wire.Content {
		if block.Type == "text" && block.Text != "" {
			response.Text = block.Text
			return
		}
	}
	for _, block := range wire.Content {
		if block.Text != "" {
			response.Text = block.Text
			return
		}
		if block.Thinking != "" {
			response.Text = block.Thinking
			return
		}
	}

	if message, ok := errorMessageFromJSON(body); ok {
		response.ErrorMessage = message
		return
	}
	response.ErrorMessage = fmt.Sprintf("no response content (content blocks: %d)", len(wire.Content))
}

func applyAnthropicUsage(response *chat.Response, raw json.RawMessage) {
	if len(raw) == 0 {
		return
	}
	response.RawUsage = raw

	var wire anthropicUsage
	if err := json.Unmarshal(raw, &wire); err != nil {
		return
	}

	usage := &chat.Usage{}
	if wire.InputTokens != nil {
		usage.InputTokens = *wire.InputTokens
	}
	if wire.OutputTokens != nil {
		usage.OutputTokens = *wire.OutputTokens
	}
	usage.TotalTokens = usage.InputTokens + usage.OutputTokens
	response.Usage = usage
}
