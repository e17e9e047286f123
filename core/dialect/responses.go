package dialect

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/leofalp/switchboard/core/chat"
	"github.com/leofalp/switchboard/internal/utils"
	"github.com/leofalp/switchboard/providers/catalog"
)

/*
	RESPONSES ENDPOINT WIRE FORMAT

	OpenAI's alternate endpoint for newer model families. Same bearer auth as
	chat completions, different body and output layout.
*/

type responsesRequest struct {
	Model string           `json:"model"`
	Input []responsesInput `json:"input"`

	// Instructions carries the system prompt; the input array holds only
	// user and assistant turns.
	Instructions string `json:"instructions,omitempty"`

	Temperature     *float64 `json:"temperature,omitempty"`
	TopP            *float64 `json:"top_p,omitempty"`
	MaxOutputTokens *int     `json:"max_output_tokens,omitempty"`
	Stream          bool     `json:"stream,omitempty"`

	Text *responsesTextConfig `json:"text,omitempty"`
}

type responsesInput struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responsesTextConfig struct {
	Format responsesTextFormat `json:"format"`
}

type responsesTextFormat struct {
	Type string `json:"type"` // "json_object"
}

// responsesResponse is the response envelope. Text is kept raw because the
// field is overloaded in the wild: the official shape puts a format-config
// object there, while several compatible gateways inline the document text.
type responsesResponse struct {
	ID         string                `json:"id"`
	Model      string                `json:"model,omitempty"`
	OutputText string                `json:"output_text,omitempty"`
	Text       json.RawMessage       `json:"text,omitempty"`
	Output     []responsesOutputItem `json:"output,omitempty"`
	Usage      json.RawMessage       `json:"usage,omitempty"`
}

type responsesOutputItem struct {
	Type    string                 `json:"type,omitempty"` // "message", "reasoning", ...
	Role    string                 `json:"role,omitempty"`
	Text    string                 `json:"text,omitempty"`
	Content []responsesContentPart `json:"content,omitempty"`
}

type responsesContentPart struct {
	Type string `json:"type,omitempty"` // "output_text"
	Text string `json:"text,omitempty"`
}

/*
	CONVERSION
*/

// buildResponses converts a chat request to the responses wire form.
func buildResponses(def catalog.ProviderDefinition, request *chat.Request, model, apiKey string, stream bool) (BuiltRequest, error) {
	system, rest := request.SystemText()

	wire := responsesRequest{
		Model:        model,
		Instructions: system,
		Stream:       stream,
	}
	for _, message := range rest {
		wire.Input = append(wire.Input, responsesInput{
			Role:    string(message.Role),
			Content: message.Content,
		})
	}

	if params := request.Params; params != nil {
		wire.Temperature = params.Temperature
		wire.TopP = params.TopP
		wire.MaxOutputTokens = params.MaxTokens
	}
	if request.JSONMode {
		wire.Text = &responsesTextConfig{Format: responsesTextFormat{Type: "json_object"}}
	}

	body, err := utils.MarshalBody(wire)
	if err != nil {
		return BuiltRequest{}, err
	}

	return BuiltRequest{
		URL:     def.Endpoint(def.ResponsesPath, model),
		Headers: authHeader(def, apiKey),
		Body:    body,
		Model:   model,
	}, nil
}

// parseResponses extracts text from a responses payload. Fallback order:
// the output_text convenience field, a string-valued text field, the first
// output item (output_text-typed part, then text-typed, then any text),
// the first message item's content, and finally the first text anywhere.
func parseResponses(response *chat.Response, body []byte) {
	var wire responsesResponse
	if err := json.Unmarshal(body, &wire); err != nil {
		response.ErrorMessage = fmt.Sprintf("unparseable response body: %s", utils.TruncateString(string(body), utils.DefaultMaxStringLength))
		return
	}

	if wire.ID != "" {
		response.RequestID = wire.ID
	}
	applyOpenAIUsage(response, wire.Usage)

	if wire.OutputText != "" {
		response.Text = wire.OutputText
		return
	}

	var inlineText string
	if err := json.Unmarshal(wire.Text, &inlineText); err == nil && inlineText != "" {
		response.Text = inlineText
		return
	}

	if len(wire.Output) > 0 {
		first := wire.Output[0]
		for _, wantType := range []string{"output_text", "text"} {
			if text := partByType(first.Content, wantType); text != "" {
				response.Text = text
				return
			}
		}
		if text := anyItemText(first); text != "" {
			response.Text = text
			return
		}
	}

	for _, item := range wire.Output {
		if item.Type != "message" {
			continue
		}
		if text := joinParts(item.Content); text != "" {
			response.Text = text
			return
		}
		break
	}

	for _, item := range wire.Output {
		if text := anyItemText(item); text != "" {
			response.Text = text
			return
		}
	}

	if message, ok := errorMessageFromJSON(body); ok {
		response.ErrorMessage = message
		return
	}
	response.ErrorMessage = fmt.Sprintf("no response content (output items: %d)", len(wire.Output))
}

// partByType returns the first non-empty text among parts of the given type.
func partByType(parts []responsesContentPart, partType string) string {
	for _, part := range parts {
		if part.Type == partType && part.Text != "" {
			return part.Text
		}
	}
	return ""
}

// anyItemText returns the first text an item carries anywhere: a content
// part of any type, or the inline text field some gateways use.
func anyItemText(item responsesOutputItem) string {
	for _, part := range item.Content {
		if part.Text != "" {
			return part.Text
		}
	}
	return item.Text
}

// joinParts concatenates the non-empty text parts of one output item.
func joinParts(parts []responsesContentPart) string {
	var texts []string
	for _, part := range parts {
		if part.Text != "" {
			texts = append(texts, part.Text)
		}
	}
	return strings.Join(texts, "")
}
