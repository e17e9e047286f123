package dialect

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/leofalp/switchboard/core/chat"
	"github.com/leofalp/switchboard/internal/utils"
	"github.com/leofalp/switchboard/providers/catalog"
)

/*
	GENERATECONTENT WIRE FORMAT

	The model lives in the URL path, the API key in a query parameter, and
	streaming swaps the method suffix to :streamGenerateContent with alt=sse.
*/

type googleRequest struct {
	Contents          []googleContent         `json:"contents"`
	SystemInstruction *googleContent          `json:"systemInstruction,omitempty"`
	GenerationConfig  *googleGenerationConfig `json:"generationConfig,omitempty"`
	Tools             []googleTool            `json:"tools,omitempty"`
}

type googleContent struct {
	Role  string       `json:"role,omitempty"` // "user" or "model"
	Parts []googlePart `json:"parts"`
}

type googlePart struct {
	Text string `json:"text,omitempty"`
}

type googleGenerationConfig struct {
	Temperature      *float64 `json:"temperature,omitempty"`
	TopP             *float64 `json:"topP,omitempty"`
	TopK             *int     `json:"topK,omitempty"`
	MaxOutputTokens  *int     `json:"maxOutputTokens,omitempty"`
	StopSequences    []string `json:"stopSequences,omitempty"`
	ResponseMimeType string   `json:"responseMimeType,omitempty"`
}

type googleTool struct {
	GoogleSearch *googleSearchTool `json:"googleSearch,omitempty"`
}

type googleSearchTool struct{}

type googleResponse struct {
	Candidates    []googleCandidate `json:"candidates,omitempty"`
	UsageMetadata json.RawMessage   `json:"usageMetadata,omitempty"`
}

type googleCandidate struct {
	Content           *googleContent           `json:"content,omitempty"`
	FinishReason      string                   `json:"finishReason,omitempty"`
	GroundingMetadata *googleGroundingMetadata `json:"groundingMetadata,omitempty"`
}

type googleGroundingMetadata struct {
	GroundingChunks  []googleGroundingChunk `json:"groundingChunks,omitempty"`
	WebSearchQueries []string               `json:"webSearchQueries,omitempty"`
}

type googleGroundingChunk struct {
	Web *googleWebChunk `json:"web,omitempty"`
}

type googleWebChunk struct {
	URI   string `json:"uri,omitempty"`
	Title string `json:"title,omitempty"`
}

type googleUsage struct {
	PromptTokenCount     *int `json:"promptTokenCount"`
	CandidatesTokenCount *int `json:"candidatesTokenCount"`
	TotalTokenCount      *int `json:"totalTokenCount"`
}

/*
	CONVERSION
*/

// buildGoogle converts a chat request to the generateContent wire form.
func buildGoogle(def catalog.ProviderDefinition, request *chat.Request, model, apiKey string, stream bool) (BuiltRequest, error) {
	system, rest := request.SystemText()

	wire := googleRequest{}
	if system != "" {
		wire.SystemInstruction = &googleContent{Parts: []googlePart{{Text: system}}}
	}
	for _, message := range rest {
		role := "user"
		if message.Role == chat.RoleAssistant {
			role = "model"
		}
		wire.Contents = append(wire.Contents, googleContent{
			Role:  role,
			Parts: []googlePart{{Text: message.Content}},
		})
	}

	config := &googleGenerationConfig{}
	configured := false
	if params := request.Params; params != nil {
		config.Temperature = params.Temperature
		config.TopP = params.TopP
		config.TopK = params.TopK
		config.MaxOutputTokens = params.MaxTokens
		config.StopSequences = params.Stop
		configured = params.Temperature != nil || params.TopP != nil || params.TopK != nil ||
			params.MaxTokens != nil || len(params.Stop) > 0
	}
	if request.JSONMode {
		config.ResponseMimeType = "application/json"
		configured = true
	}
	if configured {
		wire.GenerationConfig = config
	}

	if request.WebSearch {
		wire.Tools = []googleTool{{GoogleSearch: &googleSearchTool{}}}
	}

	body, err := utils.MarshalBody(wire)
	if err != nil {
		return BuiltRequest{}, err
	}

	return BuiltRequest{
		URL:   googleEndpoint(def, model, apiKey, stream),
		Body:  body,
		Model: model,
	}, nil
}

// googleEndpoint assembles the request URL: {model} interpolation, the
// streaming method swap, and key-as-query-parameter auth.
func googleEndpoint(def catalog.ProviderDefinition, model, apiKey string, stream bool) string {
	path := def.ChatPath
	if stream {
		path = strings.Replace(path, ":generateContent", ":streamGenerateContent", 1)
	}
	endpoint := def.Endpoint(path, model)

	var query []string
	if stream {
		query = append(query, "alt=sse")
	}
	if !def.NoAuth && apiKey != "" {
		query = append(query, "key="+url.QueryEscape(apiKey))
	}
	if len(query) == 0 {
		return endpoint
	}
	separator := "?"
	if strings.Contains(endpoint, "?") {
		separator = "&"
	}
	return endpoint + separator + strings.Join(query, "&")
}

// parseGoogle extracts text from a generateContent payload: the first
// candidate's first part, then its first non-empty part, then the first
// non-empty part of any candidate.
func parseGoogle(response *chat.Response, body []byte) {
	var wire googleResponse
	if err := json.Unmarshal(body, &wire); err != nil {
		response.ErrorMessage = fmt.Sprintf("unparseable response body: %s", utils.TruncateString(string(body), utils.DefaultMaxStringLength))
		return
	}

	applyGoogleUsage(response, wire.UsageMetadata)
	applyGoogleGrounding(response, wire.Candidates)

	if len(wire.Candidates) > 0 && wire.Candidates[0].Content != nil {
		parts := wire.Candidates[0].Content.Parts
		if len(parts) > 0 && parts[0].Text != "" {
			response.Text = parts[0].Text
			return
		}
		for _, part := range parts {
			if part.Text != "" {
				response.Text = part.Text
				return
			}
		}
	}

	for _, candidate := range wire.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part.Text != "" {
				response.Text = part.Text
				return
			}
		}
	}

	if message, ok := errorMessageFromJSON(body); ok {
		response.ErrorMessage = message
		return
	}
	response.ErrorMessage = fmt.Sprintf("no response content (candidates: %d)", len(wire.Candidates))
}

func applyGoogleUsage(response *chat.Response, raw json.RawMessage) {
	if len(raw) == 0 {
		return
	}
	response.RawUsage = raw

	var wire googleUsage
	if err := json.Unmarshal(raw, &wire); err != nil {
		return
	}

	usage := &chat.Usage{}
	if wire.PromptTokenCount != nil {
		usage.InputTokens = *wire.PromptTokenCount
	}
	if wire.CandidatesTokenCount != nil {
		usage.OutputTokens = *wire.CandidatesTokenCount
	}
	if wire.TotalTokenCount != nil {
		usage.TotalTokens = *wire.TotalTokenCount
	} else {
		usage.TotalTokens = usage.InputTokens + usage.OutputTokens
	}
	response.Usage = usage
}

// applyGoogleGrounding surfaces Google Search grounding as citations and
// search results.
func applyGoogleGrounding(response *chat.Response, candidates []googleCandidate) {
	for _, candidate := range candidates {
		if candidate.GroundingMetadata == nil {
			continue
		}
		for _, chunk := range candidate.GroundingMetadata.GroundingChunks {
			if chunk.Web == nil || chunk.Web.URI == "" {
				continue
			}
			response.Citations = append(response.Citations, chunk.Web.URI)
			response.SearchResults = append(response.SearchResults, chat.SearchResult{
				Title: chunk.Web.Title,
				URL:   chunk.Web.URI,
			})
		}
	}
}
