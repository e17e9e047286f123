package dialect

import (
	"bytes"
	"encoding/json"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"

	"github.com/leofalp/switchboard/internal/utils"
)

// errorMessageFromJSON pulls a human-readable message out of the common
// provider error envelopes, tried in order:
//
//	{"error": {"message": "..."}}
//	{"error": "..."}
//	{"message": "..."}
func errorMessageFromJSON(body []byte) (string, bool) {
	var envelope struct {
		Error   json.RawMessage `json:"error"`
		Message string          `json:"message"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return "", false
	}

	if len(envelope.Error) > 0 {
		var nested struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal(envelope.Error, &nested); err == nil && nested.Message != "" {
			return nested.Message, true
		}
		var plain string
		if err := json.Unmarshal(envelope.Error, &plain); err == nil && plain != "" {
			return plain, true
		}
	}
	if envelope.Message != "" {
		return envelope.Message, true
	}
	return "", false
}

// extractErrorMessage renders a provider error body as one line of text.
// JSON envelopes yield their message; HTML error pages (gateways and CDNs
// love these) are converted to markdown so the useful words survive; anything
// else is passed through truncated.
func extractErrorMessage(body []byte) string {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return "empty response body"
	}

	if message, ok := errorMessageFromJSON(trimmed); ok {
		return utils.TruncateString(message, utils.DefaultMaxStringLength)
	}

	if looksLikeHTML(trimmed) {
		if markdown, err := htmltomarkdown.ConvertString(string(trimmed)); err == nil {
			if collapsed := collapseWhitespace(markdown); collapsed != "" {
				return utils.TruncateString(collapsed, utils.DefaultMaxStringLength)
			}
		}
	}

	return utils.TruncateString(string(trimmed), utils.DefaultMaxStringLength)
}

func looksLikeHTML(body []byte) bool {
	if !bytes.HasPrefix(body, []byte("<")) {
		return false
	}
	lower := bytes.ToLower(body)
	return bytes.Contains(lower, []byte("<html")) || bytes.Contains(lower, []byte("<!doctype")) ||
		bytes.Contains(lower, []byte("<body")) || bytes.Contains(lower, []byte("<title"))
}

// collapseWhitespace flattens a markdown document into a single line.
func collapseWhitespace(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
