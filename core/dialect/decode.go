package dialect

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/leofalp/switchboard/core/chat"
	"github.com/leofalp/switchboard/internal/utils"
	"github.com/leofalp/switchboard/providers/catalog"
)

// maxStreamLineSize caps individual SSE lines (1 MB). A line beyond this
// surfaces as a scanner error through the stream.
const maxStreamLineSize = 1 * 1024 * 1024

// doneSentinel terminates OpenAI-compatible streams.
const doneSentinel = "[DONE]"

// DecodeStream consumes an open SSE body and yields text fragments per the
// definition's dialect. The decoder is a line state machine: "event:" lines
// set a pending event type, blank lines clear it, and "data:" lines are
// interpreted against it. Malformed data lines are logged and skipped so a
// single bad chunk does not kill the stream.
//
// The body is closed when the iterator finishes or the consumer breaks out
// early. End of input without an explicit terminator still yields a final
// done fragment.
func DecodeStream(ctx context.Context, def catalog.ProviderDefinition, model string, body io.ReadCloser, logger *zap.Logger) *chat.Stream {
	if logger == nil {
		logger = zap.NewNop()
	}
	decode := dataDecoder(def, model)

	iterator := func(yield func(chat.Fragment, error) bool) {
		defer utils.CloseWithLog(body)

		scanner := bufio.NewScanner(body)
		scanner.Buffer(make([]byte, 0, 64*1024), maxStreamLineSize)

		pendingEventType := ""

		for scanner.Scan() {
			// Respect cancellation between reads.
			if ctx.Err() != nil {
				yield(chat.Fragment{}, ctx.Err())
				return
			}

			line := scanner.Text()

			// Blank line ends the current event.
			if line == "" {
				pendingEventType = ""
				continue
			}
			// SSE comment.
			if strings.HasPrefix(line, ":") {
				continue
			}
			if strings.HasPrefix(line, "event:") {
				pendingEventType = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
				continue
			}
			// Other fields (id:, retry:) carry nothing we need.
			if !strings.HasPrefix(line, "data:") {
				continue
			}

			payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
			texts, done, err := decode(pendingEventType, payload)
			if err != nil {
				logger.Warn("skipping malformed stream chunk",
					zap.Error(err),
					zap.String("data", utils.TruncateString(payload, 200)))
				continue
			}

			for _, text := range texts {
				if !yield(chat.Fragment{Text: text}, nil) {
					return
				}
			}
			if done {
				yield(chat.Fragment{Done: true}, nil)
				return
			}
		}

		if err := scanner.Err(); err != nil {
			yield(chat.Fragment{}, fmt.Errorf("reading stream: %w", err))
			return
		}

		// Stream closed without a terminator (Google has none).
		yield(chat.Fragment{Done: true}, nil)
	}

	return chat.NewStream(iterator)
}

// dataDecoder selects the per-dialect data-line interpretation. Each decoder
// returns the extracted texts in emission order (a single chunk may carry
// more than one), whether the stream is complete, and a parse error for
// malformed payloads.
func dataDecoder(def catalog.ProviderDefinition, model string) func(eventType, payload string) ([]string, bool, error) {
	switch def.Dialect {
	case catalog.DialectAnthropic:
		return decodeAnthropicData
	case catalog.DialectGoogle:
		return decodeGoogleData
	default:
		if def.UsesResponsesAPI(model) {
			return decodeResponsesData
		}
		return decodeOpenAIData
	}
}

type openAIStreamChunk struct {
	Choices []struct {
		Delta struct {
			Content          string `json:"content,omitempty"`
			ReasoningContent string `json:"reasoning_content,omitempty"`
		} `json:"delta"`
	} `json:"choices"`
}

// decodeOpenAIData handles chat completions chunks. Every data line is a
// chunk; [DONE] terminates. Reasoning models interleave reasoning_content
// with content, and one chunk may carry both; content is emitted first.
func decodeOpenAIData(_ string, payload string) ([]string, bool, error) {
	if payload == doneSentinel {
		return nil, true, nil
	}
	var chunk openAIStreamChunk
	if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
		return nil, false, err
	}
	if len(chunk.Choices) == 0 {
		return nil, false, nil
	}
	var texts []string
	if delta := chunk.Choices[0].Delta; delta.Content != "" || delta.ReasoningContent != "" {
		if delta.Content != "" {
			texts = append(texts, delta.Content)
		}
		if delta.ReasoningContent != "" {
			texts = append(texts, delta.ReasoningContent)
		}
	}
	return texts, false, nil
}

type responsesStreamChunk struct {
	Delta string `json:"delta"`
}

// decodeResponsesData handles responses-endpoint streams. Only
// "response.output_text.delta" events carry document text; lifecycle events
// (response.created, response.completed, item deltas for reasoning) are
// skipped and end of input finishes the stream.
func decodeResponsesData(eventType, payload string) ([]string, bool, error) {
	if payload == doneSentinel {
		return nil, true, nil
	}
	if eventType != "response.output_text.delta" {
		return nil, false, nil
	}
	var chunk responsesStreamChunk
	if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
		return nil, false, err
	}
	if chunk.Delta == "" {
		return nil, false, nil
	}
	return []string{chunk.Delta}, false, nil
}

type anthropicStreamChunk struct {
	Delta struct {
		Type string `json:"type,omitempty"`
		Text string `json:"text,omitempty"`
	} `json:"delta"`
}

// decodeAnthropicData handles Messages API streams. Text arrives only in
// "content_block_delta" events; "message_stop" terminates; everything else
// (message_start, ping, content_block_start/stop, message_delta) is skipped.
func decodeAnthropicData(eventType, payload string) ([]string, bool, error) {
	switch eventType {
	case "content_block_delta":
		var chunk anthropicStreamChunk
		if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
			return nil, false, err
		}
		if chunk.Delta.Type != "" && chunk.Delta.Type != "text_delta" {
			return nil, false, nil
		}
		if chunk.Delta.Text == "" {
			return nil, false, nil
		}
		return []string{chunk.Delta.Text}, false, nil
	case "message_stop":
		return nil, true, nil
	default:
		return nil, false, nil
	}
}

// decodeGoogleData handles generateContent streams: each data line is a full
// response chunk, and there is no terminator event.
func decodeGoogleData(_ string, payload string) ([]string, bool, error) {
	var chunk googleResponse
	if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
		return nil, false, err
	}
	if len(chunk.Candidates) == 0 || chunk.Candidates[0].Content == nil {
		return nil, false, nil
	}
	var joined strings.Builder
	for _, part := range chunk.Candidates[0].Content.Parts {
		joined.WriteString(part.Text)
	}
	if joined.Len() == 0 {
		return nil, false, nil
	}
	return []string{joined.String()}, false, nil
}
