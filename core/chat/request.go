package chat

// Role tags who authored a message; compatible with string.
type Role string

const (
	RoleSystem    Role = "system"    // Instructions and configuration
	RoleUser      Role = "user"      // End-user message
	RoleAssistant Role = "assistant" // Model response
)

// Message is a single conversation turn.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// System returns a system-role message.
func System(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// User returns a user-role message.
func User(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// Assistant returns an assistant-role message.
func Assistant(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}

// Params holds optional sampling parameters. Nil pointer fields are omitted
// from the wire request, letting the provider apply its own defaults.
type Params struct {
	Temperature      *float64 `json:"temperature,omitempty"`
	TopP             *float64 `json:"top_p,omitempty"`
	TopK             *int     `json:"top_k,omitempty"`
	MaxTokens        *int     `json:"max_tokens,omitempty"`
	FrequencyPenalty *float64 `json:"frequency_penalty,omitempty"`
	PresencePenalty  *float64 `json:"presence_penalty,omitempty"`
	Stop             []string `json:"stop,omitempty"`
	Seed             *int     `json:"seed,omitempty"`
}

// Request is one logical chat completion, independent of which provider
// serves it. Zero values mean "not requested" for every feature flag.
type Request struct {
	// Model overrides the provider's default model when non-empty.
	Model string `json:"model,omitempty"`

	Messages []Message `json:"messages"`

	Params *Params `json:"params,omitempty"`

	// JSONMode asks the provider to constrain output to a JSON object.
	JSONMode bool `json:"json_mode,omitempty"`

	// WebSearch enables provider-side web search where available.
	WebSearch bool `json:"web_search,omitempty"`

	// Citations asks for source citations; honored only by providers whose
	// definition declares support.
	Citations bool `json:"citations,omitempty"`

	// SearchRecency restricts web search to a window such as "day" or
	// "week"; honored only by providers whose definition declares support.
	SearchRecency string `json:"search_recency,omitempty"`
}

// SystemText returns all system message contents joined with blank lines,
// and the remaining non-system messages in order. Dialects that carry the
// system prompt out-of-band (Anthropic, Google) use this split.
func (r *Request) SystemText() (string, []Message) {
	var system string
	rest := make([]Message, 0, len(r.Messages))
	for _, message := range r.Messages {
		if message.Role == RoleSystem {
			if system != "" {
				system += "\n\n"
			}
			system += message.Content
			continue
		}
		rest = append(rest, message)
	}
	return system, rest
}
