// Package tokens estimates token counts for outgoing prompts. Counting uses
// the cl100k_base BPE encoding, which is exact for OpenAI models and a close
// approximation for the rest; when the encoding cannot be loaded (tiktoken
// fetches its dictionary on first use), a bytes/4 heuristic keeps estimates
// available offline.
package tokens

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

var (
	once     sync.Once
	encoding *tiktoken.Tiktoken
)

// Count returns the estimated number of tokens in text.
func Count(text string) int {
	once.Do(func() {
		enc, err := tiktoken.GetEncoding("cl100k_base")
		if err == nil {
			encoding = enc
		}
	})

	if encoding == nil {
		return approximate(text)
	}
	return len(encoding.Encode(text, nil, nil))
}

// approximate is the classic four-bytes-per-token heuristic, rounded up.
func approximate(text string) int {
	if len(text) == 0 {
		return 0
	}
	return (len(text) + 3) / 4
}
