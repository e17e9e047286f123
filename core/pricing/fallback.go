package pricing

import (
	"sort"
	"strings"

	"github.com/leofalp/switchboard/core/cost"
)

// fallbackPricing covers the models people actually run when every live
// table misses. Keys are bare model ids; dated or suffixed variants match
// by longest prefix. USD per million tokens.
var fallbackPricing = map[string]cost.ModelCost{
	"gpt-5":             {InputPerMillion: 1.25, OutputPerMillion: 10.00},
	"gpt-5-mini":        {InputPerMillion: 0.25, OutputPerMillion: 2.00},
	"gpt-5-nano":        {InputPerMillion: 0.05, OutputPerMillion: 0.40},
	"gpt-4.1":           {InputPerMillion: 2.00, OutputPerMillion: 8.00},
	"gpt-4.1-mini":      {InputPerMillion: 0.40, OutputPerMillion: 1.60},
	"gpt-4.1-nano":      {InputPerMillion: 0.10, OutputPerMillion: 0.40},
	"gpt-4o":            {InputPerMillion: 2.50, OutputPerMillion: 10.00},
	"gpt-4o-mini":       {InputPerMillion: 0.15, OutputPerMillion: 0.60},
	"o3":                {InputPerMillion: 2.00, OutputPerMillion: 8.00},
	"o4-mini":           {InputPerMillion: 1.10, OutputPerMillion: 4.40},
	"claude-opus-4":     {InputPerMillion: 15.00, OutputPerMillion: 75.00},
	"claude-sonnet-4":   {InputPerMillion: 3.00, OutputPerMillion: 15.00},
	"claude-3-5-haiku":  {InputPerMillion: 0.80, OutputPerMillion: 4.00},
	"gemini-2.5-pro":    {InputPerMillion: 1.25, OutputPerMillion: 10.00},
	"gemini-2.5-flash":  {InputPerMillion: 0.30, OutputPerMillion: 2.50},
	"gemini-2.0-flash":  {InputPerMillion: 0.10, OutputPerMillion: 0.40},
	"llama-3.3-70b":     {InputPerMillion: 0.60, OutputPerMillion: 0.60},
	"llama-3.1-8b":      {InputPerMillion: 0.05, OutputPerMillion: 0.08},
	"deepseek-chat":     {InputPerMillion: 0.27, OutputPerMillion: 1.10},
	"deepseek-reasoner": {InputPerMillion: 0.55, OutputPerMillion: 2.19},
	"grok-3":            {InputPerMillion: 3.00, OutputPerMillion: 15.00},
	"grok-3-mini":       {InputPerMillion: 0.30, OutputPerMillion: 0.50},
	"mistral-large":     {InputPerMillion: 2.00, OutputPerMillion: 6.00},
	"mistral-small":     {InputPerMillion: 0.10, OutputPerMillion: 0.30},
	"sonar":             {InputPerMillion: 1.00, OutputPerMillion: 1.00},
	"sonar-pro":         {InputPerMillion: 3.00, OutputPerMillion: 15.00},
	"sonar-reasoning":   {InputPerMillion: 1.00, OutputPerMillion: 5.00},
	"kimi-k2":           {InputPerMillion: 0.60, OutputPerMillion: 2.50},
	"glm-4.5":           {InputPerMillion: 0.60, OutputPerMillion: 2.20},
	"qwen-plus":         {InputPerMillion: 0.40, OutputPerMillion: 1.20},
	"qwen-turbo":        {InputPerMillion: 0.05, OutputPerMillion: 0.20},
}

// lookupFallback tries the raw id, then the normalized id, then the longest
// prefix among the table keys. "claude-sonnet-4-20250514" lands on
// "claude-sonnet-4" this way.
func lookupFallback(model string) (cost.ModelCost, bool) {
	if mc, ok := fallbackPricing[model]; ok {
		return mc, true
	}
	normalized := normalizeModel(model)
	if mc, ok := fallbackPricing[normalized]; ok {
		return mc, true
	}

	var keys []string
	for key := range fallbackPricing {
		if strings.HasPrefix(normalized, key) {
			keys = append(keys, key)
		}
	}
	if len(keys) == 0 {
		return cost.ModelCost{}, false
	}
	sort.Slice(keys, func(i, j int) bool { return len(keys[i]) > len(keys[j]) })
	return fallbackPricing[keys[0]], true
}
