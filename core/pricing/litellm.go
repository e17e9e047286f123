package pricing

import (
	_ "embed"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/leofalp/switchboard/core/cost"
)

// litellmTable is a compiled-in excerpt of the LiteLLM community price
// sheet, in its native per-token format.
//
//go:embed litellm.json
var litellmTable []byte

// litellmEntry mirrors one row of the LiteLLM table. Only chat rows with a
// price in both directions are loaded.
type litellmEntry struct {
	InputCostPerToken  float64 `json:"input_cost_per_token"`
	OutputCostPerToken float64 `json:"output_cost_per_token"`
	LiteLLMProvider    string  `json:"litellm_provider"`
	Mode               string  `json:"mode"`
}

// loadLiteLLM parses the embedded table into per-million costs. A broken
// embed degrades to an empty table rather than failing startup.
func loadLiteLLM() map[string]cost.ModelCost {
	var raw map[string]litellmEntry
	if err := json.Unmarshal(litellmTable, &raw); err != nil {
		zap.L().Warn("embedded litellm table unparseable", zap.Error(err))
		return map[string]cost.ModelCost{}
	}

	table := make(map[string]cost.ModelCost, len(raw))
	for model, entry := range raw {
		if entry.Mode != "chat" {
			continue
		}
		if entry.InputCostPerToken <= 0 && entry.OutputCostPerToken <= 0 {
			continue
		}
		table[model] = cost.FromPerToken(entry.InputCostPerToken, entry.OutputCostPerToken)
	}
	return table
}

// lookupLiteLLM tries the bare model id, then the provider-prefixed form.
// Unlike the OpenRouter lookup there is no suffix scan: LiteLLM keys mix
// vendor conventions too freely for a suffix match to be trustworthy.
func lookupLiteLLM(table map[string]cost.ModelCost, prefix, model string) (cost.ModelCost, bool) {
	if mc, ok := table[model]; ok {
		return mc, true
	}
	if mc, ok := table[prefix+"/"+model]; ok {
		return mc, true
	}
	return cost.ModelCost{}, false
}
