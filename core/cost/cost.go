package cost

import "fmt"

// ModelCost is the price of a model in USD per million tokens.
//
//	mc := cost.ModelCost{InputPerMillion: 2.50, OutputPerMillion: 10.00}
type ModelCost struct {
	// InputPerMillion is the cost in USD per 1 million input tokens.
	InputPerMillion float64 `json:"input_per_million" yaml:"input_per_million"`

	// OutputPerMillion is the cost in USD per 1 million output tokens.
	OutputPerMillion float64 `json:"output_per_million" yaml:"output_per_million"`
}

// FromPerToken converts per-token prices, as published by LiteLLM-style
// tables, to the per-million representation used everywhere internally.
func FromPerToken(inputPerToken, outputPerToken float64) ModelCost {
	return ModelCost{
		InputPerMillion:  inputPerToken * 1_000_000.0,
		OutputPerMillion: outputPerToken * 1_000_000.0,
	}
}

// InputCost returns the cost of the given number of input tokens.
func (mc ModelCost) InputCost(tokens int) float64 {
	return (float64(tokens) / 1_000_000.0) * mc.InputPerMillion
}

// OutputCost returns the cost of the given number of output tokens.
func (mc ModelCost) OutputCost(tokens int) float64 {
	return (float64(tokens) / 1_000_000.0) * mc.OutputPerMillion
}

// Total returns the combined cost of one exchange.
func (mc ModelCost) Total(inputTokens, outputTokens int) float64 {
	return mc.InputCost(inputTokens) + mc.OutputCost(outputTokens)
}

// IsZero reports whether no price is set in either direction.
func (mc ModelCost) IsZero() bool {
	return mc.InputPerMillion == 0 && mc.OutputPerMillion == 0
}

// String returns a formatted representation of the model costs.
func (mc ModelCost) String() string {
	return fmt.Sprintf("Input: $%.6f/M, Output: $%.6f/M", mc.InputPerMillion, mc.OutputPerMillion)
}
