package client

import (
	"fmt"

	"github.com/leofalp/switchboard/core/chat"
	"github.com/leofalp/switchboard/core/pricing"
	"github.com/leofalp/switchboard/internal/tokens"
)

// Estimate is a pre-flight cost projection for a request. The output side
// assumes the request's max-tokens budget is fully spent, so Cost is an
// upper bound under the resolved pricing, not a prediction.
type Estimate struct {
	Provider        string         `json:"provider"`
	Model           string         `json:"model"`
	InputTokens     int            `json:"input_tokens"`
	MaxOutputTokens int            `json:"max_output_tokens"`
	Cost            float64        `json:"cost"`
	PricingSource   pricing.Source `json:"pricing_source,omitempty"`
}

// EstimateCost projects what a request would cost before sending it. Input
// tokens are counted locally; the estimate is zero-cost when the client has
// no pricing resolver.
func (c *Client) EstimateCost(providerID string, request *chat.Request) (*Estimate, error) {
	def, err := c.catalog.FindByID(providerID)
	if err != nil {
		return nil, err
	}

	model := def.ModelOrDefault(request.Model)
	if model == "" {
		return nil, fmt.Errorf("no model requested and provider %q declares no default", def.ID)
	}

	inputTokens := 0
	for _, message := range request.Messages {
		inputTokens += tokens.Count(message.Content)
	}

	maxOutput := 0
	if request.Params != nil && request.Params.MaxTokens != nil {
		maxOutput = *request.Params.MaxTokens
	}

	estimate := &Estimate{
		Provider:        def.ID,
		Model:           model,
		InputTokens:     inputTokens,
		MaxOutputTokens: maxOutput,
	}
	if c.costs == nil {
		return estimate, nil
	}

	modelPricing := c.costs.Resolve(def, model)
	estimate.Cost = modelPricing.Total(inputTokens, maxOutput)
	estimate.PricingSource = modelPricing.Source
	return estimate, nil
}
