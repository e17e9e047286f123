// Package pricing resolves what a model exchange costs. Resolution walks a
// fixed tier order and never fails:
//
//	API        cost reported in the provider's usage payload, believed only
//	           for definitions that set trust_api_cost
//	OVERRIDE   user-entered price for a (provider, model) pair
//	OPENROUTER remote cross-provider table, refreshed at most weekly
//	LITELLM    compiled-in static table
//	FALLBACK   small hardcoded table of well-known models
//	DEFAULT    $2.50/M input, $5.00/M output
//
// Overrides and the fetched OpenRouter table persist through the blob store;
// reads go against an immutable snapshot and never block on mutations.
package pricing
