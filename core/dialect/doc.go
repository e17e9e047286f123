// Package dialect translates between the provider-neutral chat model and the
// three wire protocols the catalog distinguishes: OpenAI-compatible chat
// completions (plus the alternate "responses" endpoint), the Anthropic
// Messages API, and Google's generateContent API.
//
// The package has three entry points. BuildRequest turns a chat.Request into
// the URL, headers, and JSON body a provider expects. ParseResponse
// normalizes a completed HTTP exchange into a chat.Response and never fails:
// error statuses and malformed bodies become error responses. DecodeStream
// consumes an open SSE body and yields incremental text fragments.
//
// Provider quirks (seed field renames, tick-denominated costs, responses
// routing) are driven entirely by the catalog.ProviderDefinition, so adding
// a provider that speaks one of the three dialects requires no code here.
package dialect
