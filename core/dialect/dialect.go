package dialect

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/leofalp/switchboard/core/chat"
	"github.com/leofalp/switchboard/internal/utils"
	"github.com/leofalp/switchboard/providers/catalog"
)

// BuiltRequest is a provider-ready HTTP request: the absolute endpoint URL,
// the auth and version headers the dialect requires, and the marshaled JSON
// body. Model is the resolved model id the body references.
type BuiltRequest struct {
	URL     string
	Headers []utils.HeaderOption
	Body    []byte
	Model   string
}

// CostResolver supplies the final cost figure for a parsed response.
// Implemented by pricing.Resolver; declared here so response normalization
// does not depend on the pricing package.
type CostResolver interface {
	ResolveCost(def catalog.ProviderDefinition, model string, usage *chat.Usage, rawUsage json.RawMessage) (*float64, string)
}

// BuildRequest converts a chat request into the wire form the definition's
// dialect expects. The model is resolved against the definition's default;
// a request that names no model against a definition with no default is an
// error, everything past that point marshals unconditionally.
func BuildRequest(def catalog.ProviderDefinition, request *chat.Request, apiKey string, stream bool) (BuiltRequest, error) {
	model := def.ModelOrDefault(request.Model)
	if model == "" {
		return BuiltRequest{}, fmt.Errorf("no model requested and provider %q declares no default", def.ID)
	}

	switch def.Dialect {
	case catalog.DialectAnthropic:
		return buildAnthropic(def, request, model, apiKey, stream)
	case catalog.DialectGoogle:
		return buildGoogle(def, request, model, apiKey, stream)
	case catalog.DialectOpenAI:
		if def.UsesResponsesAPI(model) {
			return buildResponses(def, request, model, apiKey, stream)
		}
		return buildOpenAI(def, request, model, apiKey, stream)
	default:
		return BuiltRequest{}, fmt.Errorf("provider %q declares unknown dialect %q", def.ID, def.Dialect)
	}
}

// ParseResponse normalizes a completed HTTP exchange into a chat.Response.
// It never fails: non-2xx statuses and malformed bodies come back as error
// responses carrying the provider's message. costs may be nil, in which case
// no cost is attached.
func ParseResponse(def catalog.ProviderDefinition, model string, status int, body []byte, costs CostResolver) *chat.Response {
	response := &chat.Response{Provider: def.ID, Model: model, HTTPStatus: status}

	if status < 200 || status >= 300 {
		response.ErrorMessage = fmt.Sprintf("provider returned status %d: %s", status, extractErrorMessage(body))
		return response
	}

	switch def.Dialect {
	case catalog.DialectAnthropic:
		parseAnthropic(response, body)
	case catalog.DialectGoogle:
		parseGoogle(response, body)
	default:
		if def.UsesResponsesAPI(model) {
			parseResponses(response, body)
		} else {
			parseOpenAI(response, body)
		}
	}

	if costs != nil && (response.Usage != nil || len(response.RawUsage) > 0) {
		response.Cost, response.CostSource = costs.ResolveCost(def, model, response.Usage, response.RawUsage)
	}
	return response
}

// authHeader returns the bearer header for OpenAI-compatible endpoints, or
// nothing for keyless providers.
func authHeader(def catalog.ProviderDefinition, apiKey string) []utils.HeaderOption {
	if def.NoAuth || apiKey == "" {
		return nil
	}
	return []utils.HeaderOption{{Key: "Authorization", Value: "Bearer " + apiKey}}
}

// AuthFor decorates a GET-style endpoint URL (model listings) with the
// dialect's authentication: bearer header, x-api-key plus version header, or
// a key query parameter. Returns the possibly extended URL and the headers
// to set.
func AuthFor(def catalog.ProviderDefinition, apiKey, rawURL string) (string, []utils.HeaderOption) {
	switch def.Dialect {
	case catalog.DialectAnthropic:
		headers := []utils.HeaderOption{{Key: "anthropic-version", Value: anthropicVersion}}
		if !def.NoAuth && apiKey != "" {
			headers = append(headers, utils.HeaderOption{Key: "x-api-key", Value: apiKey})
		}
		return rawURL, headers
	case catalog.DialectGoogle:
		if def.NoAuth || apiKey == "" {
			return rawURL, nil
		}
		separator := "?"
		if strings.Contains(rawURL, "?") {
			separator = "&"
		}
		return rawURL + separator + "key=" + url.QueryEscape(apiKey), nil
	default:
		return rawURL, authHeader(def, apiKey)
	}
}

// renameJSONField moves a top-level body field to a different name, for
// providers that accept the common parameter under a nonstandard key.
func renameJSONField(body []byte, from, to string) ([]byte, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, fmt.Errorf("reparsing body to rename %q: %w", from, err)
	}
	value, ok := fields[from]
	if !ok {
		return body, nil
	}
	delete(fields, from)
	fields[to] = value
	return json.Marshal(fields)
}
