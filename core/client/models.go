package client

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/leofalp/switchboard/core/dialect"
	"github.com/leofalp/switchboard/internal/utils"
	"github.com/leofalp/switchboard/providers/catalog"
)

// modelEntry is one model in a listing response; providers disagree on
// whether the identifier lives in "id" or "name".
type modelEntry struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type modelList struct {
	Data   []modelEntry `json:"data"`
	Models []modelEntry `json:"models"`
}

// Models lists the model ids a provider offers, sorted. Providers with a
// hardcoded list in their definition never hit the network; the rest are
// queried through their models endpoint and normalized across the various
// listing shapes.
func (c *Client) Models(ctx context.Context, providerID string) ([]string, error) {
	def, err := c.catalog.FindByID(providerID)
	if err != nil {
		return nil, err
	}

	if len(def.Models) > 0 {
		models := append([]string{}, def.Models...)
		sort.Strings(models)
		return models, nil
	}

	if def.ModelsPath == "" {
		return nil, fmt.Errorf("provider %q declares no models endpoint", def.ID)
	}

	apiKey := ""
	if !def.NoAuth {
		if apiKey = c.keys(def.ID); apiKey == "" {
			return nil, fmt.Errorf("%w for provider %q (set %s)", ErrNoAPIKey, def.ID, envKeyName(def.ID))
		}
	}

	url, headers := dialect.AuthFor(def, apiKey, def.Endpoint(def.ModelsPath, ""))
	raw, err := utils.DoGetJSON[json.RawMessage](ctx, c.httpClient, url, headers...)
	if err != nil {
		return nil, fmt.Errorf("listing models for %q: %w", def.ID, err)
	}

	models, err := parseModelIDs(def, *raw)
	if err != nil {
		return nil, err
	}
	models, err = filterModels(def, models)
	if err != nil {
		return nil, err
	}
	sort.Strings(models)
	return models, nil
}

func parseModelIDs(def catalog.ProviderDefinition, raw json.RawMessage) ([]string, error) {
	var entries []modelEntry

	if def.ModelListShape == catalog.ModelListArray {
		if err := json.Unmarshal(raw, &entries); err != nil {
			// Some bare-array providers list plain strings.
			var ids []string
			if err := json.Unmarshal(raw, &ids); err != nil {
				return nil, fmt.Errorf("parsing model list for %q: %w", def.ID, err)
			}
			return ids, nil
		}
	} else {
		var list modelList
		if err := json.Unmarshal(raw, &list); err != nil {
			return nil, fmt.Errorf("parsing model list for %q: %w", def.ID, err)
		}
		entries = list.Data
		if len(entries) == 0 {
			entries = list.Models
		}
	}

	ids := make([]string, 0, len(entries))
	for _, entry := range entries {
		id := entry.ID
		if id == "" {
			id = entry.Name
		}
		if id == "" {
			continue
		}
		// Google lists models as "models/gemini-...".
		ids = append(ids, strings.TrimPrefix(id, "models/"))
	}
	return ids, nil
}

func filterModels(def catalog.ProviderDefinition, models []string) ([]string, error) {
	if def.ModelFilter == "" {
		return models, nil
	}
	filter, err := regexp.Compile(def.ModelFilter)
	if err != nil {
		return nil, fmt.Errorf("invalid model filter %q: %w", def.ModelFilter, err)
	}
	filtered := models[:0]
	for _, model := range models {
		if filter.MatchString(model) {
			filtered = append(filtered, model)
		}
	}
	return filtered, nil
}
