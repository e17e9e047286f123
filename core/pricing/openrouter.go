package pricing

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/leofalp/switchboard/core/cost"
	"github.com/leofalp/switchboard/internal/utils"
)

// openRouterModelsURL is the public model listing; no key required.
const openRouterModelsURL = "https://openrouter.ai/api/v1/models"

// openRouterMaxAge bounds how often RefreshIfStale actually refetches.
const openRouterMaxAge = 7 * 24 * time.Hour

// openRouterRow is one cached model from the OpenRouter listing.
type openRouterRow struct {
	Cost                cost.ModelCost `json:"cost"`
	SupportedParameters []string       `json:"supported_parameters,omitempty"`
}

// openRouterModelList mirrors the GET /api/v1/models payload. Prices come
// back as per-token decimal strings.
type openRouterModelList struct {
	Data []struct {
		ID      string `json:"id"`
		Pricing struct {
			Prompt     string `json:"prompt"`
			Completion string `json:"completion"`
		} `json:"pricing"`
		SupportedParameters []string `json:"supported_parameters"`
	} `json:"data"`
}

// RefreshOpenRouter fetches the OpenRouter model listing and replaces the
// cached table. Rows with unparseable or negative prices (dynamic routing
// entries report -1) are dropped.
func (r *Resolver) RefreshOpenRouter(ctx context.Context) error {
	list, err := utils.DoGetJSON[openRouterModelList](ctx, r.client, r.openRouterURL)
	if err != nil {
		return fmt.Errorf("fetching openrouter models: %w", err)
	}

	table := make(map[string]openRouterRow, len(list.Data))
	skipped := 0
	for _, row := range list.Data {
		prompt, errP := strconv.ParseFloat(row.Pricing.Prompt, 64)
		completion, errC := strconv.ParseFloat(row.Pricing.Completion, 64)
		if errP != nil || errC != nil || prompt < 0 || completion < 0 {
			skipped++
			continue
		}
		table[row.ID] = openRouterRow{
			Cost:                cost.FromPerToken(prompt, completion),
			SupportedParameters: row.SupportedParameters,
		}
	}

	r.ensure()
	r.mu.Lock()
	defer r.mu.Unlock()

	next := r.tables.Load().clone()
	next.openRouter = table
	next.openRouterFetched = r.now()
	if err := r.persistAndPublish(next); err != nil {
		return err
	}

	r.log.Info("openrouter pricing refreshed",
		zap.Int("models", len(table)),
		zap.Int("skipped", skipped))
	return nil
}

// RefreshIfStale refetches the OpenRouter table when it is absent or older
// than a week. A fresh table makes this a no-op.
func (r *Resolver) RefreshIfStale(ctx context.Context) error {
	if age, ok := r.OpenRouterAge(); ok && age <= openRouterMaxAge {
		return nil
	}
	return r.RefreshOpenRouter(ctx)
}

// OpenRouterAge reports how long ago the OpenRouter table was fetched. The
// second return is false when no table has ever been fetched.
func (r *Resolver) OpenRouterAge() (time.Duration, bool) {
	t := r.snapshot()
	if t.openRouter == nil || t.openRouterFetched.IsZero() {
		return 0, false
	}
	return r.now().Sub(t.openRouterFetched), true
}

// SupportedParameters returns the OpenRouter-reported parameter names for a
// path-style model id, nil when unknown.
func (r *Resolver) SupportedParameters(model string) []string {
	row, ok := r.snapshot().openRouter[model]
	if !ok {
		return nil
	}
	return row.SupportedParameters
}

// lookupOpenRouter tries the bare id, then "<prefix>/<id>", then any key
// with the id as its path suffix. Suffix candidates are sorted so a
// multi-vendor collision resolves the same way every call.
func lookupOpenRouter(table map[string]openRouterRow, prefix, model string) (openRouterRow, bool) {
	if row, ok := table[model]; ok {
		return row, true
	}
	if row, ok := table[prefix+"/"+model]; ok {
		return row, true
	}

	suffix := "/" + model
	var keys []string
	for key := range table {
		if strings.HasSuffix(key, suffix) {
			keys = append(keys, key)
		}
	}
	if len(keys) == 0 {
		return openRouterRow{}, false
	}
	sort.Strings(keys)
	return table[keys[0]], true
}
