package catalog

import (
	_ "embed"
)

// bundledJSON is the compiled-in provider set used on first run and whenever
// the persisted set is missing, empty, or unparseable.
//
//go:embed providers.json
var bundledJSON []byte

// Bundled parses and returns the compiled-in provider definitions. A parse
// failure yields an empty set, which is a valid catalog.
func Bundled() []ProviderDefinition {
	defs, err := parseDefinitions(bundledJSON)
	if err != nil {
		return nil
	}
	return defs
}
