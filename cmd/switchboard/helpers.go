package main

import (
	"encoding/json"
	"fmt"
	"strings"
)

func printJSON(v any) error {
	blob, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(blob))
	return nil
}

// splitOverrideKey parses a "provider/model" key. Model names may themselves
// contain slashes (OpenRouter style), so only the first one separates.
func splitOverrideKey(key string) (providerID, model string, err error) {
	providerID, model, found := strings.Cut(key, "/")
	if !found || providerID == "" || model == "" {
		return "", "", fmt.Errorf("override key %q is not of the form provider/model", key)
	}
	return providerID, model, nil
}
