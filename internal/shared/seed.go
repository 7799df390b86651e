package shared

import (
	_ "embed"
	"encoding/json"
	"fmt"
)

//go:embed seed/listings.json
var seedJSON []byte

// SeedPayloads returns the static catalog as raw payloads, in the same shape
// the remote feed serves. Each call decodes a fresh copy.
func SeedPayloads() ([]map[string]any, error) {
	var out []map[string]any
	if err := json.Unmarshal(seedJSON, &out); err != nil {
		return nil, fmt.Errorf("decode seed listings: %w", err)
	}
	return out, nil
}
