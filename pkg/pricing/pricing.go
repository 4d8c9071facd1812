// Package pricing estimates the monetary cost of generation calls from a
// per-model price table.
package pricing

import (
	"encoding/json"
	"os"

	"atlas/pkg/log"
)

// ModelPrice holds USD prices per 1000 tokens for one model.
type ModelPrice struct {
	Prompt     float64 `json:"prompt"`
	Completion float64 `json:"completion"`
}

// Table maps model names to their prices. Unknown models cost zero.
type Table map[string]ModelPrice

// Load reads a price table from a JSON file. A missing or unreadable file
// yields an empty table, so cost estimation degrades to zero instead of
// failing requests.
func Load(path string) Table {
	if path == "" {
		return Table{}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		log.Warn().Err(err).Str("path", path).Msg("Pricing table not loaded, costs default to zero")
		return Table{}
	}
	var table Table
	if err := json.Unmarshal(data, &table); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("Pricing table is invalid, costs default to zero")
		return Table{}
	}
	return table
}

// EstimateUSD computes prompt/1000*p_in + completion/1000*p_out for the
// model, zero when the model is not priced.
func (t Table) EstimateUSD(model string, promptTokens, completionTokens int) float64 {
	price, ok := t[model]
	if !ok {
		return 0
	}
	return float64(promptTokens)/1000.0*price.Prompt + float64(completionTokens)/1000.0*price.Completion
}
