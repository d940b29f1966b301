package model

import (
	_ "embed"
	"encoding/json"
)

//go:embed sample_portfolio.json
var sampleDocument []byte

// SampleDocument returns a fresh copy of the bundled sample portfolio in the
// backend's convention.
func SampleDocument() map[string]interface{} {
	var m map[string]interface{}
	if err := json.Unmarshal(sampleDocument, &m); err != nil {
		panic("model: bundled sample portfolio is not valid JSON: " + err.Error())
	}
	return m
}
