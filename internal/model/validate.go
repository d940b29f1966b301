package model

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed portfolio.schema.json
var backendSchema []byte

var backendSchemaLoader = gojsonschema.NewBytesLoader(backendSchema)

// ValidateBackendDocument validates a denormalized (snake_case) document
// against the backend's portfolio contract.
func ValidateBackendDocument(m map[string]interface{}) error {
	res, err := gojsonschema.Validate(backendSchemaLoader, gojsonschema.NewGoLoader(m))
	if err != nil {
		return err
	}
	if res.Valid() {
		return nil
	}
	// collect errors
	msgs := make([]string, 0, len(res.Errors()))
	for _, e := range res.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("schema validation failed: %s", strings.Join(msgs, "; "))
}

// ValidateDraftDocument validates a document built from an edited draft.
// Section entries that are not objects, or carry no type at all, are stored
// data the renderer skips; they go back to the store as they came and are
// left out of the check.
func ValidateDraftDocument(m map[string]interface{}) error {
	secs, ok := m["sections"].([]interface{})
	if !ok {
		return ValidateBackendDocument(m)
	}
	typed := make([]interface{}, 0, len(secs))
	for _, e := range secs {
		sec, ok := e.(map[string]interface{})
		if !ok {
			continue
		}
		if _, ok := sec["type"]; !ok {
			continue
		}
		typed = append(typed, sec)
	}
	doc := make(map[string]interface{}, len(m))
	for k, v := range m {
		doc[k] = v
	}
	doc["sections"] = typed
	return ValidateBackendDocument(doc)
}
