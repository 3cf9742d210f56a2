// Package extract turns raw model output into validated, typed facts. The
// extraction schema lives here as a single versioned artifact; every
// structural requirement on model output is expressed in it rather than
// scattered through the mapping code.
package extract

import (
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// extractionSchema is the structural contract model output must satisfy
// before mapping. Only the load-bearing fields are required; everything else
// is defaulted at the mapping boundary.
const extractionSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "properties": {
    "primary_type": { "type": "string" },
    "summary": { "type": "string", "maxLength": 500 },
    "confidence": { "type": "number", "minimum": 0, "maximum": 1 },
    "needs_response": { "type": "boolean" }
  },
  "required": ["primary_type", "summary", "confidence", "needs_response"]
}`

// Validator checks decoded model output against the extraction schema
type Validator struct {
	schema *jsonschema.Schema
}

// NewValidator compiles the extraction schema
func NewValidator() (*Validator, error) {
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(extractionSchema))
	if err != nil {
		return nil, fmt.Errorf("failed to parse extraction schema: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("extraction.json", doc); err != nil {
		return nil, fmt.Errorf("failed to register extraction schema: %w", err)
	}

	schema, err := compiler.Compile("extraction.json")
	if err != nil {
		return nil, fmt.Errorf("failed to compile extraction schema: %w", err)
	}

	return &Validator{schema: schema}, nil
}

// Validate reports whether a decoded JSON instance satisfies the schema
func (v *Validator) Validate(instance any) bool {
	return v.schema.Validate(instance) == nil
}
