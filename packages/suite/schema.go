package suite

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

var schemaLoader = gojsonschema.NewStringLoader(schemaJSON)

// Schema returns the JSON schema suite documents are validated against.
func Schema() string {
	return schemaJSON
}

// validateSchema checks a decoded document against the suite schema and
// returns one line per violation.
func validateSchema(doc any) ([]string, error) {
	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewGoLoader(doc))
	if err != nil {
		return nil, fmt.Errorf("schema validation: %w", err)
	}
	if result.Valid() {
		return nil, nil
	}

	problems := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		problems = append(problems, e.String())
	}
	return problems, nil
}
