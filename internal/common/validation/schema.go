// internal/common/validation/schema.go
package validation

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

// Schema is a compiled JSON schema ready for repeated validation.
type Schema struct {
	schema *gojsonschema.Schema
}

// MustCompile compiles a schema document and panics on malformed schemas.
// Schemas are package constants, so a failure here is a programming error.
func MustCompile(document string) *Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(document))
	if err != nil {
		panic(fmt.Sprintf("invalid JSON schema: %v", err))
	}
	return &Schema{schema: schema}
}

// ValidateBytes validates a raw JSON document against the schema.
func (s *Schema) ValidateBytes(document []byte) *ValidationResult {
	result, err := s.schema.Validate(gojsonschema.NewBytesLoader(document))
	if err != nil {
		return &ValidationResult{
			Valid:  false,
			Errors: []ValidationError{{Field: "", Message: err.Error()}},
		}
	}

	if result.Valid() {
		return &ValidationResult{Valid: true}
	}

	errs := make([]ValidationError, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		errs = append(errs, ValidationError{
			Field:   e.Field(),
			Message: e.Description(),
		})
	}
	return &ValidationResult{Valid: false, Errors: errs}
}
