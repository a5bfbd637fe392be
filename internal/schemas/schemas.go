// Package schemas validates input documents against the embedded JSON schemas.
package schemas

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

const (
	Candidates   = "candidates"
	Requirements = "requirements"
)

var (
	//go:embed candidates.schema.json
	candidatesSchema string
	//go:embed requirements.schema.json
	requirementsSchema string

	registry = map[string]string{
		Candidates:   candidatesSchema,
		Requirements: requirementsSchema,
	}
)

// ValidationError represents a schema validation error with field paths
type ValidationError struct {
	Schema string
	Errors []FieldError
}

// FieldError represents a single validation error at a specific field
type FieldError struct {
	Field   string
	Message string
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s validation failed:\n", ve.Schema)
	for i, err := range ve.Errors {
		fmt.Fprintf(&sb, "  %d. %s: %s\n", i+1, err.Field, err.Message)
	}
	return sb.String()
}

// Validate checks doc, a value decoded from JSON or YAML, against the named
// schema. A *ValidationError lists every violation.
func Validate(name string, doc any) error {
	schema, ok := registry[name]
	if !ok {
		return fmt.Errorf("unknown schema %q", name)
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(schema),
		gojsonschema.NewGoLoader(doc),
	)
	if err != nil {
		return fmt.Errorf("validate against %s schema: %w", name, err)
	}

	if result.Valid() {
		return nil
	}

	validationErr := &ValidationError{
		Schema: name,
		Errors: make([]FieldError, 0, len(result.Errors())),
	}

	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		validationErr.Errors = append(validationErr.Errors, FieldError{
			Field:   field,
			Message: desc.Description(),
		})
	}

	return validationErr
}
