package requirements

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/spigell/cv-matcher/internal/schemas"
)

// Document is a job requirements file: a free-text description, an explicit
// list, or both.
type Document struct {
	Text         string `json:"text,omitempty" yaml:"text"`
	Requirements List   `json:"requirements,omitempty" yaml:"requirements"`
}

// Resolve returns the explicit list when present, otherwise the list parsed
// from the text.
func (d *Document) Resolve() List {
	if len(d.Requirements) > 0 {
		return d.Requirements
	}
	return Parse(d.Text)
}

// LoadFile reads a YAML or JSON requirements document, validates it against
// the requirements schema and every row against the field rules.
func LoadFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read requirements file: %w", err)
	}

	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode requirements file %s: %w", path, err)
	}
	if err := schemas.Validate(schemas.Requirements, raw); err != nil {
		return nil, fmt.Errorf("requirements file %s: %w", path, err)
	}

	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode requirements file %s: %w", path, err)
	}

	if err := doc.Requirements.Validate(); err != nil {
		return nil, fmt.Errorf("requirements file %s: %w", path, err)
	}

	return &doc, nil
}
