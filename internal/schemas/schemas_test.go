package schemas

import (
	"errors"
	"testing"

	"gopkg.in/yaml.v3"
)

func decode(t *testing.T, src string) any {
	t.Helper()
	var doc any
	if err := yaml.Unmarshal([]byte(src), &doc); err != nil {
		t.Fatalf("decode document: %v", err)
	}
	return doc
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		schema  string
		doc     string
		wantErr bool
	}{
		{
			name:   "candidate with cv",
			schema: Candidates,
			doc: `
candidates:
  - id: c1
    cv:
      name: Ann
      total_years_experience: 5
      skills:
        frontend: [React, TypeScript]
      experience:
        - position: Frontend Developer
          current: true
`,
		},
		{
			name:   "candidate with profile",
			schema: Candidates,
			doc:    `{"candidates": [{"name": "Bob", "profile": {"jobTitle": "Backend Engineer", "primarySkills": ["go"]}}]}`,
		},
		{
			name:    "candidate without cv or profile",
			schema:  Candidates,
			doc:     "candidates:\n  - name: Nobody\n",
			wantErr: true,
		},
		{
			name:    "negative experience",
			schema:  Candidates,
			doc:     "candidates:\n  - cv:\n      total_years_experience: -1\n",
			wantErr: true,
		},
		{
			name:   "requirements list",
			schema: Requirements,
			doc:    "requirements:\n  - skill: react\n    importance: 1\n    minLevel: 0.8\n",
		},
		{
			name:   "requirements text",
			schema: Requirements,
			doc:    "text: Senior full stack developer\n",
		},
		{
			name:    "importance out of range",
			schema:  Requirements,
			doc:     "requirements:\n  - skill: react\n    importance: 3\n",
			wantErr: true,
		},
		{
			name:    "missing skill",
			schema:  Requirements,
			doc:     "requirements:\n  - importance: 0.5\n",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := Validate(tt.schema, decode(t, tt.doc))
			if tt.wantErr {
				var ve *ValidationError
				if !errors.As(err, &ve) {
					t.Fatalf("expected validation error, got %v", err)
				}
				if len(ve.Errors) == 0 {
					t.Fatal("expected at least one field error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestValidateUnknownSchema(t *testing.T) {
	t.Parallel()

	if err := Validate("openings", map[string]any{}); err == nil {
		t.Fatal("expected error for unknown schema")
	}
}
