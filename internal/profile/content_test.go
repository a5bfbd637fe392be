package profile

import (
	"encoding/json"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestContentUnmarshalJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		wantKind Kind
		wantText string
		wantLen  int
		wantRole Role
	}{
		{name: "text", input: `"Backend engineer"`, wantKind: KindText, wantText: "Backend engineer"},
		{name: "list", input: `["go", ["nested", "list"], 3]`, wantKind: KindList, wantLen: 3},
		{name: "object keeps field order", input: `{"title": "Lead", "current": true, "yearsExperience": 4}`, wantKind: KindObject, wantText: `{"title":"Lead","current":true,"yearsExperience":4}`, wantRole: Role{Current: true, Years: 4}},
		{name: "duration as string", input: `{"duration": "3"}`, wantKind: KindObject, wantText: `{"duration":"3"}`, wantRole: Role{Years: 3}},
		{name: "current must be boolean", input: `{"current": "yes"}`, wantKind: KindObject, wantText: `{"current":"yes"}`},
		{name: "number", input: `42`, wantKind: KindEmpty},
		{name: "null", input: `null`, wantKind: KindEmpty},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var c Content
			if err := json.Unmarshal([]byte(tt.input), &c); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if c.Kind() != tt.wantKind {
				t.Fatalf("expected kind %s, got %s", tt.wantKind, c.Kind())
			}
			if c.Text() != tt.wantText {
				t.Fatalf("expected text %q, got %q", tt.wantText, c.Text())
			}
			if len(c.Items()) != tt.wantLen {
				t.Fatalf("expected %d items, got %d", tt.wantLen, len(c.Items()))
			}
			if c.Role() != tt.wantRole {
				t.Fatalf("expected role %+v, got %+v", tt.wantRole, c.Role())
			}
		})
	}
}

func TestContentUnmarshalYAML(t *testing.T) {
	t.Parallel()

	doc := `
jobTitle: Senior Go Developer
primarySkills:
  - go
  - kubernetes
currentRole:
  title: Platform lead
  yearsExperience: 6
  current: true
education: 2015
`

	var p Profile
	if err := yaml.Unmarshal([]byte(doc), &p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if p.JobTitle.Text() != "Senior Go Developer" {
		t.Fatalf("unexpected job title: %q", p.JobTitle.Text())
	}
	if p.PrimarySkills.Kind() != KindList || len(p.PrimarySkills.Items()) != 2 {
		t.Fatalf("unexpected primary skills: %+v", p.PrimarySkills)
	}
	if got := p.CurrentRole.Text(); got != `{"title":"Platform lead","yearsExperience":6,"current":true}` {
		t.Fatalf("unexpected current role text: %s", got)
	}
	if p.CurrentRole.Role() != (Role{Current: true, Years: 6}) {
		t.Fatalf("unexpected current role: %+v", p.CurrentRole.Role())
	}
	if !p.Education.IsEmpty() {
		t.Fatalf("expected non-string scalar to be empty, got %+v", p.Education)
	}
	if !p.Summary.IsEmpty() {
		t.Fatal("expected missing section to be empty")
	}
}

func TestContentMarshalJSON(t *testing.T) {
	t.Parallel()

	c := List(Text("go"), MustObject(map[string]any{"k": "v"}), Content{})
	raw, err := json.Marshal(c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(raw) != `["go",{"k":"v"},null]` {
		t.Fatalf("unexpected json: %s", raw)
	}
}

func TestObjectError(t *testing.T) {
	t.Parallel()

	if _, err := Object(make(chan int)); err == nil {
		t.Fatal("expected error for a value that cannot be marshaled")
	}
	if _, err := Object([]string{"not", "an", "object"}); err == nil {
		t.Fatal("expected error for a non-object value")
	}
}

func TestSectionsOrder(t *testing.T) {
	t.Parallel()

	var p *Profile
	sections := p.Sections()
	if len(sections) != len(SectionOrder) {
		t.Fatalf("expected %d sections, got %d", len(SectionOrder), len(sections))
	}
	for i, s := range sections {
		if s.Name != SectionOrder[i] {
			t.Fatalf("position %d: expected %s, got %s", i, SectionOrder[i], s.Name)
		}
	}
}
