// Package candidates loads candidate records and keeps ranked match results.
package candidates

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/spigell/cv-matcher/internal/profile"
	"github.com/spigell/cv-matcher/internal/schemas"
)

const (
	CandidateIDField    = "ID"
	CandidateEmailField = "Email"
)

// idNamespace scopes IDs derived from candidate content.
var idNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/spigell/cv-matcher/candidates"))

type Candidate struct {
	ID      string           `json:"id" yaml:"id"`
	Name    string           `json:"name,omitempty" yaml:"name"`
	Email   string           `json:"email,omitempty" yaml:"email"`
	CV      *profile.CV      `json:"cv,omitempty" yaml:"cv"`
	Profile *profile.Profile `json:"profile,omitempty" yaml:"profile"`
}

type file struct {
	Candidates []*Candidate `yaml:"candidates"`
}

// ResolvedProfile returns the explicit profile when one is set, otherwise the
// profile derived from the CV.
func (c *Candidate) ResolvedProfile() *profile.Profile {
	if c.Profile != nil && !c.Profile.IsEmpty() {
		return c.Profile
	}
	p := c.CV.ToProfile()
	return &p
}

// Specialty is the professional specialty of the CV, or the job title of the
// profile when there is no CV.
func (c *Candidate) Specialty() string {
	if c.CV != nil && c.CV.ProfessionalSpecialty != "" {
		return c.CV.ProfessionalSpecialty
	}
	if title := c.ResolvedProfile().JobTitle; title.Kind() == profile.KindText && title.Text() != "" {
		return title.Text()
	}
	return "Unspecified"
}

func (c *Candidate) GetStringField(name string) string {
	switch name {
	case CandidateIDField:
		return c.ID
	case CandidateEmailField:
		return c.Email
	default:
		return ""
	}
}

// fillFromCV copies identity fields missing on the candidate from its CV and
// derives an ID from the candidate content when none is known. The derived ID
// is stable across loads of the same entry.
func (c *Candidate) fillFromCV() {
	if c.CV != nil {
		if c.ID == "" {
			c.ID = c.CV.ID
		}
		if c.Name == "" {
			c.Name = c.CV.Name
		}
		if c.Email == "" {
			c.Email = c.CV.Email
		}
	}
	if strings.TrimSpace(c.ID) == "" {
		c.ID = c.contentID()
	}
}

func (c *Candidate) contentID() string {
	data, err := json.Marshal(struct {
		Name    string           `json:"name"`
		Email   string           `json:"email"`
		CV      *profile.CV      `json:"cv"`
		Profile *profile.Profile `json:"profile"`
	}{c.Name, c.Email, c.CV, c.Profile})
	if err != nil {
		return uuid.NewString()
	}
	return uuid.NewSHA1(idNamespace, data).String()
}

// Load reads a YAML or JSON candidates file. The document is validated against
// the candidates schema before decoding.
func Load(path string) ([]*Candidate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read candidates file: %w", err)
	}

	return Parse(data)
}

// Parse decodes a candidates document.
func Parse(data []byte) ([]*Candidate, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode candidates: %w", err)
	}
	if err := schemas.Validate(schemas.Candidates, raw); err != nil {
		return nil, err
	}

	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode candidates: %w", err)
	}

	seen := make(map[string]struct{}, len(f.Candidates))
	out := make([]*Candidate, 0, len(f.Candidates))
	for i, c := range f.Candidates {
		if c == nil {
			continue
		}
		c.fillFromCV()
		if _, dup := seen[c.ID]; dup {
			return nil, fmt.Errorf("candidate %d: duplicate id %q", i, c.ID)
		}
		seen[c.ID] = struct{}{}
		out = append(out, c)
	}

	return out, nil
}
