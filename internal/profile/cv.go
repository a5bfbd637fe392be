package profile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

const primarySkillsCount = 5

// techKeywords are looked up in the current role description when building
// its technologies list.
var techKeywords = []string{
	"javascript", "python", "java", "react", "node.js", "angular", "vue",
	"php", "ruby", "go", "rust", "swift", "kotlin", "typescript",
	"mongodb", "postgresql", "mysql", "redis", "aws", "azure", "docker",
}

// CV is a parsed résumé record as produced by the document parsing stage.
type CV struct {
	ID                    string       `json:"id,omitempty" yaml:"id"`
	Name                  string       `json:"name,omitempty" yaml:"name"`
	Email                 string       `json:"email,omitempty" yaml:"email"`
	ProfessionalSpecialty string       `json:"professional_specialty,omitempty" yaml:"professional_specialty"`
	TotalYearsExperience  *float64     `json:"total_years_experience,omitempty" yaml:"total_years_experience"`
	Summary               string       `json:"summary,omitempty" yaml:"summary"`
	Skills                SkillBuckets `json:"skills,omitempty" yaml:"skills"`
	Experience            []Experience `json:"experience,omitempty" yaml:"experience"`
	Education             Content      `json:"education,omitempty" yaml:"education"`
	CoursesCompleted      Content      `json:"courses_completed,omitempty" yaml:"courses_completed"`
}

// Experience is one job entry of a CV.
type Experience struct {
	Position    string `json:"position,omitempty" yaml:"position"`
	Company     string `json:"company,omitempty" yaml:"company"`
	Duration    string `json:"duration,omitempty" yaml:"duration"`
	Description string `json:"description,omitempty" yaml:"description"`
	Current     bool   `json:"current,omitempty" yaml:"current"`
}

// SkillBucket is a named group of skills, e.g. "programming_languages".
type SkillBucket struct {
	Name   string
	Skills []string
}

// SkillBuckets keeps skill groups in the order they appear in the source
// document, which decides what ends up in the primary skills section.
type SkillBuckets []SkillBucket

// Flatten returns all non-empty skills in bucket order.
func (b SkillBuckets) Flatten() []string {
	var all []string
	for _, bucket := range b {
		for _, s := range bucket.Skills {
			if strings.TrimSpace(s) == "" {
				continue
			}
			all = append(all, s)
		}
	}
	return all
}

func (b *SkillBuckets) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*b = nil
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("skills: expected an object, got %v", tok)
	}

	var buckets SkillBuckets
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := keyTok.(string)

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		buckets = append(buckets, SkillBucket{Name: key, Skills: stringsFromJSON(raw)})
	}

	*b = buckets
	return nil
}

func (b SkillBuckets) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, bucket := range b {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := marshalNoEscape(bucket.Name)
		if err != nil {
			return nil, err
		}
		value, err := marshalNoEscape(bucket.Skills)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (b *SkillBuckets) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("skills: expected a mapping at line %d", node.Line)
	}

	var buckets SkillBuckets
	for i := 0; i+1 < len(node.Content); i += 2 {
		var values []any
		if err := node.Content[i+1].Decode(&values); err != nil {
			values = nil
		}
		buckets = append(buckets, SkillBucket{
			Name:   node.Content[i].Value,
			Skills: stringsOnly(values),
		})
	}

	*b = buckets
	return nil
}

func stringsFromJSON(raw json.RawMessage) []string {
	var values []any
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil
	}
	return stringsOnly(values)
}

func stringsOnly(values []any) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

type currentRoleRecord struct {
	Title        string   `json:"title"`
	Duration     string   `json:"duration"`
	Technologies []string `json:"technologies"`
	Current      bool     `json:"current"`
}

// CurrentExperience returns the experience flagged as current, falling back
// to the first entry. ok is false when the CV lists no experience.
func (cv *CV) CurrentExperience() (Experience, bool) {
	if cv == nil || len(cv.Experience) == 0 {
		return Experience{}, false
	}
	for _, exp := range cv.Experience {
		if exp.Current {
			return exp, true
		}
	}
	return cv.Experience[0], true
}

// ToProfile converts the CV into a sectioned profile.
func (cv *CV) ToProfile() Profile {
	if cv == nil {
		return Profile{}
	}

	current, _ := cv.CurrentExperience()

	jobTitle := current.Position
	if jobTitle == "" {
		jobTitle = cv.ProfessionalSpecialty
	}

	allSkills := cv.Skills.Flatten()
	primary := allSkills
	var additional []string
	if len(allSkills) > primarySkillsCount {
		primary = allSkills[:primarySkillsCount]
		additional = allSkills[primarySkillsCount:]
	}

	recent := cv.Experience
	if len(recent) > 3 {
		recent = recent[:3]
	}
	var previous []Experience
	if len(cv.Experience) > 1 {
		previous = cv.Experience[1:]
	}

	return Profile{
		JobTitle:      Text(jobTitle),
		Summary:       Text(cv.Summary),
		PrimarySkills: Strings(primary...),
		CurrentRole: MustObject(currentRoleRecord{
			Title:        current.Position,
			Duration:     current.Duration,
			Technologies: ExtractTechnologies(current.Description),
			Current:      true,
		}),
		RecentExperience: experienceList(recent),
		PreviousRoles:    experienceList(previous),
		AdditionalSkills: Strings(additional...),
		Education:        cv.Education,
		Certifications:   cv.CoursesCompleted,
	}
}

// ExtractTechnologies returns the known technology keywords contained in text.
func ExtractTechnologies(text string) []string {
	lower := strings.ToLower(text)
	found := make([]string, 0)
	for _, tech := range techKeywords {
		if strings.Contains(lower, tech) {
			found = append(found, tech)
		}
	}
	return found
}

func experienceList(items []Experience) Content {
	out := make([]Content, 0, len(items))
	for _, exp := range items {
		out = append(out, MustObject(exp))
	}
	return List(out...)
}
