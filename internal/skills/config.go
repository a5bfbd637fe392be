// Package skills turns candidate profiles into aggregated skill records.
//
// Extraction is keyword-in-context: every vocabulary keyword contained in a
// section is turned into a mention whose proficiency, context weight and years
// of experience are inferred from a fixed window of text around it. Mentions
// are then folded into one record per skill across all sections.
package skills

import (
	"maps"
	"slices"
	"strings"

	"github.com/spigell/cv-matcher/internal/profile"
)

const (
	// ContextRadius is the number of characters kept on each side of a keyword.
	ContextRadius = 50

	defaultProficiency   = 0.6
	defaultContextWeight = 0.4
	currentRoleBoost     = 1.2
)

// Level is an ordered keyword group with the weight it assigns.
// The first level whose keyword appears in a context wins.
type Level struct {
	Name     string
	Weight   float64
	Keywords []string
}

// Config holds the read-only tables used by extraction, aggregation and
// scoring. Build it once with DefaultConfig and share it; accessors return
// copies so callers cannot mutate it.
type Config struct {
	vocabulary       []string
	roleKeywords     []string
	sectionWeights   map[profile.SectionName]float64
	primarySections  []profile.SectionName
	proficiency      []Level
	contextModifiers []Level
}

// Option customizes a Config at construction time.
type Option func(*Config)

// WithVocabulary replaces the skill keyword vocabulary. Keywords are lowercased;
// blank ones are dropped. An empty list keeps the default vocabulary.
func WithVocabulary(keywords ...string) Option {
	return func(c *Config) {
		if cleaned := normalizeList(keywords); len(cleaned) > 0 {
			c.vocabulary = cleaned
		}
	}
}

// WithRoleKeywords replaces the set of broad role keywords. An empty list keeps
// the default set.
func WithRoleKeywords(keywords ...string) Option {
	return func(c *Config) {
		if cleaned := normalizeList(keywords); len(cleaned) > 0 {
			c.roleKeywords = cleaned
		}
	}
}

// DefaultConfig returns the documented weight tables, optionally customized.
func DefaultConfig(opts ...Option) *Config {
	c := &Config{
		vocabulary: []string{
			"javascript", "python", "java", "react", "node.js", "angular", "vue",
			"backend", "frontend", "fullstack", "full-stack", "full stack", "devops", "aws",
			"docker", "kubernetes", "sql", "mongodb", "postgresql", "redis",
			"machine learning", "ai", "data science", "analytics",
		},
		roleKeywords: []string{
			"fullstack", "full-stack", "full stack", "backend", "frontend", "devops",
			"data science", "machine learning",
		},
		sectionWeights: map[profile.SectionName]float64{
			profile.SectionJobTitle:         1.0,
			profile.SectionSummary:          0.9,
			profile.SectionPrimarySkills:    0.8,
			profile.SectionCurrentRole:      0.8,
			profile.SectionRecentExperience: 0.7,
			profile.SectionPreviousRoles:    0.6,
			profile.SectionAdditionalSkills: 0.4,
			profile.SectionEducation:        0.3,
			profile.SectionCertifications:   0.5,
		},
		primarySections: []profile.SectionName{
			profile.SectionJobTitle,
			profile.SectionCurrentRole,
			profile.SectionPrimarySkills,
			profile.SectionSummary,
		},
		proficiency: []Level{
			{Name: "expert", Weight: 1.0, Keywords: []string{"expert", "senior", "lead", "architect", "specialist"}},
			{Name: "advanced", Weight: 0.85, Keywords: []string{"advanced", "proficient", "skilled", "experienced"}},
			{Name: "intermediate", Weight: 0.6, Keywords: []string{"intermediate", "competent", "working knowledge"}},
			{Name: "beginner", Weight: 0.4, Keywords: []string{"beginner", "junior", "entry-level", "trainee"}},
			{Name: "familiar", Weight: 0.3, Keywords: []string{"familiar", "exposure", "some experience"}},
			{Name: "basic", Weight: 0.2, Keywords: []string{"basic", "fundamental", "introductory"}},
		},
		contextModifiers: []Level{
			{Name: "primary", Weight: 1.0, Keywords: []string{"primary"}},
			{Name: "main", Weight: 0.95, Keywords: []string{"main"}},
			{Name: "specialized", Weight: 0.9, Keywords: []string{"specialized"}},
			{Name: "extensive", Weight: 0.85, Keywords: []string{"extensive"}},
			{Name: "some", Weight: 0.4, Keywords: []string{"some"}},
			{Name: "basic", Weight: 0.3, Keywords: []string{"basic"}},
			{Name: "transitioning", Weight: 0.6, Keywords: []string{"transitioning"}},
			{Name: "learning", Weight: 0.3, Keywords: []string{"learning"}},
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Vocabulary returns a copy of the skill keywords.
func (c *Config) Vocabulary() []string { return slices.Clone(c.vocabulary) }

// RoleKeywords returns a copy of the role keywords.
func (c *Config) RoleKeywords() []string { return slices.Clone(c.roleKeywords) }

// SectionWeights returns a copy of the per-section weights.
func (c *Config) SectionWeights() map[profile.SectionName]float64 {
	return maps.Clone(c.sectionWeights)
}

// SectionWeight returns the weight of a section, 0 for unknown sections.
func (c *Config) SectionWeight(name profile.SectionName) float64 {
	return c.sectionWeights[name]
}

// IsPrimary reports whether a section counts as primary evidence.
func (c *Config) IsPrimary(name profile.SectionName) bool {
	return slices.Contains(c.primarySections, name)
}

// IsRoleKeyword reports whether a lowercase skill name is a broad role keyword.
func (c *Config) IsRoleKeyword(skill string) bool {
	return slices.Contains(c.roleKeywords, strings.ToLower(skill))
}

// Proficiency returns the proficiency implied by a context window.
func (c *Config) Proficiency(context string) float64 {
	return firstLevel(c.proficiency, context, defaultProficiency)
}

// ContextWeight returns the relevance modifier implied by a context window.
func (c *Config) ContextWeight(context string) float64 {
	return firstLevel(c.contextModifiers, context, defaultContextWeight)
}

func firstLevel(levels []Level, context string, fallback float64) float64 {
	lower := strings.ToLower(context)
	for _, level := range levels {
		for _, kw := range level.Keywords {
			if strings.Contains(lower, kw) {
				return level.Weight
			}
		}
	}
	return fallback
}

func normalizeList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v == "" || slices.Contains(out, v) {
			continue
		}
		out = append(out, v)
	}
	return out
}
