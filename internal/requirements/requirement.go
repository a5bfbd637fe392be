// Package requirements describes weighted job requirements and parses them
// out of free-text job descriptions.
package requirements

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

const (
	// MustHaveThreshold is the importance from which a requirement is a must-have.
	MustHaveThreshold = 0.9

	DefaultImportance = 1.0
	DefaultMinLevel   = 0.5
)

// Requirement is one weighted job criterion.
type Requirement struct {
	Skill      string  `json:"skill" yaml:"skill" mapstructure:"skill" validate:"required"`
	Importance float64 `json:"importance,omitempty" yaml:"importance" mapstructure:"importance" validate:"gte=0,lte=1"`
	MinLevel   float64 `json:"minLevel,omitempty" yaml:"minLevel" mapstructure:"minLevel" validate:"gte=0,lte=1"`
}

// Key is the lowercase skill name used for lookups.
func (r Requirement) Key() string {
	return strings.ToLower(r.Skill)
}

// Weight returns the importance, treating an unset (zero) value as 1.0.
func (r Requirement) Weight() float64 {
	if r.Importance == 0 {
		return DefaultImportance
	}
	return r.Importance
}

// Level returns the minimum proficiency, treating an unset (zero) value as 0.5.
func (r Requirement) Level() float64 {
	if r.MinLevel == 0 {
		return DefaultMinLevel
	}
	return r.MinLevel
}

func (r Requirement) IsMustHave() bool {
	return r.Weight() >= MustHaveThreshold
}

// List is an ordered set of requirements.
type List []Requirement

// Skills returns the requirement skill names in order.
func (l List) Skills() []string {
	out := make([]string, 0, len(l))
	for _, r := range l {
		out = append(out, r.Skill)
	}
	return out
}

// MustHaves returns the requirements at or above MustHaveThreshold.
func (l List) MustHaves() List {
	var out List
	for _, r := range l {
		if r.IsMustHave() {
			out = append(out, r)
		}
	}
	return out
}

// Contains reports whether a requirement with the given skill exists.
func (l List) Contains(skill string) bool {
	for _, r := range l {
		if r.Skill == skill {
			return true
		}
	}
	return false
}

// Validate checks every row: a skill is required, importance and minLevel
// must lie in [0,1].
func (l List) Validate() error {
	validate := validator.New()
	for i, r := range l {
		if err := validate.Struct(r); err != nil {
			return fmt.Errorf("requirement %d (%q): %w", i, r.Skill, err)
		}
	}
	return nil
}
