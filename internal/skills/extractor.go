package skills

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/spigell/cv-matcher/internal/profile"
)

var yearsPattern = regexp.MustCompile(`(?i)(\d+)\s*(?:years?|yrs?)`)

// Mention is a single keyword occurrence found in a profile section.
type Mention struct {
	Name            string
	Weight          float64
	Context         string
	Proficiency     float64
	YearsExperience float64
}

// Extractor finds skill mentions in section content.
type Extractor struct {
	cfg *Config
}

// NewExtractor returns an extractor bound to cfg. A nil cfg uses DefaultConfig.
func NewExtractor(cfg *Config) *Extractor {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Extractor{cfg: cfg}
}

// Extract returns the mentions found in one section. It never fails; content
// without keywords yields no mentions.
func (e *Extractor) Extract(section profile.SectionName, content profile.Content) []Mention {
	switch content.Kind() {
	case profile.KindText:
		return e.analyzeText(content.Text())
	case profile.KindObject:
		return e.analyzeObject(section, content)
	case profile.KindList:
		var mentions []Mention
		for _, item := range content.Items() {
			mentions = append(mentions, e.Extract(section, item)...)
		}
		return mentions
	default:
		return nil
	}
}

func (e *Extractor) analyzeText(text string) []Mention {
	if text == "" {
		return nil
	}

	runes := []rune(text)
	lower := lowerRunes(runes)
	lowerText := string(lower)

	var mentions []Mention
	for _, skill := range e.cfg.vocabulary {
		if !strings.Contains(lowerText, skill) {
			continue
		}

		context := contextWindow(runes, lower, skill)
		mentions = append(mentions, Mention{
			Name:            skill,
			Weight:          e.cfg.ContextWeight(context),
			Context:         context,
			Proficiency:     e.cfg.Proficiency(context),
			YearsExperience: yearsFromContext(context),
		})
	}
	return mentions
}

func (e *Extractor) analyzeObject(section profile.SectionName, content profile.Content) []Mention {
	role := content.Role()

	multiplier := 1.0
	if role.Current || section == profile.SectionCurrentRole {
		multiplier = currentRoleBoost
	}

	mentions := e.analyzeText(strings.ToLower(content.Text()))
	for i := range mentions {
		mentions[i].Weight *= multiplier
		mentions[i].YearsExperience = max(mentions[i].YearsExperience, role.Years)
	}
	return mentions
}

// contextWindow returns up to ContextRadius runes on each side of the first
// occurrence of skill. lower must be the rune-wise lowercase of runes.
func contextWindow(runes, lower []rune, skill string) string {
	needle := []rune(skill)
	idx := indexRunes(lower, needle)
	if idx < 0 {
		return string(runes)
	}

	start := max(0, idx-ContextRadius)
	end := min(len(runes), idx+len(needle)+ContextRadius)
	return string(runes[start:end])
}

func yearsFromContext(context string) float64 {
	match := yearsPattern.FindStringSubmatch(context)
	if match == nil {
		return 0
	}
	years, err := strconv.ParseFloat(match[1], 64)
	if err != nil {
		return 0
	}
	return years
}

// lowerRunes lowercases rune by rune so indexes stay aligned with the input.
func lowerRunes(runes []rune) []rune {
	out := make([]rune, len(runes))
	for i, r := range runes {
		out[i] = unicode.ToLower(r)
	}
	return out
}

func indexRunes(haystack, needle []rune) int {
	if len(needle) == 0 {
		return 0
	}
outer:
	for i := 0; i+len(needle) <= len(haystack); i++ {
		for j, r := range needle {
			if haystack[i+j] != r {
				continue outer
			}
		}
		return i
	}
	return -1
}
