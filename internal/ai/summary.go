package ai

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/spigell/cv-matcher/internal/profile"
)

const (
	summarySkillsLimit      = 25
	summaryExperienceLimit  = 3
	summaryDescriptionRunes = 180
)

type educationEntry struct {
	Degree      string `json:"degree"`
	Field       string `json:"field"`
	Institution string `json:"institution"`
}

// Summary renders a compact plain-text description of a CV for prompts.
func Summary(cv *profile.CV) string {
	if cv == nil {
		return "Name: Unknown"
	}

	name := cv.Name
	if name == "" {
		name = "Unknown"
	}

	lines := []string{"Name: " + name}
	if cv.ProfessionalSpecialty != "" {
		lines = append(lines, "Specialty: "+cv.ProfessionalSpecialty)
	}
	if cv.TotalYearsExperience != nil {
		lines = append(lines, fmt.Sprintf("Total Experience: %s years", strconv.FormatFloat(*cv.TotalYearsExperience, 'f', -1, 64)))
	}
	if cv.Summary != "" {
		lines = append(lines, "Summary: "+cv.Summary)
	}

	if edu := firstEducation(cv.Education); edu != "" {
		lines = append(lines, "Education: "+edu)
	}

	seen := make(map[string]struct{})
	var uniq []string
	for _, s := range cv.Skills.Flatten() {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		uniq = append(uniq, s)
		if len(uniq) == summarySkillsLimit {
			break
		}
	}
	if len(uniq) > 0 {
		lines = append(lines, "Skills: "+strings.Join(uniq, ", "))
	}

	var parts []string
	for _, exp := range cv.Experience[:min(summaryExperienceLimit, len(cv.Experience))] {
		role := joinNonEmpty(" @ ", exp.Position, exp.Company)
		parts = append(parts, role+": "+truncateRunes(exp.Description, summaryDescriptionRunes))
	}
	if len(parts) > 0 {
		lines = append(lines, "Experience: "+strings.Join(parts, " | "))
	}

	return strings.Join(lines, "\n")
}

func firstEducation(c profile.Content) string {
	if c.Kind() == profile.KindList {
		items := c.Items()
		if len(items) == 0 {
			return ""
		}
		c = items[0]
	}

	switch c.Kind() {
	case profile.KindObject:
		var entry educationEntry
		if err := json.Unmarshal([]byte(c.Text()), &entry); err != nil {
			return ""
		}
		return joinNonEmpty(", ", entry.Degree, entry.Field, entry.Institution)
	case profile.KindText:
		return strings.TrimSpace(c.Text())
	default:
		return ""
	}
}

func joinNonEmpty(sep string, values ...string) string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return strings.Join(out, sep)
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
