package matching

import (
	"fmt"
	"sort"
	"strings"
)

const (
	reasoningTop     = 3
	matchedSkillsTop = 10
)

type scoredSkill struct {
	skill      string
	percentage int
}

func (r Result) positive() []scoredSkill {
	out := make([]scoredSkill, 0, len(r.order))
	for _, skill := range r.order {
		if p := r.SkillBreakdown[skill].Percentage; p > 0 {
			out = append(out, scoredSkill{skill: skill, percentage: p})
		}
	}
	return out
}

// Reasoning summarizes a result in one line: the share of requirements with
// any evidence and the strongest matches.
func Reasoning(r Result) string {
	matched := r.positive()
	if len(matched) == 0 {
		return "No relevant skills found"
	}

	sort.SliceStable(matched, func(a, b int) bool {
		return matched[a].percentage > matched[b].percentage
	})

	top := make([]string, 0, reasoningTop)
	for _, s := range matched[:min(reasoningTop, len(matched))] {
		top = append(top, fmt.Sprintf("%s (%d%%)", s.skill, s.percentage))
	}

	coverage := roundHalfUp(float64(len(matched)) / float64(len(r.order)) * 100)

	return fmt.Sprintf("%d%% requirement coverage. Strongest: %s", coverage, strings.Join(top, ", "))
}

// MatchedSkills lists the requirements with any evidence, in requirement
// order, at most ten.
func MatchedSkills(r Result) []string {
	matched := r.positive()
	out := make([]string, 0, min(matchedSkillsTop, len(matched)))
	for _, s := range matched[:min(matchedSkillsTop, len(matched))] {
		out = append(out, s.skill)
	}
	return out
}
