package requirements

import (
	"math"
	"slices"
	"strings"
)

const (
	defaultParsedMinLevel = 0.6
	seniorityBoost        = 0.1
)

type weighted struct {
	key    string
	weight float64
}

var skillImportance = []weighted{
	// frontend
	{"react", 1.0}, {"vue", 1.0}, {"angular", 1.0}, {"javascript", 0.9},
	{"html", 0.7}, {"css", 0.7}, {"typescript", 0.8},
	// backend
	{"node.js", 1.0}, {"python", 1.0}, {"java", 1.0}, {"php", 1.0},
	{"express", 0.8}, {"django", 0.8}, {"spring", 0.8},
	// databases
	{"mongodb", 0.8}, {"postgresql", 0.8}, {"mysql", 0.7}, {"redis", 0.6},
	// cloud and devops
	{"aws", 0.9}, {"docker", 0.8}, {"kubernetes", 0.7}, {"azure", 0.8},
	// full stack
	{"fullstack", 1.0}, {"full-stack", 1.0}, {"full stack", 1.0},
}

var proficiencyLevels = []weighted{
	{"senior", 0.8}, {"expert", 0.9}, {"advanced", 0.8},
	{"intermediate", 0.6}, {"junior", 0.4}, {"entry", 0.3},
}

var roleTerms = []string{"full stack", "full-stack", "fullstack", "frontend", "front end", "backend", "back end"}

// Parse extracts structured requirements from a free-text job description.
//
// Known skills found in the text get their table importance and a minimum
// level driven by seniority words. When the text only names a broad role
// (full stack, frontend, backend) and fewer than three concrete technologies,
// representative technologies for that role are added.
func Parse(text string) List {
	lower := strings.ToLower(text)
	reqs := make(List, 0)

	for _, skill := range skillImportance {
		if !strings.Contains(lower, skill.key) {
			continue
		}

		importance := skill.weight
		minLevel := defaultParsedMinLevel
		for _, level := range proficiencyLevels {
			if !strings.Contains(lower, level.key) {
				continue
			}
			minLevel = level.weight
			if level.key == "senior" || level.key == "expert" {
				importance = min(1.0, math.Round((importance+seniorityBoost)*100)/100)
			}
		}

		reqs = append(reqs, Requirement{Skill: skill.key, Importance: importance, MinLevel: minLevel})
	}

	hasFullStack := containsAny(lower, "full stack", "full-stack", "fullstack")
	hasFrontend := containsAny(lower, "front end", "frontend")
	hasBackend := containsAny(lower, "back end", "backend")

	explicit := 0
	for _, r := range reqs {
		if !slices.Contains(roleTerms, r.Skill) {
			explicit++
		}
	}

	if (hasFullStack || hasFrontend || hasBackend) && explicit < 3 {
		ensure := func(skill string, importance float64) {
			if !reqs.Contains(skill) {
				reqs = append(reqs, Requirement{Skill: skill, Importance: importance, MinLevel: defaultParsedMinLevel})
			}
		}

		if hasFullStack || hasFrontend {
			ensure("react", 0.9)
			ensure("javascript", 0.85)
			ensure("html", 0.6)
			ensure("css", 0.6)
			ensure("typescript", 0.7)
		}

		if hasFullStack || hasBackend {
			ensure("node.js", 0.9)
			ensure("express", 0.7)
			ensure("postgresql", 0.7)
			ensure("mongodb", 0.7)
		}

		if hasFullStack {
			ensure("docker", 0.6)
			ensure("aws", 0.6)
		}
	}

	return reqs
}

func containsAny(s string, substrs ...string) bool {
	for _, sub := range substrs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
