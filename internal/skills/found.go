package skills

import (
	"slices"
	"strings"

	"github.com/spigell/cv-matcher/internal/profile"
)

// Canonical maps common spellings of a skill to one lowercase form.
func Canonical(s string) string {
	x := strings.ToLower(strings.TrimSpace(s))
	switch x {
	case "node", "nodejs":
		return "node.js"
	case "postgres", "postgresql":
		return "postgresql"
	case "js":
		return "javascript"
	case "fullstack", "full-stack", "full stack":
		return "fullstack"
	case "front end":
		return "frontend"
	case "back end":
		return "backend"
	default:
		return x
	}
}

// FindInCV returns, in canonical form and without duplicates, the requested
// skills that a CV demonstrably mentions: either in its explicit skill lists
// or as a whole word in its summary and experience text.
func FindInCV(cv *profile.CV, requested []string) []string {
	if cv == nil {
		return []string{}
	}

	parts := make([]string, 0, 1+3*len(cv.Experience))
	if cv.Summary != "" {
		parts = append(parts, cv.Summary)
	}
	for _, exp := range cv.Experience {
		for _, s := range []string{exp.Position, exp.Company, exp.Description} {
			if s != "" {
				parts = append(parts, s)
			}
		}
	}
	fullText := strings.ToLower(strings.TrimSpace(strings.Join(parts, "\n")))

	explicit := make(map[string]struct{})
	for _, s := range cv.Skills.Flatten() {
		explicit[Canonical(s)] = struct{}{}
	}

	matched := make([]string, 0)
	add := func(skill string) {
		if !slices.Contains(matched, skill) {
			matched = append(matched, skill)
		}
	}

	for _, raw := range requested {
		req := Canonical(raw)
		if req == "" {
			continue
		}

		if _, ok := explicit[req]; ok {
			add(req)
			continue
		}

		if containsTerm(fullText, req) {
			add(req)
			continue
		}

		switch req {
		case "node.js":
			if _, ok := explicit["node"]; ok || strings.Contains(fullText, "node") {
				add(req)
			}
		case "javascript":
			if strings.Contains(fullText, " js ") {
				add(req)
			}
		}
	}

	return matched
}

// containsTerm reports whether term occurs in text. Plain alphanumeric terms
// must not be glued to other letters or digits; dotted terms match anywhere.
func containsTerm(text, term string) bool {
	if strings.Contains(term, ".") || !strings.ContainsFunc(term, isWordByte) {
		return strings.Contains(text, term)
	}

	for offset := 0; offset <= len(text); {
		idx := strings.Index(text[offset:], term)
		if idx < 0 {
			return false
		}
		start := offset + idx
		end := start + len(term)

		before := start == 0 || !isWordByte(rune(text[start-1]))
		after := end == len(text) || !isWordByte(rune(text[end]))
		if before && after {
			return true
		}
		offset = start + 1
	}
	return false
}

func isWordByte(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
}
