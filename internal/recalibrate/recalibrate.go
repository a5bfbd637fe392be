// Package recalibrate corrects externally produced candidate scores with
// deterministic must-have penalties and requirement coverage scaling.
package recalibrate

import (
	"fmt"
	"math"
	"strings"

	"github.com/spigell/cv-matcher/internal/ai"
	"github.com/spigell/cv-matcher/internal/requirements"
)

const (
	penaltyPerMissing = 15
	maxPenalty        = 40
	missingMustCap    = 49
	noMatchesCap      = 55
	coverageBlend     = 0.2
	matchedSkillsMax  = 10

	defaultRationale = "AI analysis result"
)

// Result is the corrected score.
type Result struct {
	Score         int      `json:"score"`
	Rationale     string   `json:"rationale"`
	MatchedSkills []string `json:"matched_skills"`
	MissingMust   int      `json:"missing_must"`
}

// Recalibrate adjusts the raw assessment against reqs, counting both the
// skills the assessment reports and the skills found deterministically in the
// candidate's CV as matched. A nil assessment is treated as a zero score.
func Recalibrate(assessment *ai.Assessment, reqs requirements.List, found []string) Result {
	if assessment == nil {
		assessment = &ai.Assessment{}
	}

	matched := make(map[string]struct{}, len(assessment.MatchedSkills)+len(found))
	for _, s := range assessment.MatchedSkills {
		matched[strings.ToLower(s)] = struct{}{}
	}
	for _, s := range found {
		matched[strings.ToLower(s)] = struct{}{}
	}

	missing := 0
	for _, req := range reqs.MustHaves() {
		if !covered(matched, req.Key()) {
			missing++
		}
	}

	raw := assessment.Score
	if math.IsNaN(raw) || math.IsInf(raw, 0) {
		raw = 0
	}

	penalty := min(maxPenalty, missing*penaltyPerMissing)
	score := clamp(roundHalfUp(raw-float64(penalty)), 0, 100)

	rationale := assessment.Rationale
	if missing > 0 {
		score = min(score, missingMustCap)
		if rationale == "" {
			rationale = defaultRationale
		}
		rationale += fmt.Sprintf(" Missing must-have(s): %d.", missing)
	}

	if cov, ok := assessment.Coverage(); ok && !math.IsNaN(cov) {
		score = roundHalfUp((1-coverageBlend)*float64(score) + coverageBlend*math.Max(0, math.Min(100, cov)))
	}

	if len(matched) == 0 && len(reqs) > 0 {
		score = min(score, noMatchesCap)
	}

	if len(reqs) > 0 {
		ratio := math.Max(0, math.Min(1, float64(len(matched))/float64(len(reqs))))
		score = roundHalfUp(float64(score) * (0.5 + 0.5*ratio))
	}

	if rationale == "" {
		rationale = defaultRationale
	}

	skills := assessment.MatchedSkills
	if len(skills) > matchedSkillsMax {
		skills = skills[:matchedSkillsMax]
	}

	return Result{
		Score:         score,
		Rationale:     rationale,
		MatchedSkills: append([]string{}, skills...),
		MissingMust:   missing,
	}
}

// covered reports whether any matched skill equals key, contains it or is
// contained in it, so "node" and "node.js" match each other.
func covered(matched map[string]struct{}, key string) bool {
	for ms := range matched {
		if ms == key || strings.Contains(ms, key) || strings.Contains(key, ms) {
			return true
		}
	}
	return false
}

func clamp(v, lo, hi int) int {
	return max(lo, min(hi, v))
}

func roundHalfUp(x float64) int {
	return int(math.Floor(x + 0.5))
}
