// Package matching scores aggregated candidate skills against weighted job
// requirements and produces an explainable, bounded match percentage.
package matching

import (
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/cv-matcher/internal/requirements"
	"github.com/spigell/cv-matcher/internal/skills"
)

const (
	experienceBonusPerYear = 0.02
	maxExperienceBonus     = 0.10
	belowLevelMultiplier   = 0.7

	roleSecondaryCap  = 0.6
	skillSecondaryCap = 0.7

	rolePrimacyFactor  = 0.9
	rolePrimacyCeiling = 0.9

	primaryCoverageThreshold = 0.7
	primaryCoverageCeiling   = 0.92

	imperfectCeiling = 98
	smallSetSize     = 3
	smallSetCeiling  = 95
)

// Breakdown explains the contribution of one requirement.
type Breakdown struct {
	Score           float64         `json:"score"`
	MaxScore        float64         `json:"maxScore"`
	Percentage      int             `json:"percentage"`
	CandidateWeight float64         `json:"candidateWeight"`
	Proficiency     float64         `json:"proficiency"`
	Sources         []skills.Source `json:"sources"`
}

// Result is the outcome of scoring one candidate.
type Result struct {
	OverallScore     int                  `json:"overallScore"`
	SkillBreakdown   map[string]Breakdown `json:"skillBreakdown"`
	TotalScore       float64              `json:"totalScore"`
	MaxPossibleScore float64              `json:"maxPossibleScore"`

	order []string
}

// Skills returns the breakdown keys in requirement order.
func (r Result) Skills() []string {
	return append([]string(nil), r.order...)
}

func (r *Result) put(skill string, b Breakdown) {
	if r.SkillBreakdown == nil {
		r.SkillBreakdown = make(map[string]Breakdown)
	}
	if _, ok := r.SkillBreakdown[skill]; !ok {
		r.order = append(r.order, skill)
	}
	r.SkillBreakdown[skill] = b
}

// Scorer computes match results. It keeps no state between calls and is safe
// for concurrent use.
type Scorer struct {
	cfg    *skills.Config
	logger *zap.Logger
}

// NewScorer returns a scorer using cfg. A nil cfg uses skills.DefaultConfig and
// a nil logger disables debug tracing.
func NewScorer(cfg *skills.Config, logger *zap.Logger) *Scorer {
	if cfg == nil {
		cfg = skills.DefaultConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scorer{cfg: cfg, logger: logger}
}

// Score rates the candidate skill map against reqs. The overall score is an
// integer in [0,100]; reaching 100 requires every requirement to be fully met
// with evidence from a primary section.
func (s *Scorer) Score(candidate *skills.Map, reqs requirements.List) Result {
	result := Result{SkillBreakdown: make(map[string]Breakdown, len(reqs))}

	for _, req := range reqs {
		importance := req.Weight()
		minLevel := req.Level()
		result.MaxPossibleScore += importance

		rec, ok := candidate.Get(req.Key())
		if !ok {
			result.put(req.Skill, Breakdown{MaxScore: importance, Sources: []skills.Source{}})
			s.logger.Debug("requirement not found in candidate",
				zap.String("requirement", req.Skill),
				zap.Float64("importance", importance),
			)
			continue
		}

		inPrimary := s.hasPrimarySource(rec)

		base := 1 - math.Exp(-math.Max(0, rec.TotalWeight))
		levelMultiplier := 1.0
		if rec.MaxProficiency < minLevel {
			levelMultiplier = belowLevelMultiplier
		}
		expBonus := math.Min(math.Max(rec.YearsExperience, 0)*experienceBonusPerYear, maxExperienceBonus)

		skillScore := base*levelMultiplier + expBonus

		if !inPrimary {
			if s.cfg.IsRoleKeyword(req.Key()) {
				skillScore = math.Min(skillScore, roleSecondaryCap)
			} else {
				skillScore = math.Min(skillScore, skillSecondaryCap)
			}
		}

		skillScore = math.Min(skillScore, 1.0) * importance
		result.TotalScore += skillScore

		result.put(req.Skill, Breakdown{
			Score:           skillScore,
			MaxScore:        importance,
			Percentage:      roundHalfUp(skillScore / importance * 100),
			CandidateWeight: rec.TotalWeight,
			Proficiency:     rec.MaxProficiency,
			Sources:         rec.Sources,
		})

		s.logger.Debug("requirement scored",
			zap.String("requirement", req.Skill),
			zap.Float64("importance", importance),
			zap.Float64("min_level", minLevel),
			zap.Float64("candidate_weight", rec.TotalWeight),
			zap.Float64("proficiency", rec.MaxProficiency),
			zap.Float64("years", rec.YearsExperience),
			zap.Bool("primary", inPrimary),
			zap.Float64("score", skillScore),
		)
	}

	overall := 0.0
	if result.MaxPossibleScore > 0 {
		overall = result.TotalScore / result.MaxPossibleScore
	}

	overall = s.applyRolePrimacyCap(candidate, reqs, overall)
	overall = s.applyPrimaryCoverageCap(candidate, reqs, overall)

	final := int(math.Floor(overall * 100))
	if !s.allPrimaryPerfect(candidate, reqs, result) {
		final = min(final, imperfectCeiling)
	}
	if len(reqs) < smallSetSize {
		final = min(final, smallSetCeiling)
	}

	result.OverallScore = max(0, min(100, final))
	return result
}

// applyRolePrimacyCap lowers the score when broad role keywords are requested
// but none of them is backed by a primary section.
func (s *Scorer) applyRolePrimacyCap(candidate *skills.Map, reqs requirements.List, overall float64) float64 {
	var roles []string
	for _, req := range reqs {
		if s.cfg.IsRoleKeyword(req.Key()) {
			roles = append(roles, req.Skill)
		}
	}
	if len(roles) == 0 {
		return overall
	}

	for _, role := range roles {
		if s.roleInPrimary(candidate, role) {
			return overall
		}
	}

	capped := math.Min(rolePrimacyFactor*overall, rolePrimacyCeiling)
	s.logger.Debug("role primacy cap applied",
		zap.Strings("requested_roles", roles),
		zap.Float64("overall", capped),
	)
	return capped
}

// roleInPrimary finds the first candidate skill that spells the same role
// (ignoring spaces and hyphens) and reports whether it has primary evidence.
func (s *Scorer) roleInPrimary(candidate *skills.Map, role string) bool {
	want := normalizeRole(role)
	for _, rec := range candidate.Records() {
		if normalizeRole(rec.Name) != want {
			continue
		}
		return s.hasPrimarySource(rec)
	}
	return false
}

func (s *Scorer) applyPrimaryCoverageCap(candidate *skills.Map, reqs requirements.List, overall float64) float64 {
	if len(reqs) == 0 {
		return overall
	}

	hits := 0
	for _, req := range reqs {
		if rec, ok := candidate.Get(req.Key()); ok && s.hasPrimarySource(rec) {
			hits++
		}
	}

	coverage := float64(hits) / float64(len(reqs))
	if coverage >= primaryCoverageThreshold {
		return overall
	}

	capped := math.Min(overall, primaryCoverageCeiling)
	s.logger.Debug("primary coverage cap applied",
		zap.Float64("coverage", coverage),
		zap.Float64("overall", capped),
	)
	return capped
}

func (s *Scorer) allPrimaryPerfect(candidate *skills.Map, reqs requirements.List, result Result) bool {
	if len(reqs) == 0 {
		return false
	}
	for _, req := range reqs {
		b, ok := result.SkillBreakdown[req.Skill]
		if !ok || b.Percentage != 100 {
			return false
		}
		rec, ok := candidate.Get(req.Key())
		if !ok || !s.hasPrimarySource(rec) {
			return false
		}
	}
	return true
}

func (s *Scorer) hasPrimarySource(rec skills.Record) bool {
	for _, src := range rec.Sources {
		if s.cfg.IsPrimary(src.Section) {
			return true
		}
	}
	return false
}

func normalizeRole(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '-' || isSpace(r) {
			return -1
		}
		return r
	}, strings.ToLower(s))
}

func isSpace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r', '\f', '\v':
		return true
	}
	return false
}

// roundHalfUp rounds halves towards positive infinity.
func roundHalfUp(x float64) int {
	return int(math.Floor(x + 0.5))
}
