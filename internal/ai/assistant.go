package ai

import (
	"context"

	"github.com/spigell/cv-matcher/internal/requirements"
)

// Subscores are the rubric components reported by the model, each 0-100.
type Subscores struct {
	MustHaveCoverage            float64  `json:"must_have_coverage"`
	OverallRequirementsCoverage *float64 `json:"overall_requirements_coverage,omitempty"`
	SeniorityFit                float64  `json:"seniority_fit"`
	DomainAlignment             float64  `json:"domain_alignment"`
	Recency                     float64  `json:"recency"`
	PenaltyApplied              float64  `json:"penalty_applied"`
}

// Assessment is a model's judgment of one candidate.
type Assessment struct {
	Score         float64    `json:"score"`
	Rationale     string     `json:"rationale"`
	MatchedSkills []string   `json:"matched_skills"`
	Risks         []string   `json:"risks"`
	Seniority     string     `json:"seniority,omitempty"`
	Subscores     *Subscores `json:"subscores,omitempty"`
	Raw           string     `json:"-"`
}

// Coverage returns the overall requirements coverage subscore when the model
// reported one.
func (a *Assessment) Coverage() (float64, bool) {
	if a == nil || a.Subscores == nil || a.Subscores.OverallRequirementsCoverage == nil {
		return 0, false
	}
	return *a.Subscores.OverallRequirementsCoverage, true
}

// Request carries what the model needs to score a candidate.
type Request struct {
	CandidateID      string
	Summary          string
	RequirementsText string
	Requirements     requirements.List
}

type Scorer interface {
	Evaluate(ctx context.Context, req Request) (*Assessment, error)
}
