package filtering

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/cv-matcher/internal/ai"
	"github.com/spigell/cv-matcher/internal/candidates"
	"github.com/spigell/cv-matcher/internal/logger"
	"github.com/spigell/cv-matcher/internal/recalibrate"
	"github.com/spigell/cv-matcher/internal/skills"
	"github.com/spigell/cv-matcher/internal/utils"
)

const (
	DefaultAITimeout = 30 * time.Second
	DefaultAIDelay   = 500 * time.Millisecond
)

type aiRescoreFilter struct {
	disabled bool
	reason   string
	config   *AIConfig
}

// NewAIRescore creates the step that asks the AI scorer about every candidate
// and replaces the match score with the recalibrated AI score.
func NewAIRescore() Filter {
	return &aiRescoreFilter{}
}

func (f *aiRescoreFilter) Name() string { return "ai_rescore" }

func (f *aiRescoreFilter) Disable(reason string) {
	f.disabled = true
	f.reason = reason
}

func (f *aiRescoreFilter) IsEnabled() bool { return !f.disabled }

func (f *aiRescoreFilter) Validate(cfg *Config) error {
	f.config = nil
	if cfg != nil {
		f.config = cfg.AI
	}
	if !f.IsEnabled() {
		return nil
	}
	if cfg == nil || cfg.AI == nil {
		return fmt.Errorf("ai configuration is required when ai rescoring is enabled")
	}
	if cfg.AI.Gemini == nil {
		return fmt.Errorf("gemini configuration is required when ai rescoring is enabled")
	}
	if strings.TrimSpace(cfg.AI.Gemini.Model) == "" {
		return fmt.Errorf("gemini model is required when ai rescoring is enabled")
	}
	return nil
}

func (f *aiRescoreFilter) Apply(ctx context.Context, deps Deps, r *candidates.Results) (*candidates.Results, Step, error) {
	initial := r.Len()
	if deps.Scorer == nil {
		deps.Logger.Info("ai scorer is not configured; skipping ai_rescore filter")
		return r, Step{Initial: initial, Dropped: 0, Left: r.Len()}, nil
	}

	timeout, delay := DefaultAITimeout, DefaultAIDelay
	if f.config != nil {
		if f.config.Timeout > 0 {
			timeout = f.config.Timeout
		}
		if f.config.Delay >= 0 {
			delay = f.config.Delay
		}
	}

	for i, res := range r.Items {
		if i > 0 {
			if err := utils.Pause(ctx, delay); err != nil {
				return r, Step{}, err
			}
		}

		clog := logger.WithCandidate(deps.Logger, res.Candidate.ID, res.Candidate.Name)

		if res.Candidate.CV == nil {
			clog.Debug("candidate has no cv; keeping deterministic score")
			continue
		}

		callCtx, cancel := context.WithTimeout(ctx, timeout)
		assessment, err := deps.Scorer.Evaluate(callCtx, ai.Request{
			CandidateID:      res.Candidate.ID,
			Summary:          ai.Summary(res.Candidate.CV),
			RequirementsText: deps.RequirementsText,
			Requirements:     deps.Requirements,
		})
		cancel()

		if err != nil {
			if ctx.Err() != nil {
				return r, Step{}, ctx.Err()
			}
			if errors.Is(err, context.DeadlineExceeded) {
				err = fmt.Errorf("ai scoring timed out after %s: %w", timeout, err)
			}
			clog.Warn("AI evaluation failed; keeping deterministic score",
				zap.Int("match_score", res.MatchScore),
				zap.Error(err),
			)
			res.AI = &candidates.AIResult{Error: err.Error()}
			continue
		}

		found := skills.FindInCV(res.Candidate.CV, deps.Requirements.Skills())
		recal := recalibrate.Recalibrate(assessment, deps.Requirements, found)

		clog.Info("candidate rescored by AI",
			zap.Int("match_score", res.MatchScore),
			zap.Float64("ai_raw_score", assessment.Score),
			zap.Int("ai_score", recal.Score),
			zap.Int("missing_must_haves", recal.MissingMust),
		)

		res.AI = &candidates.AIResult{
			Score:         recal.Score,
			RawScore:      assessment.Score,
			Rationale:     recal.Rationale,
			MatchedSkills: recal.MatchedSkills,
			Risks:         assessment.Risks,
			Seniority:     assessment.Seniority,
		}
		res.MatchScore = recal.Score
	}

	r.Sort()

	return r, Step{Initial: initial, Dropped: 0, Left: r.Len()}, nil
}

func (f *aiRescoreFilter) Status() Status {
	details := map[string]string{}
	if f.config != nil {
		details["provider"] = f.config.Provider
		details["timeout"] = f.config.Timeout.String()
		details["delay"] = f.config.Delay.String()
		if f.config.Gemini != nil {
			details["model"] = f.config.Gemini.Model
		}
	}
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason, Details: details}
}
