package filtering

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/spigell/cv-matcher/internal/candidates"
)

// DefaultMinScore is the match score a candidate needs to be shortlisted.
const DefaultMinScore = 70

type minScoreFilter struct {
	disabled bool
	reason   string
	min      int
}

// NewMinScore creates a filter that drops candidates scoring below the configured threshold.
func NewMinScore() Filter {
	return &minScoreFilter{min: DefaultMinScore}
}

func (f *minScoreFilter) Name() string { return "min_score" }

func (f *minScoreFilter) Disable(reason string) {
	f.disabled = true
	f.reason = reason
}

func (f *minScoreFilter) IsEnabled() bool { return !f.disabled }

func (f *minScoreFilter) Validate(cfg *Config) error {
	f.min = DefaultMinScore
	if cfg != nil && cfg.MinScore != 0 {
		f.min = cfg.MinScore
	}
	if f.min < 0 || f.min > 100 {
		return fmt.Errorf("minimum score must be within [0,100], got %d", f.min)
	}
	return nil
}

func (f *minScoreFilter) Apply(_ context.Context, deps Deps, r *candidates.Results) (*candidates.Results, Step, error) {
	initial := r.Len()

	dropped := r.KeepIf(func(res *candidates.Result) bool {
		return res.MatchScore >= f.min
	})
	if len(dropped) > 0 {
		deps.Logger.Info("excluding candidates below minimum score",
			zap.Int("min_score", f.min),
			zap.Strings("excluded_candidates", dropped),
			zap.Int("candidates_left", r.Len()),
		)
	}

	return r, Step{Initial: initial, Dropped: len(dropped), Left: r.Len()}, nil
}

func (f *minScoreFilter) Status() Status {
	return Status{
		Name:    f.Name(),
		Enabled: f.IsEnabled(),
		Reason:  f.reason,
		Details: map[string]string{"min_score": strconv.Itoa(f.min)},
	}
}
