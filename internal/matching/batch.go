package matching

import (
	"context"
	"runtime"
	"sort"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spigell/cv-matcher/internal/profile"
	"github.com/spigell/cv-matcher/internal/requirements"
	"github.com/spigell/cv-matcher/internal/skills"
)

// Matcher aggregates a profile and scores it in one call.
type Matcher struct {
	aggregator *skills.Aggregator
	scorer     *Scorer
	workers    int
	logger     *zap.Logger
}

// MatcherOption customizes a Matcher.
type MatcherOption func(*Matcher)

// WithWorkers bounds the number of candidates scored concurrently.
func WithWorkers(n int) MatcherOption {
	return func(m *Matcher) {
		if n > 0 {
			m.workers = n
		}
	}
}

// WithLogger attaches a logger used for debug tracing of scores.
func WithLogger(logger *zap.Logger) MatcherOption {
	return func(m *Matcher) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// NewMatcher returns a matcher for cfg. A nil cfg uses skills.DefaultConfig.
func NewMatcher(cfg *skills.Config, opts ...MatcherOption) *Matcher {
	if cfg == nil {
		cfg = skills.DefaultConfig()
	}

	m := &Matcher{
		aggregator: skills.NewAggregator(cfg),
		workers:    runtime.GOMAXPROCS(0),
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.scorer = NewScorer(cfg, m.logger)

	return m
}

// Match scores a single profile.
func (m *Matcher) Match(p *profile.Profile, reqs requirements.List) Result {
	return m.scorer.Score(m.aggregator.Aggregate(p), reqs)
}

// Input pairs a candidate with the profile it is scored on.
type Input[C any] struct {
	Candidate C
	Profile   *profile.Profile
}

// Ranked is a scored candidate.
type Ranked[C any] struct {
	Candidate C
	Result    Result
}

// MatchCandidates scores every input against reqs and returns them sorted by
// overall score, highest first. Candidates with equal scores keep their input
// order. The only error is a cancelled context.
func MatchCandidates[C any](ctx context.Context, m *Matcher, inputs []Input[C], reqs requirements.List) ([]Ranked[C], error) {
	ranked := make([]Ranked[C], len(inputs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.workers)

	for i, in := range inputs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			ranked[i] = Ranked[C]{Candidate: in.Candidate, Result: m.Match(in.Profile, reqs)}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.SliceStable(ranked, func(a, b int) bool {
		return ranked[a].Result.OverallScore > ranked[b].Result.OverallScore
	})

	m.logger.Debug("candidates matched",
		zap.Int("candidates", len(ranked)),
		zap.Int("requirements", len(reqs)),
	)

	return ranked, nil
}
