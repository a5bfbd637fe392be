package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"unicode"
	"unicode/utf8"

	_ "embed"

	"github.com/spf13/cast"
	"go.uber.org/zap"

	"github.com/spigell/cv-matcher/internal/ai"
	"github.com/spigell/cv-matcher/internal/requirements"
	"github.com/spigell/cv-matcher/internal/utils"
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, system, message string) (string, error)
	Model() string
}

//go:embed prompt.md
var promptTemplate string

const (
	systemInstruction = "You are an expert technical recruiter. You score candidates against job requirements and answer with JSON only."

	defaultMaxLogLength     = 200
	maxUserInstructionRunes = 500
	maxSingleLineRunes      = 200
)

// PromptOverrides are operator-provided notes appended to every prompt.
type PromptOverrides struct {
	ExtraCriteria    string `mapstructure:"extra-criteria"`
	DealBreakers     string `mapstructure:"deal-breakers"`
	UserInstructions string `mapstructure:"user-instructions"`
}

// Scorer asks Gemini to rate candidates with a fixed rubric.
type Scorer struct {
	generator contentGenerator
	logger    *zap.Logger
	maxLogLen int
	overrides PromptOverrides
}

func NewScorer(generator contentGenerator, maxLogLength int, logger *zap.Logger) *Scorer {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Scorer{
		generator: generator,
		logger:    logger,
		maxLogLen: maxLogLength,
	}
}

func (s *Scorer) SetPromptOverrides(o PromptOverrides) {
	s.overrides = o
}

func (s *Scorer) Evaluate(ctx context.Context, req ai.Request) (*ai.Assessment, error) {
	if strings.TrimSpace(req.Summary) == "" {
		return nil, errors.New("candidate summary is required")
	}

	reqs := req.Requirements
	if reqs == nil {
		reqs = requirements.List{}
	}
	reqsJSON, err := json.MarshalIndent(reqs, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal requirements: %w", err)
	}

	prompt := s.buildPrompt(req.RequirementsText, string(reqsJSON), req.Summary)

	s.logger.Debug("gemini generate content request",
		zap.String("candidate_id", req.CandidateID),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.Preview(prompt, s.maxLogLen)),
	)

	raw, err := s.generator.GenerateContent(ctx, systemInstruction, prompt)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("gemini generate content response",
		zap.String("candidate_id", req.CandidateID),
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.Preview(raw, s.maxLogLen)),
	)

	assessment, err := parseResponse(raw)
	if err != nil {
		s.logger.Debug("gemini response is not valid json",
			zap.String("candidate_id", req.CandidateID),
			zap.String("response_preview", utils.Preview(raw, 500)),
		)
		return nil, err
	}

	assessment.Raw = raw
	return assessment, nil
}

func (s *Scorer) buildPrompt(requirementsText, requirementsJSON, summary string) string {
	r := strings.NewReplacer(
		"{{REQUIREMENTS_TEXT}}", strings.TrimSpace(requirementsText),
		"{{REQUIREMENTS_JSON}}", requirementsJSON,
		"{{EXTRA_CRITERIA}}", orNone(sanitizeLine(s.overrides.ExtraCriteria)),
		"{{DEAL_BREAKERS}}", orNone(sanitizeLine(s.overrides.DealBreakers)),
		"{{USER_INSTRUCTIONS}}", userInstructionsBlock(s.overrides.UserInstructions),
		"{{CANDIDATE_SUMMARY}}", summary,
	)
	return strings.TrimSpace(r.Replace(promptTemplate))
}

// sanitizeLine flattens operator input to a single line and neutralizes
// square brackets so it cannot open a new prompt section.
func sanitizeLine(s string) string {
	s = neutralizeBrackets(s)
	s = strings.Join(strings.Fields(s), " ")
	return truncate(s, maxSingleLineRunes)
}

func userInstructionsBlock(s string) string {
	s = truncate(strings.TrimSpace(neutralizeBrackets(s)), maxUserInstructionRunes)

	var lines []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			lines = append(lines, "  - "+line)
		}
	}
	if len(lines) == 0 {
		return "  - none"
	}
	return strings.Join(lines, "\n")
}

func neutralizeBrackets(s string) string {
	return strings.NewReplacer("[", "(", "]", ")").Replace(s)
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return strings.TrimRightFunc(string([]rune(s)[:n]), unicode.IsSpace)
}

func parseResponse(raw string) (*ai.Assessment, error) {
	cleaned := extractJSON(raw)

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return nil, fmt.Errorf("parse gemini response: %w", err)
	}

	rationale := coerceString(data["rationale"])
	if rationale == "" {
		rationale = coerceString(data["reason"])
	}

	return &ai.Assessment{
		Score:         numberOrZero(data["score"]),
		Rationale:     rationale,
		MatchedSkills: coerceStrings(data["matched_skills"]),
		Risks:         coerceStrings(data["risks"]),
		Seniority:     coerceString(data["seniority"]),
		Subscores:     parseSubscores(data["subscores"]),
	}, nil
}

func parseSubscores(v any) *ai.Subscores {
	fields, ok := v.(map[string]any)
	if !ok {
		return nil
	}

	sub := &ai.Subscores{
		MustHaveCoverage: coerceFloat(fields["must_have_coverage"]),
		SeniorityFit:     coerceFloat(fields["seniority_fit"]),
		DomainAlignment:  coerceFloat(fields["domain_alignment"]),
		Recency:          coerceFloat(fields["recency"]),
		PenaltyApplied:   coerceFloat(fields["penalty_applied"]),
	}

	if cov, ok := fields["overall_requirements_coverage"].(float64); ok {
		sub.OverallRequirementsCoverage = &cov
	}

	return sub
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}

// numberOrZero accepts only JSON numbers. The raw score feeds the
// recalibration gate, so a quoted or textual score counts as 0.
func numberOrZero(v any) float64 {
	f, ok := v.(float64)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// coerceFloat accepts numbers and numeric strings. Anything else is 0.
func coerceFloat(v any) float64 {
	if s, ok := v.(string); ok {
		v = strings.TrimSpace(s)
	}
	f, err := cast.ToFloat64E(v)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

func coerceStrings(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return []string{}
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s := coerceString(item); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func coerceString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(val)
	case map[string]any, []any:
		bytes, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprintf("%v", val)
		}
		return string(bytes)
	default:
		return strings.TrimSpace(cast.ToString(val))
	}
}
