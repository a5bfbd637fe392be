package candidates

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spigell/cv-matcher/internal/matching"
	"github.com/spigell/cv-matcher/internal/requirements"
)

// AIResult is the outcome of an AI rescoring pass for one candidate.
type AIResult struct {
	Score         int      `json:"score"`
	RawScore      float64  `json:"raw_score"`
	Rationale     string   `json:"rationale,omitempty"`
	MatchedSkills []string `json:"matched_skills,omitempty"`
	Risks         []string `json:"risks,omitempty"`
	Seniority     string   `json:"seniority,omitempty"`
	Error         string   `json:"error,omitempty"`
}

// Result is a candidate with its match outcome. MatchScore starts as the
// deterministic score and is replaced by a successful AI rescoring.
type Result struct {
	Candidate     *Candidate      `json:"candidate"`
	MatchScore    int             `json:"matchScore"`
	Match         matching.Result `json:"match"`
	Reasoning     string          `json:"reasoning"`
	MatchedSkills []string        `json:"matchedSkills"`
	AI            *AIResult       `json:"ai,omitempty"`
}

type Results struct {
	Items []*Result
}

// Match scores every candidate against reqs and returns the ranked results.
func Match(ctx context.Context, m *matching.Matcher, list []*Candidate, reqs requirements.List) (*Results, error) {
	inputs := make([]matching.Input[*Candidate], 0, len(list))
	for _, c := range list {
		inputs = append(inputs, matching.Input[*Candidate]{Candidate: c, Profile: c.ResolvedProfile()})
	}

	ranked, err := matching.MatchCandidates(ctx, m, inputs, reqs)
	if err != nil {
		return nil, fmt.Errorf("match candidates: %w", err)
	}

	results := &Results{Items: make([]*Result, 0, len(ranked))}
	for _, r := range ranked {
		results.Items = append(results.Items, &Result{
			Candidate:     r.Candidate,
			MatchScore:    r.Result.OverallScore,
			Match:         r.Result,
			Reasoning:     matching.Reasoning(r.Result),
			MatchedSkills: matching.MatchedSkills(r.Result),
		})
	}

	return results, nil
}

func (r *Results) Len() int {
	return len(r.Items)
}

func (r *Results) FindByID(id string) *Result {
	for _, res := range r.Items {
		if res.Candidate.ID == id {
			return res
		}
	}
	return nil
}

func (r *Results) IDs() []string {
	ids := make([]string, 0, len(r.Items))
	for _, res := range r.Items {
		ids = append(ids, res.Candidate.ID)
	}
	return ids
}

// Sort orders results by match score, highest first, keeping the current
// order among equal scores.
func (r *Results) Sort() {
	sort.SliceStable(r.Items, func(a, b int) bool {
		return r.Items[a].MatchScore > r.Items[b].MatchScore
	})
}

// Exclude removes results whose candidate field matches one of targets and
// returns the removed IDs. Ranking order is preserved.
func (r *Results) Exclude(field string, targets []string) []string {
	var excluded []string
	r.Items = slices.DeleteFunc(r.Items, func(res *Result) bool {
		if slices.Contains(targets, res.Candidate.GetStringField(field)) {
			excluded = append(excluded, res.Candidate.ID)
			return true
		}
		return false
	})
	return excluded
}

// KeepIf drops results for which keep returns false and returns the IDs of
// the dropped ones.
func (r *Results) KeepIf(keep func(*Result) bool) []string {
	var dropped []string
	r.Items = slices.DeleteFunc(r.Items, func(res *Result) bool {
		if keep(res) {
			return false
		}
		dropped = append(dropped, res.Candidate.ID)
		return true
	})
	return dropped
}

func (r *Results) DumpToTmpFile() (string, error) {
	file, err := os.CreateTemp("", "candidates_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return "", err
	}
	return file.Name(), nil
}

// ReportBySpecialty groups results by professional specialty.
func (r *Results) ReportBySpecialty() map[string][]map[string]string {
	report := make(map[string][]map[string]string)
	for _, res := range r.Items {
		key := res.Candidate.Specialty()
		entry := map[string]string{
			"name":           res.Candidate.Name,
			"email":          res.Candidate.Email,
			"match score":    strconv.Itoa(res.MatchScore),
			"reasoning":      res.Reasoning,
			"matched skills": strings.Join(res.MatchedSkills, ", "),
		}
		if res.AI != nil {
			if res.AI.Error != "" {
				entry["ai_error"] = res.AI.Error
			} else {
				entry["ai_score"] = strconv.Itoa(res.AI.Score)
				entry["ai_rationale"] = res.AI.Rationale
			}
		}
		report[key] = append(report[key], entry)
	}
	return report
}

// ToExcluded converts results into exclusion records stamped with the
// current time.
func (r *Results) ToExcluded() *ExcludedCandidates {
	excluded := &ExcludedCandidates{}
	for _, res := range r.Items {
		excluded.Items = append(excluded.Items, &ExcludedCandidate{
			ID:         res.Candidate.ID,
			Name:       res.Candidate.Name,
			Email:      res.Candidate.Email,
			MatchScore: res.MatchScore,
			ExcludedAt: time.Now().UTC(),
		})
	}
	return excluded
}
