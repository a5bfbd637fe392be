package matching

import (
	"fmt"
	"slices"
	"testing"

	"github.com/spigell/cv-matcher/internal/requirements"
)

func resultWith(percentages ...int) Result {
	var r Result
	for i, p := range percentages {
		r.put(fmt.Sprintf("s%d", i), Breakdown{Percentage: p})
	}
	return r
}

func TestReasoning(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		result Result
		want   string
	}{
		{
			name:   "nothing matched",
			result: resultWith(0, 0),
			want:   "No relevant skills found",
		},
		{
			name:   "empty result",
			result: Result{},
			want:   "No relevant skills found",
		},
		{
			name:   "top three by percentage, ties keep order",
			result: resultWith(50, 90, 70, 90, 0),
			want:   "80% requirement coverage. Strongest: s1 (90%), s3 (90%), s2 (70%)",
		},
		{
			name:   "half of requirements matched",
			result: resultWith(10, 0),
			want:   "50% requirement coverage. Strongest: s0 (10%)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := Reasoning(tt.result); got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestReasoningFromScoring(t *testing.T) {
	t.Parallel()

	reqs := requirements.List{
		{Skill: "react", Importance: 0.9, MinLevel: 0.6},
		{Skill: "node.js", Importance: 0.9, MinLevel: 0.6},
		{Skill: "docker", Importance: 0.6, MinLevel: 0.5},
	}
	res := NewMatcher(nil).Match(fullStackProfile(), reqs)

	want := "67% requirement coverage. Strongest: react (59%), node.js (59%)"
	if got := Reasoning(res); got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
	if got := MatchedSkills(res); !slices.Equal(got, []string{"react", "node.js"}) {
		t.Fatalf("unexpected matched skills: %v", got)
	}
}

func TestMatchedSkillsLimit(t *testing.T) {
	t.Parallel()

	percentages := make([]int, 12)
	for i := range percentages {
		percentages[i] = 10 + i
	}

	got := MatchedSkills(resultWith(percentages...))
	if len(got) != 10 {
		t.Fatalf("expected 10 skills, got %d", len(got))
	}
	if got[0] != "s0" || got[9] != "s9" {
		t.Fatalf("expected requirement order, got %v", got)
	}

	if got := MatchedSkills(Result{}); got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", got)
	}
}
