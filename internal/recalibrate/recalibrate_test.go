package recalibrate

import (
	"strings"
	"testing"

	"github.com/spigell/cv-matcher/internal/ai"
	"github.com/spigell/cv-matcher/internal/requirements"
)

func coverage(v float64) *ai.Subscores {
	return &ai.Subscores{OverallRequirementsCoverage: &v}
}

func TestRecalibrate(t *testing.T) {
	t.Parallel()

	reqs := requirements.List{
		{Skill: "react", Importance: 1.0},
		{Skill: "node.js", Importance: 0.9},
		{Skill: "docker", Importance: 0.5},
		{Skill: "aws", Importance: 0.5},
	}

	tests := []struct {
		name          string
		assessment    *ai.Assessment
		reqs          requirements.List
		found         []string
		wantScore     int
		wantMissing   int
		wantRationale string
	}{
		{
			// 92 - 15 = 77 -> 49 (gate) -> ratio 2/4 -> round(49*0.75)=37
			name:          "one must-have missing",
			assessment:    &ai.Assessment{Score: 92, Rationale: "Good fit", MatchedSkills: []string{"React", "AWS"}},
			reqs:          reqs,
			wantScore:     37,
			wantMissing:   1,
			wantRationale: "Good fit Missing must-have(s): 1.",
		},
		{
			// node matches node.js by containment; 4 matched out of 4
			name:          "partial names count as covered",
			assessment:    &ai.Assessment{Score: 88, MatchedSkills: []string{"react", "node"}},
			reqs:          reqs,
			found:         []string{"docker", "aws"},
			wantScore:     88,
			wantRationale: "AI analysis result",
		},
		{
			// blend: round(0.8*80 + 0.2*50) = 74; ratio 1 -> 74
			name:       "coverage subscore blended",
			assessment: &ai.Assessment{Score: 80, MatchedSkills: []string{"react", "node.js", "docker", "aws"}, Subscores: coverage(50)},
			reqs:       reqs,
			wantScore:  74,
		},
		{
			// coverage above 100 is clamped: round(0.8*80 + 20) = 84
			name:       "coverage subscore clamped",
			assessment: &ai.Assessment{Score: 80, MatchedSkills: []string{"react", "node.js", "docker", "aws"}, Subscores: coverage(250)},
			reqs:       reqs,
			wantScore:  84,
		},
		{
			// 2 missing -> 95-30=65 -> 49 -> empty set cap 55 keeps 49 -> ratio 0 -> round(24.5)=25
			name:        "nothing matched",
			assessment:  &ai.Assessment{Score: 95},
			reqs:        reqs,
			wantScore:   25,
			wantMissing: 2,
		},
		{
			// no must-haves: empty set caps 90 to 55, ratio 0 -> round(27.5)=28
			name:       "nothing matched without must-haves",
			assessment: &ai.Assessment{Score: 90},
			reqs:       requirements.List{{Skill: "docker", Importance: 0.5}, {Skill: "aws", Importance: 0.5}},
			wantScore:  28,
		},
		{
			name:       "no requirements keeps score",
			assessment: &ai.Assessment{Score: 63.4},
			wantScore:  63,
		},
		{
			name:       "negative raw score clamped",
			assessment: &ai.Assessment{Score: -20},
			wantScore:  0,
		},
		{
			name:       "raw above 100 clamped",
			assessment: &ai.Assessment{Score: 140},
			wantScore:  100,
		},
		{
			// 3 missing -> penalty capped at 40
			name:       "penalty capped",
			assessment: &ai.Assessment{Score: 100, MatchedSkills: []string{"go"}},
			reqs: requirements.List{
				{Skill: "react", Importance: 1}, {Skill: "vue", Importance: 1}, {Skill: "angular", Importance: 1},
			},
			// 100-40=60 -> 49 -> ratio 1/3 -> round(49*0.6667)=33
			wantScore:   33,
			wantMissing: 3,
		},
		{
			name:        "nil assessment",
			reqs:        requirements.List{{Skill: "react"}},
			wantScore:   0,
			wantMissing: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := Recalibrate(tt.assessment, tt.reqs, tt.found)
			if got.Score != tt.wantScore {
				t.Fatalf("expected score %d, got %d", tt.wantScore, got.Score)
			}
			if got.MissingMust != tt.wantMissing {
				t.Fatalf("expected %d missing must-haves, got %d", tt.wantMissing, got.MissingMust)
			}
			if tt.wantRationale != "" && got.Rationale != tt.wantRationale {
				t.Fatalf("expected rationale %q, got %q", tt.wantRationale, got.Rationale)
			}
			if got.Rationale == "" {
				t.Fatal("rationale must never be empty")
			}
		})
	}
}

func TestRecalibrateMustHaveGate(t *testing.T) {
	t.Parallel()

	reqs := requirements.List{{Skill: "kubernetes", Importance: 0.95}, {Skill: "go", Importance: 0.3}}

	for _, raw := range []float64{0, 49, 50, 75, 100} {
		got := Recalibrate(&ai.Assessment{Score: raw, MatchedSkills: []string{"go"}}, reqs, nil)
		if got.Score > 49 {
			t.Fatalf("raw %v: score %d exceeds must-have gate", raw, got.Score)
		}
		if !strings.Contains(got.Rationale, "Missing must-have(s): 1.") {
			t.Fatalf("raw %v: missing note in rationale %q", raw, got.Rationale)
		}
	}
}

func TestRecalibrateCoverageMonotonic(t *testing.T) {
	t.Parallel()

	reqs := requirements.List{
		{Skill: "html", Importance: 0.5},
		{Skill: "css", Importance: 0.5},
		{Skill: "sass", Importance: 0.5},
		{Skill: "webpack", Importance: 0.5},
	}
	pool := []string{"html", "css", "sass", "webpack"}

	prev := -1
	for n := 0; n <= len(pool); n++ {
		got := Recalibrate(&ai.Assessment{Score: 80}, reqs, pool[:n])
		if got.Score < prev {
			t.Fatalf("score decreased from %d to %d when matching %d skills", prev, got.Score, n)
		}
		prev = got.Score
	}
}

func TestRecalibrateTrimsMatchedSkills(t *testing.T) {
	t.Parallel()

	skills := []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k", "l"}
	got := Recalibrate(&ai.Assessment{Score: 50, MatchedSkills: skills}, nil, []string{"x"})

	if len(got.MatchedSkills) != 10 {
		t.Fatalf("expected 10 matched skills, got %d", len(got.MatchedSkills))
	}
	if got.MatchedSkills[0] != "a" || got.MatchedSkills[9] != "j" {
		t.Fatalf("unexpected matched skills: %v", got.MatchedSkills)
	}

	empty := Recalibrate(&ai.Assessment{Score: 50}, nil, []string{"x"})
	if empty.MatchedSkills == nil || len(empty.MatchedSkills) != 0 {
		t.Fatalf("expected empty non-nil matched skills, got %#v", empty.MatchedSkills)
	}
}
