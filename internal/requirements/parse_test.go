package requirements

import (
	"math"
	"testing"
)

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want List
	}{
		{
			name: "empty text",
			text: "",
			want: List{},
		},
		{
			name: "seniority raises importance and level",
			text: "Senior React developer with TypeScript",
			want: List{
				{Skill: "react", Importance: 1.0, MinLevel: 0.8},
				{Skill: "typescript", Importance: 0.9, MinLevel: 0.8},
			},
		},
		{
			name: "junior lowers the level",
			text: "Junior Python developer",
			want: List{{Skill: "python", Importance: 1.0, MinLevel: 0.4}},
		},
		{
			name: "enough concrete technologies, no proxies",
			text: "Backend engineer: Node.js, Express, PostgreSQL, Docker",
			want: List{
				{Skill: "node.js", Importance: 1.0, MinLevel: 0.6},
				{Skill: "express", Importance: 0.8, MinLevel: 0.6},
				{Skill: "postgresql", Importance: 0.8, MinLevel: 0.6},
				{Skill: "docker", Importance: 0.8, MinLevel: 0.6},
			},
		},
		{
			name: "full stack role expands to proxies",
			text: "Full stack developer",
			want: List{
				{Skill: "full stack", Importance: 1.0, MinLevel: 0.6},
				{Skill: "react", Importance: 0.9, MinLevel: 0.6},
				{Skill: "javascript", Importance: 0.85, MinLevel: 0.6},
				{Skill: "html", Importance: 0.6, MinLevel: 0.6},
				{Skill: "css", Importance: 0.6, MinLevel: 0.6},
				{Skill: "typescript", Importance: 0.7, MinLevel: 0.6},
				{Skill: "node.js", Importance: 0.9, MinLevel: 0.6},
				{Skill: "express", Importance: 0.7, MinLevel: 0.6},
				{Skill: "postgresql", Importance: 0.7, MinLevel: 0.6},
				{Skill: "mongodb", Importance: 0.7, MinLevel: 0.6},
				{Skill: "docker", Importance: 0.6, MinLevel: 0.6},
				{Skill: "aws", Importance: 0.6, MinLevel: 0.6},
			},
		},
		{
			name: "frontend role keeps explicit skills first",
			text: "Frontend role, Angular",
			want: List{
				{Skill: "angular", Importance: 1.0, MinLevel: 0.6},
				{Skill: "react", Importance: 0.9, MinLevel: 0.6},
				{Skill: "javascript", Importance: 0.85, MinLevel: 0.6},
				{Skill: "html", Importance: 0.6, MinLevel: 0.6},
				{Skill: "css", Importance: 0.6, MinLevel: 0.6},
				{Skill: "typescript", Importance: 0.7, MinLevel: 0.6},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := Parse(tt.text)
			if got == nil {
				t.Fatal("expected non-nil list")
			}
			if len(got) != len(tt.want) {
				t.Fatalf("expected %d requirements, got %d: %+v", len(tt.want), len(got), got)
			}
			for i, want := range tt.want {
				g := got[i]
				if g.Skill != want.Skill || math.Abs(g.Importance-want.Importance) > 1e-9 || math.Abs(g.MinLevel-want.MinLevel) > 1e-9 {
					t.Fatalf("position %d: expected %+v, got %+v", i, want, g)
				}
			}
			if err := got.Validate(); err != nil {
				t.Fatalf("parsed list must validate: %v", err)
			}
		})
	}
}
