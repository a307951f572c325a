package readiness

import (
	"testing"

	"github.com/zpdlab/mentora/internal/skillgraph"
)

func buildGraph(t *testing.T, skills []skillgraph.Skill, edges []skillgraph.Edge) *skillgraph.Graph {
	t.Helper()
	g, err := skillgraph.Build(skills, edges)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return g
}

func TestZeroRequiredPrereqsAlwaysReady(t *testing.T) {
	g := buildGraph(t,
		[]skillgraph.Skill{{ID: "root"}, {ID: "opt"}},
		[]skillgraph.Edge{{From: "opt", To: "root", Strength: skillgraph.StrengthRecommended}},
	)

	// Recommended prerequisite unmastered: still ready.
	res := Evaluate(g, "root", Beliefs{})
	if !res.Ready || res.Score != 1 {
		t.Errorf("root readiness = %+v, want ready with score 1", res)
	}
}

func TestReadinessCountsRequiredOnly(t *testing.T) {
	g := buildGraph(t,
		[]skillgraph.Skill{
			{ID: "a", MasteryThreshold: 0.8},
			{ID: "b", MasteryThreshold: 0.8},
			{ID: "c"},
			{ID: "opt"},
		},
		[]skillgraph.Edge{
			{From: "a", To: "c", Strength: skillgraph.StrengthRequired},
			{From: "b", To: "c", Strength: skillgraph.StrengthRequired},
			{From: "opt", To: "c", Strength: skillgraph.StrengthRecommended},
		},
	)

	res := Evaluate(g, "c", Beliefs{"a": 0.9})
	if res.Ready {
		t.Error("c reported ready with b unmastered")
	}
	if res.RequiredCount != 2 || res.MasteredCount != 1 || res.Score != 0.5 {
		t.Errorf("result = %+v, want 1/2 at score 0.5", res)
	}

	res = Evaluate(g, "c", Beliefs{"a": 0.9, "b": 0.85})
	if !res.Ready || res.Score != 1 {
		t.Errorf("result = %+v, want ready at score 1", res)
	}
}

func TestMasteredUsesPerSkillThreshold(t *testing.T) {
	g := buildGraph(t,
		[]skillgraph.Skill{
			{ID: "strict", MasteryThreshold: 0.95},
			{ID: "next"},
		},
		[]skillgraph.Edge{{From: "strict", To: "next", Strength: skillgraph.StrengthRequired}},
	)

	if res := Evaluate(g, "next", Beliefs{"strict": 0.9}); res.Ready {
		t.Error("0.9 belief satisfied a 0.95 threshold")
	}
	if res := Evaluate(g, "next", Beliefs{"strict": 0.96}); !res.Ready {
		t.Error("0.96 belief did not satisfy a 0.95 threshold")
	}
}
