package skillgraph

import (
	"errors"
	"testing"
)

func chain() ([]Skill, []Edge) {
	skills := []Skill{
		{ID: "a", Name: "A", BloomLevel: 1, EstimatedMins: 10},
		{ID: "b", Name: "B", BloomLevel: 2, EstimatedMins: 15},
		{ID: "c", Name: "C", BloomLevel: 3, EstimatedMins: 20},
	}
	edges := []Edge{
		{From: "a", To: "b", Strength: StrengthRequired},
		{From: "b", To: "c", Strength: StrengthRequired},
	}
	return skills, edges
}

func TestBuildTopoOrder(t *testing.T) {
	skills, edges := chain()
	g, err := Build(skills, edges)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	order := g.TopoOrder()
	if len(order) != 3 {
		t.Fatalf("topo order length = %d, want 3", len(order))
	}
	if g.TopoIndex("a") > g.TopoIndex("b") || g.TopoIndex("b") > g.TopoIndex("c") {
		t.Errorf("topo order violates edges: %v", order)
	}
}

func TestBuildDetectsCycle(t *testing.T) {
	skills := []Skill{{ID: "x"}, {ID: "y"}}
	edges := []Edge{
		{From: "x", To: "y", Strength: StrengthRequired},
		{From: "y", To: "x", Strength: StrengthRequired},
	}
	_, err := Build(skills, edges)
	var ce *CycleError
	if !errors.As(err, &ce) {
		t.Fatalf("Build returned %v, want CycleError", err)
	}
	if len(ce.SkillIDs) != 2 {
		t.Errorf("cycle nodes = %v, want both x and y", ce.SkillIDs)
	}
}

func TestBuildRejectsDanglingEdge(t *testing.T) {
	skills := []Skill{{ID: "a"}}
	edges := []Edge{{From: "a", To: "ghost", Strength: StrengthRequired}}
	if _, err := Build(skills, edges); err == nil {
		t.Fatal("Build accepted an edge to a nonexistent skill")
	}
}

func TestBuildRejectsDuplicateID(t *testing.T) {
	skills := []Skill{{ID: "a"}, {ID: "a"}}
	if _, err := Build(skills, nil); err == nil {
		t.Fatal("Build accepted duplicate skill IDs")
	}
}

func TestRequiredAncestorsIgnoresRecommended(t *testing.T) {
	skills := []Skill{{ID: "a"}, {ID: "b"}, {ID: "c"}, {ID: "opt"}}
	edges := []Edge{
		{From: "a", To: "b", Strength: StrengthRequired},
		{From: "b", To: "c", Strength: StrengthRequired},
		{From: "opt", To: "c", Strength: StrengthRecommended},
	}
	g, err := Build(skills, edges)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	anc := g.RequiredAncestors("c")
	if !anc["a"] || !anc["b"] {
		t.Errorf("ancestors of c = %v, want a and b", anc)
	}
	if anc["opt"] {
		t.Error("recommended prerequisite leaked into required ancestors")
	}
}

func TestReachableFrom(t *testing.T) {
	skills, edges := chain()
	g, err := Build(skills, edges)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	down := g.ReachableFrom("a")
	if !down["b"] || !down["c"] || len(down) != 2 {
		t.Errorf("ReachableFrom(a) = %v, want {b, c}", down)
	}
}

func TestThresholdDefault(t *testing.T) {
	s := Skill{ID: "a"}
	if got := s.Threshold(); got != DefaultMasteryThreshold {
		t.Errorf("Threshold() = %v, want %v", got, DefaultMasteryThreshold)
	}
	s.MasteryThreshold = 0.95
	if got := s.Threshold(); got != 0.95 {
		t.Errorf("Threshold() = %v, want 0.95", got)
	}
}
