// Package planner computes what a learner should work on next: the zone
// of proximal development and ordered paths to a goal skill.
package planner

import (
	"sort"

	"github.com/zpdlab/mentora/internal/readiness"
	"github.com/zpdlab/mentora/internal/skillgraph"
)

// BloomWindow is how far above the learner's highest mastered Bloom level
// a candidate may sit and still count as proximal.
const BloomWindow = 1

// Candidate is a ZPD member with its ranking inputs.
type Candidate struct {
	Skill       skillgraph.Skill
	BloomJump   int     // candidate level minus highest mastered level
	PrereqScore float64 // mean mastery belief across all prerequisites
}

// ComputeZPD returns the learner's zone of proximal development: skills
// not yet mastered whose required prerequisites are all mastered and whose
// Bloom level is at most BloomWindow above the highest mastered level.
// Cheapest momentum-building skills sort first.
func ComputeZPD(g *skillgraph.Graph, beliefs readiness.Beliefs) []Candidate {
	ceiling := highestMasteredBloom(g, beliefs) + BloomWindow

	var out []Candidate
	for _, s := range g.Skills() {
		if beliefs.Mastered(s) {
			continue
		}
		if s.BloomLevel > ceiling {
			continue
		}
		if !readiness.Evaluate(g, s.ID, beliefs).Ready {
			continue
		}
		out = append(out, Candidate{
			Skill:       s,
			BloomJump:   s.BloomLevel - (ceiling - BloomWindow),
			PrereqScore: prereqBeliefMean(g, s.ID, beliefs),
		})
	}

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.BloomJump != b.BloomJump {
			return a.BloomJump < b.BloomJump
		}
		if a.PrereqScore != b.PrereqScore {
			return a.PrereqScore > b.PrereqScore
		}
		if a.Skill.EstimatedMins != b.Skill.EstimatedMins {
			return a.Skill.EstimatedMins < b.Skill.EstimatedMins
		}
		return a.Skill.ID < b.Skill.ID
	})
	return out
}

// highestMasteredBloom returns the highest Bloom level among mastered
// skills, or BloomMin when nothing is mastered yet so beginners still see
// entry-level candidates.
func highestMasteredBloom(g *skillgraph.Graph, beliefs readiness.Beliefs) int {
	highest := skillgraph.BloomMin
	for _, s := range g.Skills() {
		if beliefs.Mastered(s) && s.BloomLevel > highest {
			highest = s.BloomLevel
		}
	}
	return highest
}

// prereqBeliefMean averages the learner's belief over every prerequisite,
// recommended included. Skills with no prerequisites score 1.
func prereqBeliefMean(g *skillgraph.Graph, id string, beliefs readiness.Beliefs) float64 {
	edges := g.Prerequisites(id)
	if len(edges) == 0 {
		return 1
	}
	sum := 0.0
	for _, e := range edges {
		sum += beliefs[e.From]
	}
	return sum / float64(len(edges))
}
