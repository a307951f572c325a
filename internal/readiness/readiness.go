// Package readiness derives whether a skill is reachable for a learner
// from mastery beliefs along the prerequisite graph.
package readiness

import "github.com/zpdlab/mentora/internal/skillgraph"

// Beliefs maps skill ID to the learner's current mastery belief. Skills
// never practiced are simply absent (belief treated as 0).
type Beliefs map[string]float64

// Mastered reports whether the learner's belief for the skill meets the
// skill's own mastery threshold.
func (b Beliefs) Mastered(s skillgraph.Skill) bool {
	return b[s.ID] >= s.Threshold()
}

// Result describes a skill's readiness for one learner.
type Result struct {
	Ready         bool
	Score         float64
	RequiredCount int
	MasteredCount int
}

// Evaluate computes readiness for a skill: the fraction of required
// prerequisites whose mastery belief meets their own threshold.
// Recommended prerequisites never block. A skill with zero required
// prerequisites is always ready with score 1.
func Evaluate(g *skillgraph.Graph, skillID string, beliefs Beliefs) Result {
	req := g.RequiredPrerequisites(skillID)
	if len(req) == 0 {
		return Result{Ready: true, Score: 1}
	}

	mastered := 0
	for _, e := range req {
		prereq, ok := g.Skill(e.From)
		if !ok {
			continue
		}
		if beliefs.Mastered(prereq) {
			mastered++
		}
	}

	score := float64(mastered) / float64(len(req))
	return Result{
		Ready:         mastered == len(req),
		Score:         score,
		RequiredCount: len(req),
		MasteredCount: mastered,
	}
}
