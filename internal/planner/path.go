package planner

import (
	"sort"

	"github.com/zpdlab/mentora/internal/skillgraph"
)

// ThresholdFraction is the share of fellow path skills that must depend on
// a skill (lose their route to the goal without it) for the skill to be
// flagged a threshold concept.
const ThresholdFraction = 0.3

// Path is an ordered learning path toward a goal skill.
type Path struct {
	Skills                []skillgraph.Skill
	TotalEstimatedMinutes int
	ThresholdConcepts     []string
	// Message explains an empty path (goal mastered or unknown).
	Message string
}

// GeneratePath builds the ordered path from the learner's mastered set to
// the goal: the goal's unmastered required-ancestor closure plus the goal,
// in topological order with ties broken by ascending Bloom level then
// estimated minutes. A mastered or unknown goal yields an empty path with
// a message rather than an error.
func GeneratePath(g *skillgraph.Graph, goalID string, mastered map[string]bool) (*Path, error) {
	goal, ok := g.Skill(goalID)
	if !ok {
		return &Path{Message: "goal skill is not in this notebook"}, nil
	}
	if mastered[goalID] {
		return &Path{Message: "goal skill is already mastered"}, nil
	}

	// Collect unmastered required ancestors. Recommended edges join only
	// when their source is already pulled in by a required dependency, so
	// they never grow the set.
	include := map[string]bool{goalID: true}
	for id := range g.RequiredAncestors(goalID) {
		if !mastered[id] {
			include[id] = true
		}
	}

	ordered, err := orderSubgraph(g, include)
	if err != nil {
		return nil, err
	}

	p := &Path{Skills: ordered}
	for _, s := range ordered {
		p.TotalEstimatedMinutes += s.EstimatedMins
	}
	p.ThresholdConcepts = thresholdConcepts(g, ordered, goal.ID)
	return p, nil
}

// orderSubgraph topologically sorts the included skills over required
// edges, preferring lower Bloom levels then shorter skills at each step.
// A cycle in the included subgraph is corrupt data and aborts the plan.
func orderSubgraph(g *skillgraph.Graph, include map[string]bool) ([]skillgraph.Skill, error) {
	inDegree := make(map[string]int, len(include))
	for id := range include {
		for _, e := range g.RequiredPrerequisites(id) {
			if include[e.From] {
				inDegree[id]++
			}
		}
	}

	var frontier []skillgraph.Skill
	for id := range include {
		if inDegree[id] == 0 {
			s, _ := g.Skill(id)
			frontier = append(frontier, s)
		}
	}

	less := func(a, b skillgraph.Skill) bool {
		if a.BloomLevel != b.BloomLevel {
			return a.BloomLevel < b.BloomLevel
		}
		if a.EstimatedMins != b.EstimatedMins {
			return a.EstimatedMins < b.EstimatedMins
		}
		return a.ID < b.ID
	}

	var ordered []skillgraph.Skill
	for len(frontier) > 0 {
		sort.Slice(frontier, func(i, j int) bool { return less(frontier[i], frontier[j]) })
		next := frontier[0]
		frontier = frontier[1:]
		ordered = append(ordered, next)

		for _, e := range g.Dependents(next.ID) {
			if !e.Required() || !include[e.To] {
				continue
			}
			inDegree[e.To]--
			if inDegree[e.To] == 0 {
				s, _ := g.Skill(e.To)
				frontier = append(frontier, s)
			}
		}
	}

	if len(ordered) < len(include) {
		var stuck []string
		for id, deg := range inDegree {
			if deg > 0 {
				stuck = append(stuck, id)
			}
		}
		sort.Strings(stuck)
		return nil, &skillgraph.CycleError{SkillIDs: stuck}
	}
	return ordered, nil
}

// thresholdConcepts flags path skills whose removal cuts off more than
// ThresholdFraction of the other path skills from the goal. These deserve
// extra practice time.
func thresholdConcepts(g *skillgraph.Graph, path []skillgraph.Skill, goalID string) []string {
	if len(path) <= 2 {
		return nil
	}
	inPath := make(map[string]bool, len(path))
	for _, s := range path {
		inPath[s.ID] = true
	}

	others := len(path) - 2 // path members that are neither the goal nor the candidate
	if others <= 0 {
		return nil
	}

	var out []string
	for _, s := range path {
		if s.ID == goalID {
			continue
		}
		cut := 0
		for _, t := range path {
			if t.ID == s.ID || t.ID == goalID {
				continue
			}
			if !reachesAvoiding(g, t.ID, goalID, s.ID, inPath) {
				cut++
			}
		}
		if float64(cut)/float64(others) > ThresholdFraction {
			out = append(out, s.ID)
		}
	}
	return out
}

// reachesAvoiding reports whether from can reach goal along required edges
// inside the path's skill set without passing through the avoided skill.
func reachesAvoiding(g *skillgraph.Graph, from, goal, avoid string, inPath map[string]bool) bool {
	if from == avoid {
		return false
	}
	seen := map[string]bool{from: true}
	stack := []string{from}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if cur == goal {
			return true
		}
		for _, e := range g.Dependents(cur) {
			if !e.Required() || e.To == avoid || !inPath[e.To] || seen[e.To] {
				continue
			}
			seen[e.To] = true
			stack = append(stack, e.To)
		}
	}
	return false
}
