package skillgraph

import (
	"fmt"
	"slices"
	"sort"
)

// Graph is a read-only view of one notebook's skills and prerequisite
// edges with precomputed indices. Build it from store records per request;
// there is deliberately no package-level instance.
type Graph struct {
	skills     []Skill
	byID       map[string]*Skill
	prereqs    map[string][]Edge // edges into a skill (From = prerequisite)
	dependents map[string][]Edge // edges out of a skill (To = dependent)
	topoOrder  []string
	topoIndex  map[string]int
}

// Build constructs and validates a Graph. It rejects duplicate skill IDs,
// edges referencing unknown skills, and prerequisite cycles.
func Build(skills []Skill, edges []Edge) (*Graph, error) {
	g := &Graph{
		skills:     slices.Clone(skills),
		byID:       make(map[string]*Skill, len(skills)),
		prereqs:    make(map[string][]Edge),
		dependents: make(map[string][]Edge),
		topoIndex:  make(map[string]int, len(skills)),
	}

	for i := range g.skills {
		s := &g.skills[i]
		if _, dup := g.byID[s.ID]; dup {
			return nil, fmt.Errorf("duplicate skill ID %q", s.ID)
		}
		g.byID[s.ID] = s
	}

	for _, e := range edges {
		if _, ok := g.byID[e.From]; !ok {
			return nil, fmt.Errorf("edge %s->%s references unknown skill %q", e.From, e.To, e.From)
		}
		if _, ok := g.byID[e.To]; !ok {
			return nil, fmt.Errorf("edge %s->%s references unknown skill %q", e.From, e.To, e.To)
		}
		g.prereqs[e.To] = append(g.prereqs[e.To], e)
		g.dependents[e.From] = append(g.dependents[e.From], e)
	}

	order, err := topoSort(g.skills, g.prereqs, g.dependents)
	if err != nil {
		return nil, err
	}
	g.topoOrder = order
	for i, id := range order {
		g.topoIndex[id] = i
	}
	return g, nil
}

// topoSort runs Kahn's algorithm over all edges (required and recommended).
// Initial queue and dependent expansion are sorted so the order is
// deterministic for identical inputs.
func topoSort(skills []Skill, prereqs, dependents map[string][]Edge) ([]string, error) {
	inDegree := make(map[string]int, len(skills))
	for _, s := range skills {
		inDegree[s.ID] = len(prereqs[s.ID])
	}

	var queue []string
	for id, deg := range inDegree {
		if deg == 0 {
			queue = append(queue, id)
		}
	}
	sort.Strings(queue)

	order := make([]string, 0, len(skills))
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		order = append(order, id)

		outs := dependents[id]
		next := make([]string, 0, len(outs))
		for _, e := range outs {
			next = append(next, e.To)
		}
		sort.Strings(next)
		for _, depID := range next {
			inDegree[depID]--
			if inDegree[depID] == 0 {
				queue = append(queue, depID)
			}
		}
	}

	if len(order) < len(skills) {
		var cycleNodes []string
		for id, deg := range inDegree {
			if deg > 0 {
				cycleNodes = append(cycleNodes, id)
			}
		}
		sort.Strings(cycleNodes)
		return nil, &CycleError{SkillIDs: cycleNodes}
	}
	return order, nil
}

// Skill returns a skill by ID.
func (g *Graph) Skill(id string) (Skill, bool) {
	s, ok := g.byID[id]
	if !ok {
		return Skill{}, false
	}
	return *s, true
}

// Skills returns all skills.
func (g *Graph) Skills() []Skill {
	return slices.Clone(g.skills)
}

// Len returns the number of skills in the graph.
func (g *Graph) Len() int {
	return len(g.skills)
}

// Prerequisites returns the direct prerequisite edges into the given skill.
func (g *Graph) Prerequisites(id string) []Edge {
	return slices.Clone(g.prereqs[id])
}

// RequiredPrerequisites returns only the required prerequisite edges.
func (g *Graph) RequiredPrerequisites(id string) []Edge {
	var out []Edge
	for _, e := range g.prereqs[id] {
		if e.Required() {
			out = append(out, e)
		}
	}
	return out
}

// Dependents returns the direct outgoing edges from the given skill.
func (g *Graph) Dependents(id string) []Edge {
	return slices.Clone(g.dependents[id])
}

// TopoOrder returns all skill IDs in a valid topological order.
func (g *Graph) TopoOrder() []string {
	return slices.Clone(g.topoOrder)
}

// TopoIndex returns the position of a skill in the topological order.
func (g *Graph) TopoIndex(id string) int {
	return g.topoIndex[id]
}

// RequiredAncestors returns the transitive closure of required
// prerequisites of the given skill, excluding the skill itself.
func (g *Graph) RequiredAncestors(id string) map[string]bool {
	out := make(map[string]bool)
	stack := []string{id}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, e := range g.prereqs[cur] {
			if !e.Required() || out[e.From] {
				continue
			}
			out[e.From] = true
			stack = append(stack, e.From)
		}
	}
	return out
}

// ReachableFrom returns every skill downstream of the given skill following
// required edges, excluding the skill itself.
func (g *Graph) ReachableFrom(id string) map[string]bool {
	out := make(map[string]bool)
	stack := []string{id}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, e := range g.dependents[cur] {
			if !e.Required() || out[e.To] {
				continue
			}
			out[e.To] = true
			stack = append(stack, e.To)
		}
	}
	return out
}
