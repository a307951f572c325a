package skillgraph

// EdgeStrength classifies how strongly a prerequisite binds.
type EdgeStrength string

const (
	// StrengthRequired edges gate readiness: the prerequisite must be
	// mastered before the dependent skill is considered reachable.
	StrengthRequired EdgeStrength = "required"
	// StrengthRecommended edges are advisory and never block readiness.
	StrengthRecommended EdgeStrength = "recommended"
)

// Bloom level bounds (ordinal taxonomy: remember=1 .. create=6).
const (
	BloomMin = 1
	BloomMax = 6
)

// DefaultMasteryThreshold is used when a skill doesn't carry its own.
const DefaultMasteryThreshold = 0.8

// Skill is a single node in a notebook's prerequisite graph.
// Immutable from the core's point of view; metadata edits happen upstream.
type Skill struct {
	ID               string
	Name             string
	Description      string
	BloomLevel       int
	MasteryThreshold float64
	EstimatedMins    int
	NotebookID       string
}

// Threshold returns the skill's mastery threshold, falling back to the
// default when unset.
func (s Skill) Threshold() float64 {
	if s.MasteryThreshold <= 0 {
		return DefaultMasteryThreshold
	}
	return s.MasteryThreshold
}

// Edge is a directed prerequisite: From must be learned before To.
type Edge struct {
	From     string
	To       string
	Strength EdgeStrength
}

// Required reports whether the edge gates readiness.
func (e Edge) Required() bool {
	return e.Strength == StrengthRequired
}
