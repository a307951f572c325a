package skillgraph

import (
	"fmt"
	"strings"
)

// CycleError reports a prerequisite cycle. Planning must abort on it
// rather than loop; it indicates corrupt graph data upstream.
type CycleError struct {
	SkillIDs []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("prerequisite cycle involving skills: %s", strings.Join(e.SkillIDs, ", "))
}
