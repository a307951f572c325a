package planner

import "github.com/zpdlab/mentora/internal/skillgraph"

// DayPlan is one day's worth of a learning path.
type DayPlan struct {
	Day          int
	Skills       []skillgraph.Skill
	TotalMinutes int
}

// ChunkByDay packs a path into day buckets in path order, never
// reordering. A new day starts when the next skill would blow the
// remaining budget, except into an empty day, which always accepts one
// skill so oversized skills still make progress.
func ChunkByDay(path []skillgraph.Skill, dailyBudgetMins int) []DayPlan {
	if len(path) == 0 || dailyBudgetMins <= 0 {
		return nil
	}

	var days []DayPlan
	current := DayPlan{Day: 1}
	for _, s := range path {
		if len(current.Skills) > 0 && current.TotalMinutes+s.EstimatedMins > dailyBudgetMins {
			days = append(days, current)
			current = DayPlan{Day: current.Day + 1}
		}
		current.Skills = append(current.Skills, s)
		current.TotalMinutes += s.EstimatedMins
	}
	return append(days, current)
}
