package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zpdlab/mentora/internal/learner"
)

var pathCmd = &cobra.Command{
	Use:   "path <learner-id> <notebook-id> <goal-skill-id>",
	Short: "Generate an ordered learning path to a goal skill",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		dailyMins, _ := cmd.Flags().GetInt("daily-mins")

		svc, _, log, err := openService(cmd)
		if err != nil {
			return err
		}
		defer log.Sync()

		plan, err := svc.GenerateLearningPath(cmd.Context(), args[0], args[1], args[2],
			learner.PathPreferences{DailyBudgetMins: dailyMins})
		if err != nil {
			return err
		}
		if plan.Path.Message != "" {
			fmt.Println(plan.Path.Message)
			return nil
		}

		threshold := make(map[string]bool, len(plan.Path.ThresholdConcepts))
		for _, id := range plan.Path.ThresholdConcepts {
			threshold[id] = true
		}

		fmt.Printf("Path to %s (%d skills, ~%d minutes):\n",
			args[2], len(plan.Path.Skills), plan.Path.TotalEstimatedMinutes)
		for i, s := range plan.Path.Skills {
			mark := ""
			if threshold[s.ID] {
				mark = "  [threshold concept]"
			}
			fmt.Printf("%2d. %-24s  bloom %d, ~%dmin%s\n", i+1, s.ID, s.BloomLevel, s.EstimatedMins, mark)
		}

		for _, day := range plan.Days {
			fmt.Printf("\nDay %d (%d min):", day.Day, day.TotalMinutes)
			for _, s := range day.Skills {
				fmt.Printf(" %s", s.ID)
			}
		}
		if len(plan.Days) > 0 {
			fmt.Println()
		}
		return nil
	},
}

func init() {
	pathCmd.Flags().Int("daily-mins", 0, "Daily study budget in minutes; chunks the path into days")
}
