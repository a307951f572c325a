package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zpdlab/mentora/internal/learner"
)

var recordCmd = &cobra.Command{
	Use:   "record <learner-id> <skill-id>",
	Short: "Record a practice attempt and update the mastery model",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		correct, _ := cmd.Flags().GetBool("correct")
		responseMs, _ := cmd.Flags().GetInt("time-ms")
		expectedMs, _ := cmd.Flags().GetInt("expected-ms")
		attemptID, _ := cmd.Flags().GetString("attempt-id")

		svc, _, log, err := openService(cmd)
		if err != nil {
			return err
		}
		defer log.Sync()

		res, err := svc.RecordPracticeAttempt(cmd.Context(), learner.PracticeAttempt{
			AttemptID:      attemptID,
			LearnerID:      args[0],
			SkillID:        args[1],
			Correct:        correct,
			ResponseTimeMs: responseMs,
			ExpectedTimeMs: expectedMs,
		})
		if err != nil {
			return err
		}

		if res.Replayed {
			fmt.Println("Attempt already recorded; nothing changed.")
			return nil
		}
		fmt.Printf("Mastery:   %.3f (%s)\n", res.State.PMastery, res.Status)
		fmt.Printf("Grade:     %d/5\n", res.Grade)
		fmt.Printf("Next due:  %s (interval %dd)\n",
			res.State.Review.DueAt.Local().Format("2006-01-02"), res.State.Review.IntervalDays)
		fmt.Printf("Scaffold:  level %d\n", res.State.ScaffoldLevel)
		if res.NewlyMastered {
			fmt.Println("Skill newly mastered!")
		}
		return nil
	},
}

func init() {
	recordCmd.Flags().Bool("correct", false, "The answer was correct")
	recordCmd.Flags().Int("time-ms", 0, "Response time in milliseconds (0 = unknown)")
	recordCmd.Flags().Int("expected-ms", 0, "Expected response time in milliseconds (0 = unknown)")
	recordCmd.Flags().String("attempt-id", "", "Idempotency key; replays are no-ops")
}
