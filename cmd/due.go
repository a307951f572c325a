package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var dueCmd = &cobra.Command{
	Use:   "due <learner-id> <notebook-id>",
	Short: "List skills due for spaced review, most overdue first",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, _, log, err := openService(cmd)
		if err != nil {
			return err
		}
		defer log.Sync()

		due, err := svc.DueReviews(cmd.Context(), args[0], args[1], time.Now())
		if err != nil {
			return err
		}
		if len(due) == 0 {
			fmt.Println("Nothing due for review.")
			return nil
		}

		fmt.Printf("%-24s  %-8s  %-10s  %s\n", "Skill", "Mastery", "Due", "Overdue")
		for _, item := range due {
			fmt.Printf("%-24s  %-8.3f  %-10s  %.1fd\n",
				item.Skill.ID,
				item.State.PMastery,
				item.State.Review.DueAt.Local().Format("2006-01-02"),
				item.OverdueDays)
		}
		return nil
	},
}
