package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var zpdCmd = &cobra.Command{
	Use:   "zpd <learner-id> <notebook-id>",
	Short: "Show the learner's zone of proximal development",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		svc, _, log, err := openService(cmd)
		if err != nil {
			return err
		}
		defer log.Sync()

		zpd, err := svc.ComputeZPD(cmd.Context(), args[0], args[1], limit)
		if err != nil {
			return err
		}
		if len(zpd) == 0 {
			fmt.Println("Nothing in the zone right now. Review due skills or pick a goal path.")
			return nil
		}

		fmt.Printf("%-24s  %-5s  %-5s  %-7s  %s\n", "Skill", "Bloom", "Jump", "Prereq", "Mins")
		for _, c := range zpd {
			fmt.Printf("%-24s  %-5d  %-5d  %-7.2f  %d\n",
				c.Skill.ID, c.Skill.BloomLevel, c.BloomJump, c.PrereqScore, c.Skill.EstimatedMins)
		}
		return nil
	},
}

func init() {
	zpdCmd.Flags().Int("limit", 0, "Maximum candidates to show (0 = all)")
}
