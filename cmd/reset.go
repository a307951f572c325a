package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset <learner-id> <notebook-id>",
	Short: "Delete a learner's progress in a notebook",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")
		if !yes {
			return fmt.Errorf("this deletes all of %s's progress in %s; re-run with --yes to confirm", args[0], args[1])
		}

		svc, _, log, err := openService(cmd)
		if err != nil {
			return err
		}
		defer log.Sync()

		if err := svc.ResetProgress(cmd.Context(), args[0], args[1]); err != nil {
			return err
		}
		fmt.Printf("Progress for %s in %s deleted.\n", args[0], args[1])
		return nil
	},
}

func init() {
	resetCmd.Flags().Bool("yes", false, "Confirm deletion")
}
