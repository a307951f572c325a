package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var fitCmd = &cobra.Command{
	Use:   "fit <notebook-id>",
	Short: "Refit per-skill knowledge-tracing parameters from the attempt log",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, _, log, err := openService(cmd)
		if err != nil {
			return err
		}
		defer log.Sync()

		outcomes, err := svc.FitSkillParams(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		fitted := 0
		for _, out := range outcomes {
			if out.Err != nil {
				fmt.Printf("%-24s  skipped: %v\n", out.SkillID, out.Err)
				continue
			}
			fitted++
			p := out.Result.Params
			fmt.Printf("%-24s  init %.2f  learn %.2f  slip %.2f  guess %.2f  (n=%d, auc %.2f, brier %.3f)\n",
				out.SkillID, p.PInit, p.PLearn, p.PSlip, p.PGuess,
				out.Result.Samples, out.Result.Calibration.AUC, out.Result.Calibration.Brier)
		}
		fmt.Printf("Fitted %d of %d skills.\n", fitted, len(outcomes))
		return nil
	},
}
