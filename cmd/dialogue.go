package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zpdlab/mentora/internal/dialogue"
)

var dialogueCmd = &cobra.Command{
	Use:   "dialogue <learner-id> <skill-id> <target-concept>",
	Short: "Run an interactive Socratic dialogue on a skill",
	Long: "Runs a guided questioning session toward the target concept. " +
		"Responses are read from stdin; an empty line ends the session early. " +
		"A discovery feeds the learner's mastery model.",
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		misconceptions, _ := cmd.Flags().GetStringSlice("misconception")

		svc, _, log, err := openService(cmd)
		if err != nil {
			return err
		}
		defer log.Sync()

		ctx := cmd.Context()
		sess, err := svc.StartDialogue(ctx, args[0], args[1], args[2], misconceptions)
		if err != nil {
			return err
		}

		reader := bufio.NewReader(os.Stdin)
		for !sess.Done() {
			fmt.Printf("\nTutor: %s\n> ", sess.NextQuestion)
			line, err := reader.ReadString('\n')
			if err != nil {
				break
			}
			response := strings.TrimSpace(line)
			if response == "" {
				break
			}
			sess, err = svc.AnalyzeAndAdvance(ctx, sess, response)
			if err != nil {
				return err
			}
		}

		final, eff := svc.EndDialogue(sess)
		fmt.Println()
		switch final.EndReason {
		case dialogue.ReasonDiscovery:
			fmt.Printf("Discovery: %s\n", final.DiscoveryDescription)
		case dialogue.ReasonMisconceptionsAddressed:
			fmt.Println("All tracked misconceptions addressed.")
		case dialogue.ReasonBudgetExhausted:
			fmt.Println("Question budget spent without a breakthrough.")
		default:
			fmt.Println("Session ended.")
		}
		fmt.Printf("Exchanges: %d  Effectiveness: %.2f (self-discovery %.2f, efficiency %.2f, misconceptions %.2f)\n",
			len(final.Exchanges), eff.Score,
			eff.SelfDiscoveryRate, eff.ExchangeEfficiency, eff.MisconceptionsAddressed)
		return nil
	},
}

func init() {
	dialogueCmd.Flags().StringSlice("misconception", nil, "Known misconception to address (repeatable)")
}
