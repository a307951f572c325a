package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/zpdlab/mentora/internal/learner"
	"github.com/zpdlab/mentora/internal/llm"
	"github.com/zpdlab/mentora/internal/logger"
	"github.com/zpdlab/mentora/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "mentora",
	Short: "Learner mastery engine",
	Long: "Mentora tracks what a learner knows (Bayesian knowledge tracing), " +
		"when to review it (spaced repetition), and what to learn next " +
		"(readiness and goal paths over a prerequisite graph).",
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides MENTORA_DB env var)")

	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(recordCmd)
	rootCmd.AddCommand(zpdCmd)
	rootCmd.AddCommand(pathCmd)
	rootCmd.AddCommand(dueCmd)
	rootCmd.AddCommand(dialogueCmd)
	rootCmd.AddCommand(fitCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveDBPath returns the database path using --db flag (highest
// priority), then MENTORA_DB env var, then the default XDG path.
func resolveDBPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}

// openService builds the service and its repos. The returned logger
// must be synced by the caller.
func openService(cmd *cobra.Command) (*learner.Service, *store.GraphRepo, *logger.Logger, error) {
	log, err := logger.New(os.Getenv("MENTORA_LOG_MODE"))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("build logger: %w", err)
	}

	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("resolve database path: %w", err)
	}
	db, err := store.Open(dbPath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("open database: %w", err)
	}

	graphRepo := store.NewGraphRepo(db, log)
	stateRepo := store.NewStateRepo(db, log)

	cfg := llm.ConfigFromEnv()
	provider, err := llm.NewProvider(cmd.Context(), cfg, log)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Text generator not configured:", err)
		fmt.Fprintln(os.Stderr, "Dialogue questions fall back to templates.")
		provider = nil
	}

	return learner.NewService(graphRepo, stateRepo, provider, cfg.Timeout, log), graphRepo, log, nil
}
