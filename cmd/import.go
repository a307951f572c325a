package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/zpdlab/mentora/internal/skillgraph"
)

// notebookFile is the on-disk import format for a notebook's graph.
type notebookFile struct {
	NotebookID string `json:"notebook_id"`
	Skills     []struct {
		ID               string  `json:"id"`
		Name             string  `json:"name"`
		Description      string  `json:"description,omitempty"`
		BloomLevel       int     `json:"bloom_level"`
		MasteryThreshold float64 `json:"mastery_threshold,omitempty"`
		EstimatedMins    int     `json:"estimated_mins"`
	} `json:"skills"`
	Edges []struct {
		From     string `json:"from"`
		To       string `json:"to"`
		Strength string `json:"strength"`
	} `json:"edges"`
}

var importCmd = &cobra.Command{
	Use:   "import <notebook.json>",
	Short: "Import a notebook's skill graph, replacing any previous version",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read notebook file: %w", err)
		}
		var nb notebookFile
		if err := json.Unmarshal(raw, &nb); err != nil {
			return fmt.Errorf("parse notebook file: %w", err)
		}
		if nb.NotebookID == "" {
			return fmt.Errorf("notebook file is missing notebook_id")
		}

		skills := make([]skillgraph.Skill, 0, len(nb.Skills))
		for _, s := range nb.Skills {
			skills = append(skills, skillgraph.Skill{
				ID:               s.ID,
				Name:             s.Name,
				Description:      s.Description,
				BloomLevel:       s.BloomLevel,
				MasteryThreshold: s.MasteryThreshold,
				EstimatedMins:    s.EstimatedMins,
				NotebookID:       nb.NotebookID,
			})
		}
		edges := make([]skillgraph.Edge, 0, len(nb.Edges))
		for _, e := range nb.Edges {
			edges = append(edges, skillgraph.Edge{
				From:     e.From,
				To:       e.To,
				Strength: skillgraph.EdgeStrength(e.Strength),
			})
		}

		// Validate before touching the database.
		if _, err := skillgraph.Build(skills, edges); err != nil {
			return fmt.Errorf("invalid skill graph: %w", err)
		}

		_, graphRepo, log, err := openService(cmd)
		if err != nil {
			return err
		}
		defer log.Sync()

		if err := graphRepo.ReplaceNotebook(cmd.Context(), nb.NotebookID, skills, edges); err != nil {
			return fmt.Errorf("store notebook: %w", err)
		}
		fmt.Printf("Imported notebook %s: %d skills, %d edges.\n",
			nb.NotebookID, len(skills), len(edges))
		return nil
	},
}
