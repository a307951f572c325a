package dialogue

import (
	"encoding/json"
	"fmt"

	"github.com/zpdlab/mentora/internal/llm"
)

// AnalysisSchema is the structured-output contract for response analysis
// when a text generator produces it. The engine itself only ever consumes
// the parsed Analysis value.
func AnalysisSchema() *llm.Schema {
	return &llm.Schema{
		Name:        "response-analysis",
		Description: "Judgment of a student's response in a Socratic dialogue",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"understanding": map[string]any{
					"type": "string",
					"enum": []any{"none", "partial", "advancing", "complete"},
				},
				"discovery_made":           map[string]any{"type": "boolean"},
				"discovery_description":    map[string]any{"type": "string"},
				"misconceptions_addressed": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
				"self_advanced":            map[string]any{"type": "boolean"},
			},
			"required":             []any{"understanding", "discovery_made"},
			"additionalProperties": false,
		},
	}
}

type analysisPayload struct {
	Understanding           string   `json:"understanding"`
	DiscoveryMade           bool     `json:"discovery_made"`
	DiscoveryDescription    string   `json:"discovery_description"`
	MisconceptionsAddressed []string `json:"misconceptions_addressed"`
	SelfAdvanced            bool     `json:"self_advanced"`
}

// ParseAnalysis decodes a generator response conforming to AnalysisSchema.
func ParseAnalysis(raw json.RawMessage) (Analysis, error) {
	var p analysisPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return Analysis{}, fmt.Errorf("decode analysis: %w", err)
	}

	var u Understanding
	switch p.Understanding {
	case "none":
		u = UnderstandingNone
	case "partial":
		u = UnderstandingPartial
	case "advancing":
		u = UnderstandingAdvancing
	case "complete":
		u = UnderstandingComplete
	default:
		return Analysis{}, fmt.Errorf("unknown understanding level %q", p.Understanding)
	}

	return Analysis{
		Understanding:           u,
		DiscoveryMade:           p.DiscoveryMade,
		DiscoveryDescription:    p.DiscoveryDescription,
		MisconceptionsAddressed: p.MisconceptionsAddressed,
		SelfAdvanced:            p.SelfAdvanced,
	}, nil
}
