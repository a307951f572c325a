package dialogue

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/zpdlab/mentora/internal/llm"
	"github.com/zpdlab/mentora/internal/logger"
)

// Phraser turns a question type into student-facing wording. It asks the
// text generator for phrasing but always has a deterministic template to
// fall back on, so a slow or failing generator never blocks a dialogue.
type Phraser struct {
	provider llm.Provider
	log      *logger.Logger
	timeout  time.Duration
}

// NewPhraser builds a Phraser. provider may be nil, in which case only
// the templates are used.
func NewPhraser(provider llm.Provider, log *logger.Logger, timeout time.Duration) *Phraser {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Phraser{provider: provider, log: log, timeout: timeout}
}

// Question phrases the next tutor question. lastResponse may be empty for
// the opening question.
func (p *Phraser) Question(ctx context.Context, qt QuestionType, targetConcept, lastResponse string) string {
	if p.provider == nil {
		return FallbackQuestion(qt, targetConcept)
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	prompt := fmt.Sprintf(
		"Ask one short %s question to guide a student toward discovering: %s.",
		qt, targetConcept)
	if lastResponse != "" {
		prompt += fmt.Sprintf(" The student just said: %q. Build on it without revealing the answer.", lastResponse)
	}

	resp, err := p.provider.Generate(ctx, llm.Request{
		System:    "You are a Socratic tutor. Never state the answer directly.",
		Messages:  []llm.Message{{Role: llm.RoleUser, Content: prompt}},
		MaxTokens: 200,
	})
	if err != nil {
		p.log.Warn("question phrasing failed, using template", "questionType", qt, "error", err)
		return FallbackQuestion(qt, targetConcept)
	}

	// Unconstrained requests return plain text, though some gateways wrap
	// it as a JSON string.
	text := string(resp.Content)
	var unquoted string
	if err := json.Unmarshal(resp.Content, &unquoted); err == nil {
		text = unquoted
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return FallbackQuestion(qt, targetConcept)
	}
	return text
}

// FallbackQuestion is the deterministic template per question type.
func FallbackQuestion(qt QuestionType, targetConcept string) string {
	switch qt {
	case QuestionClarifying:
		return fmt.Sprintf("In your own words, what do you understand about %s so far?", targetConcept)
	case QuestionProbingAssumption:
		return fmt.Sprintf("What are you assuming must be true about %s? How could you check that?", targetConcept)
	case QuestionHypothesisTesting:
		return fmt.Sprintf("If your idea about %s is right, what would you expect to happen in a simple example?", targetConcept)
	case QuestionGeneralizing:
		return fmt.Sprintf("Does your reasoning about %s hold in every case you can think of? When might it break?", targetConcept)
	default:
		return fmt.Sprintf("Tell me more about how you are thinking about %s.", targetConcept)
	}
}
