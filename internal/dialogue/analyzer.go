package dialogue

import (
	"context"
	"fmt"
	"time"

	"github.com/zpdlab/mentora/internal/llm"
	"github.com/zpdlab/mentora/internal/logger"
)

// Analyzer judges student responses through the text generator. A failed
// or missing generator degrades to a conservative judgment (partial
// understanding, nothing discovered) so the dialogue keeps moving.
type Analyzer struct {
	provider llm.Provider
	log      *logger.Logger
	timeout  time.Duration
}

// NewAnalyzer builds an Analyzer. provider may be nil.
func NewAnalyzer(provider llm.Provider, log *logger.Logger, timeout time.Duration) *Analyzer {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Analyzer{provider: provider, log: log, timeout: timeout}
}

// Analyze judges one student response against the target concept and the
// still-open misconceptions.
func (a *Analyzer) Analyze(ctx context.Context, targetConcept, question, response string, openMisconceptions []string) Analysis {
	fallback := Analysis{Understanding: UnderstandingPartial}
	if a.provider == nil {
		return fallback
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	prompt := fmt.Sprintf(
		"Target concept: %s.\nTutor question: %q.\nStudent response: %q.\n",
		targetConcept, question, response)
	if len(openMisconceptions) > 0 {
		prompt += fmt.Sprintf("Known misconceptions still open: %q.\n", openMisconceptions)
	}
	prompt += "Judge the response. discovery_made is true only when the student " +
		"has articulated the target concept themselves. misconceptions_addressed " +
		"lists open misconceptions the response shows are resolved, verbatim."

	resp, err := a.provider.Generate(ctx, llm.Request{
		System:    "You judge student responses in a Socratic dialogue. Be strict about discovery.",
		Messages:  []llm.Message{{Role: llm.RoleUser, Content: prompt}},
		Schema:    AnalysisSchema(),
		MaxTokens: 400,
	})
	if err != nil {
		a.log.Warn("response analysis failed, assuming partial understanding", "error", err)
		return fallback
	}
	analysis, err := ParseAnalysis(resp.Content)
	if err != nil {
		a.log.Warn("response analysis unparseable, assuming partial understanding", "error", err)
		return fallback
	}
	return analysis
}
