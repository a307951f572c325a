package llm

import (
	"context"
	"time"

	"github.com/zpdlab/mentora/internal/logger"
)

// loggingProvider records latency, token usage, and failures for every
// generation call.
type loggingProvider struct {
	inner Provider
	log   *logger.Logger
}

// WithLogging wraps a provider with structured call logging.
func WithLogging(p Provider, log *logger.Logger) Provider {
	return &loggingProvider{inner: p, log: log.With("component", "llm")}
}

func (l *loggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	resp, err := l.inner.Generate(ctx, req)
	elapsed := time.Since(start)

	if err != nil {
		l.log.Warn("generation failed",
			"model", l.inner.ModelID(),
			"latencyMs", elapsed.Milliseconds(),
			"error", err,
		)
		return nil, err
	}

	l.log.Debug("generation complete",
		"model", resp.Model,
		"latencyMs", elapsed.Milliseconds(),
		"inputTokens", resp.Usage.InputTokens,
		"outputTokens", resp.Usage.OutputTokens,
		"stopReason", resp.StopReason,
	)
	return resp, nil
}

func (l *loggingProvider) ModelID() string { return l.inner.ModelID() }
