package llm

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func fastRetry(attempts int) RetryConfig {
	return RetryConfig{
		MaxAttempts: attempts,
		InitialWait: time.Millisecond,
		MaxWait:     5 * time.Millisecond,
		Multiplier:  2.0,
	}
}

func TestRetrySucceedsAfterTransientFailure(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Err: &ErrUnavailable{}},
		MockResponse{Content: json.RawMessage(`"ok"`)},
	)
	p := WithRetry(mock, fastRetry(3))

	resp, err := p.Generate(context.Background(), Request{MaxTokens: 10})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if string(resp.Content) != `"ok"` {
		t.Errorf("content = %s", resp.Content)
	}
	if mock.CallCount() != 2 {
		t.Errorf("calls = %d, want 2", mock.CallCount())
	}
}

func TestRetryGivesUpAfterMaxAttempts(t *testing.T) {
	mock := NewMockProvider() // empty queue: always unavailable
	p := WithRetry(mock, fastRetry(3))

	_, err := p.Generate(context.Background(), Request{})
	var unavail *ErrUnavailable
	if !errors.As(err, &unavail) {
		t.Fatalf("err = %v, want ErrUnavailable", err)
	}
	if mock.CallCount() != 3 {
		t.Errorf("calls = %d, want 3", mock.CallCount())
	}
}

func TestBadResponseRetriedOnce(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Err: &ErrBadResponse{Err: errors.New("bad json")}},
		MockResponse{Err: &ErrBadResponse{Err: errors.New("bad json again")}},
		MockResponse{Content: json.RawMessage(`"never reached"`)},
	)
	p := WithRetry(mock, fastRetry(5))

	_, err := p.Generate(context.Background(), Request{})
	var bad *ErrBadResponse
	if !errors.As(err, &bad) {
		t.Fatalf("err = %v, want ErrBadResponse", err)
	}
	if mock.CallCount() != 2 {
		t.Errorf("calls = %d, want 2 (one retry for bad output)", mock.CallCount())
	}
}

func TestCancelledContextNotRetried(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	mock := NewMockProvider(MockResponse{Err: ctx.Err()})
	p := WithRetry(mock, fastRetry(4))

	_, err := p.Generate(ctx, Request{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if mock.CallCount() != 1 {
		t.Errorf("calls = %d, want 1", mock.CallCount())
	}
}

func TestValidateResponse(t *testing.T) {
	schema := &Schema{
		Name: "greeting",
		Definition: map[string]any{
			"type":                 "object",
			"properties":           map[string]any{"word": map[string]any{"type": "string"}},
			"required":             []any{"word"},
			"additionalProperties": false,
		},
	}

	if err := validateResponse(schema, json.RawMessage(`{"word":"hi"}`)); err != nil {
		t.Errorf("valid payload rejected: %v", err)
	}

	err := validateResponse(schema, json.RawMessage(`{"number":3}`))
	var bad *ErrBadResponse
	if !errors.As(err, &bad) {
		t.Errorf("invalid payload gave %v, want ErrBadResponse", err)
	}

	if err := validateResponse(nil, json.RawMessage(`anything`)); err != nil {
		t.Errorf("nil schema should skip validation, got %v", err)
	}
}
