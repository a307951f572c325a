// Package llm is the text-generator collaborator: the dialogue engine
// asks it to phrase questions and judge responses. It is treated as slow
// and unreliable; every call site has a deterministic fallback.
package llm

import (
	"context"
	"encoding/json"
)

// Provider generates text (optionally schema-constrained JSON) from a
// prompt. Implementations wrap one vendor SDK.
type Provider interface {
	// Generate sends the request and returns the model output. When
	// Request.Schema is set the returned Content is JSON validated
	// against it; otherwise Content is the raw text.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID reports the configured model identifier.
	ModelID() string
}

// Role identifies a message sender.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn of conversation context.
type Message struct {
	Role    Role
	Content string
}

// Schema constrains the response to a JSON structure.
type Schema struct {
	Name        string
	Description string
	Definition  map[string]any
}

// Request describes a single generation call.
type Request struct {
	System      string
	Messages    []Message
	Schema      *Schema
	MaxTokens   int
	Temperature float64
}

// Usage reports token consumption for one call.
type Usage struct {
	InputTokens  int
	OutputTokens int
}

// Response is the model output.
type Response struct {
	Content json.RawMessage
	Usage   Usage
	Model   string
	// StopReason is normalized to "end" or "max_tokens".
	StopReason string
}
