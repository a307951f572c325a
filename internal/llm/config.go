package llm

import (
	"fmt"
	"os"
	"time"
)

// Config selects and configures the generator backend.
type Config struct {
	// Provider is one of "anthropic", "openai", "gemini", "mock".
	// OpenAI-compatible gateways (OpenRouter etc.) use "openai" with a
	// BaseURL override.
	Provider string

	Anthropic VendorConfig
	OpenAI    VendorConfig
	Gemini    VendorConfig

	Retry   RetryConfig
	Timeout time.Duration
}

// VendorConfig is the per-vendor connection configuration.
type VendorConfig struct {
	APIKey  string
	Model   string
	BaseURL string // OpenAI-compatible endpoints only
}

// RetryConfig bounds retries of transient generator failures.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// DefaultConfig returns sensible defaults; API keys come from env.
func DefaultConfig() Config {
	return Config{
		Provider:  "anthropic",
		Anthropic: VendorConfig{Model: "claude-haiku-4-5-20251001"},
		OpenAI:    VendorConfig{Model: "gpt-4o-mini"},
		Gemini:    VendorConfig{Model: "gemini-2.0-flash"},
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2.0,
		},
		Timeout: 30 * time.Second,
	}
}

// ConfigFromEnv reads MENTORA_* variables over the defaults. When
// MENTORA_LLM_PROVIDER is unset, the first vendor with a key set wins;
// with nothing set the provider falls back to "mock" so the engine's
// deterministic templates carry the session.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()

	cfg.Anthropic.APIKey = os.Getenv("MENTORA_ANTHROPIC_API_KEY")
	cfg.OpenAI.APIKey = os.Getenv("MENTORA_OPENAI_API_KEY")
	cfg.Gemini.APIKey = os.Getenv("MENTORA_GEMINI_API_KEY")

	if m := os.Getenv("MENTORA_ANTHROPIC_MODEL"); m != "" {
		cfg.Anthropic.Model = m
	}
	if m := os.Getenv("MENTORA_OPENAI_MODEL"); m != "" {
		cfg.OpenAI.Model = m
	}
	if u := os.Getenv("MENTORA_OPENAI_BASE_URL"); u != "" {
		cfg.OpenAI.BaseURL = u
	}
	if m := os.Getenv("MENTORA_GEMINI_MODEL"); m != "" {
		cfg.Gemini.Model = m
	}

	if p := os.Getenv("MENTORA_LLM_PROVIDER"); p != "" {
		cfg.Provider = p
		return cfg
	}

	switch {
	case cfg.Anthropic.APIKey != "":
		cfg.Provider = "anthropic"
	case cfg.OpenAI.APIKey != "":
		cfg.Provider = "openai"
	case cfg.Gemini.APIKey != "":
		cfg.Provider = "gemini"
	default:
		cfg.Provider = "mock"
	}
	return cfg
}

// Validate checks the selected vendor has what it needs.
func (c Config) Validate() error {
	switch c.Provider {
	case "anthropic":
		if c.Anthropic.APIKey == "" {
			return fmt.Errorf("MENTORA_ANTHROPIC_API_KEY is required for the anthropic provider")
		}
	case "openai":
		if c.OpenAI.APIKey == "" {
			return fmt.Errorf("MENTORA_OPENAI_API_KEY is required for the openai provider")
		}
	case "gemini":
		if c.Gemini.APIKey == "" {
			return fmt.Errorf("MENTORA_GEMINI_API_KEY is required for the gemini provider")
		}
	case "mock":
	default:
		return fmt.Errorf("unknown generator provider %q", c.Provider)
	}
	return nil
}
