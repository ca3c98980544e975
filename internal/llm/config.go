package llm

import (
	"errors"
	"fmt"
	"net/url"
)

const (
	DefaultEndpoint    = "https://api.openai.com/v1/chat/completions"
	DefaultModel       = "gpt-4o-mini"
	DefaultTemperature = 0.7
	DefaultMaxTokens   = 1000
)

// Config holds all configuration for the completion client.
type Config struct {
	Endpoint    string
	Model       string
	Temperature float64
	MaxTokens   int
	// TimeoutMs bounds a single call when > 0. Zero leaves cancellation to
	// the caller's context.
	TimeoutMs int
	LogCalls  bool
}

// DefaultConfig returns the OpenAI chat-completions defaults.
func DefaultConfig() Config {
	return Config{
		Endpoint:    DefaultEndpoint,
		Model:       DefaultModel,
		Temperature: DefaultTemperature,
		MaxTokens:   DefaultMaxTokens,
	}
}

// Validate rejects configurations the remote API would refuse anyway.
func (c Config) Validate() error {
	u, err := url.Parse(c.Endpoint)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("llm endpoint %q is not an absolute url", c.Endpoint)
	}
	if c.Model == "" {
		return errors.New("llm model is required")
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("llm temperature %.2f out of range [0,2]", c.Temperature)
	}
	if c.MaxTokens <= 0 {
		return fmt.Errorf("llm max_tokens must be positive, got %d", c.MaxTokens)
	}
	if c.TimeoutMs < 0 {
		return fmt.Errorf("llm timeout_ms must not be negative, got %d", c.TimeoutMs)
	}
	return nil
}
