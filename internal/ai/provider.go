package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Provider is the interface that all LLM providers must implement.
type Provider interface {
	// Complete sends one chat-completion request and returns the text of the
	// first choice. An empty string with a nil error means the model produced
	// no content. Non-2xx responses are reported as *StatusError.
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// StatusError is a non-success HTTP response from a provider API.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("API error (status %d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("API error: status %d", e.StatusCode)
}

// IsRateLimited reports whether err is, or wraps, an HTTP 429 from a provider.
func IsRateLimited(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == http.StatusTooManyRequests
}

// NewProvider creates the appropriate provider based on config.
func NewProvider(cfg ProviderConfig) (Provider, error) {
	switch cfg.Provider {
	case "anthropic":
		return NewAnthropicProvider(cfg.APIKey, cfg.Model, cfg.BaseURL), nil
	case "openai":
		return NewOpenAIProvider(cfg.APIKey, cfg.Model, cfg.BaseURL), nil
	default:
		return nil, fmt.Errorf("unsupported AI provider: %s", cfg.Provider)
	}
}
