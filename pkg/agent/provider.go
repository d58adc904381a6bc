package agent

import (
	"context"
	"fmt"
)

// Provider is an LLM API backend.
type Provider interface {
	// Call makes a single LLM API call.
	Call(ctx context.Context, request Request) (*Response, error)

	// Name returns the provider name.
	Name() string
}

// NewProvider creates a provider by name.
func NewProvider(name, apiKey string) (Provider, error) {
	switch name {
	case "openai":
		return NewOpenAIProvider(apiKey), nil
	case "anthropic":
		return NewAnthropicProvider(apiKey), nil
	default:
		return nil, fmt.Errorf("unsupported provider: %s", name)
	}
}
