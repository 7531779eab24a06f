package llm

import "context"

// Provider defines the interface all text-generation backends implement.
// It is a unified abstraction over different model services (Anthropic
// Claude, OpenAI GPT, local Ollama models).
type Provider interface {
	// Name returns the provider name (e.g., "anthropic", "openai", "ollama").
	Name() string

	// Complete sends a completion request and returns the full response.
	// This is a blocking call that waits for the entire response.
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
}

// ProviderConfig holds the settings needed to construct a provider.
type ProviderConfig struct {
	// Type selects the backend: "anthropic", "openai", "ollama" or "mock".
	Type string `mapstructure:"provider" yaml:"provider"`

	// APIKey authenticates against the hosted backends. Falls back to the
	// backend's conventional environment variable when empty.
	APIKey string `mapstructure:"api_key" yaml:"api_key,omitempty"`

	// BaseURL overrides the backend endpoint (Ollama server, proxies).
	BaseURL string `mapstructure:"base_url" yaml:"base_url,omitempty"`

	// DefaultModel is used when a request does not name a model.
	DefaultModel string `mapstructure:"model" yaml:"model"`
}
