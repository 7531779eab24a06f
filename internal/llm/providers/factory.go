package providers

import (
	"fmt"

	"github.com/datasage-ai/datasage/internal/llm"
	"github.com/datasage-ai/datasage/internal/types"
)

// NewProvider creates an llm.Provider from the configuration.
func NewProvider(cfg llm.ProviderConfig) (llm.Provider, error) {
	switch cfg.Type {
	case "anthropic":
		return NewAnthropicProvider(cfg)

	case "openai":
		return NewOpenAIProvider(cfg)

	case "ollama":
		return NewOllamaProvider(cfg)

	case "mock":
		return NewMockProvider("mock response"), nil

	default:
		return nil, types.NewError(llm.ErrProviderNotFound,
			fmt.Sprintf("unknown provider type: %q", cfg.Type))
	}
}
