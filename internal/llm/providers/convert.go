package providers

import (
	"github.com/google/uuid"
	"github.com/tmc/langchaingo/llms"

	"github.com/datasage-ai/datasage/internal/llm"
)

// toLangchainMessages converts our messages to langchaingo MessageContent.
func toLangchainMessages(messages []llm.Message) []llms.MessageContent {
	result := make([]llms.MessageContent, 0, len(messages))

	for _, msg := range messages {
		role := llms.ChatMessageTypeHuman
		switch msg.Role {
		case llm.RoleSystem:
			role = llms.ChatMessageTypeSystem
		case llm.RoleAssistant:
			role = llms.ChatMessageTypeAI
		case llm.RoleUser:
			role = llms.ChatMessageTypeHuman
		}
		result = append(result, llms.MessageContent{
			Role:  role,
			Parts: []llms.ContentPart{llms.TextPart(msg.Content)},
		})
	}
	return result
}

// fromLangchainResponse converts a langchaingo response to ours.
func fromLangchainResponse(resp *llms.ContentResponse, model string) *llm.CompletionResponse {
	out := &llm.CompletionResponse{
		ID:    uuid.New().String(),
		Model: model,
	}
	if resp != nil && len(resp.Choices) > 0 {
		out.Content = resp.Choices[0].Content
	}
	return out
}

// buildCallOptions maps request knobs to langchaingo call options.
func buildCallOptions(req llm.CompletionRequest) []llms.CallOption {
	var opts []llms.CallOption
	if req.Model != "" {
		opts = append(opts, llms.WithModel(req.Model))
	}
	if req.MaxTokens > 0 {
		opts = append(opts, llms.WithMaxTokens(req.MaxTokens))
	}
	if req.Temperature > 0 {
		opts = append(opts, llms.WithTemperature(req.Temperature))
	}
	return opts
}
