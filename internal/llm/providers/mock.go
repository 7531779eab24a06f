package providers

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/datasage-ai/datasage/internal/llm"
)

// MockCall records one call made to the mock provider.
type MockCall struct {
	Request llm.CompletionRequest
}

// MockProvider implements llm.Provider for testing. It replays canned
// responses in order and records every request it receives.
type MockProvider struct {
	mu        sync.Mutex
	responses []string
	index     int
	calls     []MockCall
	err       error
}

// NewMockProvider creates a mock provider that cycles through responses.
func NewMockProvider(responses ...string) *MockProvider {
	return &MockProvider{responses: responses}
}

// FailWith makes every subsequent Complete call return err.
func (p *MockProvider) FailWith(err error) *MockProvider {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.err = err
	return p
}

// Name returns the provider name.
func (p *MockProvider) Name() string {
	return "mock"
}

// Complete replays the next canned response.
func (p *MockProvider) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.calls = append(p.calls, MockCall{Request: req})

	if p.err != nil {
		return nil, p.err
	}
	if len(p.responses) == 0 {
		return nil, llm.TranslateError("mock", fmt.Errorf("no responses configured"))
	}

	response := p.responses[p.index%len(p.responses)]
	p.index++

	return &llm.CompletionResponse{
		ID:      uuid.New().String(),
		Model:   req.Model,
		Content: response,
	}, nil
}

// Calls returns a copy of all recorded calls.
func (p *MockProvider) Calls() []MockCall {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]MockCall, len(p.calls))
	copy(out, p.calls)
	return out
}
