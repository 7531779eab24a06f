package providers

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datasage-ai/datasage/internal/llm"
	"github.com/datasage-ai/datasage/internal/types"
)

func TestNewProviderRejectsUnknownType(t *testing.T) {
	_, err := NewProvider(llm.ProviderConfig{Type: "carrier-pigeon"})
	require.Error(t, err)
	assert.Equal(t, llm.ErrProviderNotFound, types.CodeOf(err))
}

func TestNewProviderMock(t *testing.T) {
	p, err := NewProvider(llm.ProviderConfig{Type: "mock"})
	require.NoError(t, err)
	assert.Equal(t, "mock", p.Name())
}

func TestMockProviderReplaysResponsesInOrder(t *testing.T) {
	p := NewMockProvider("one", "two")

	req := llm.CompletionRequest{Messages: []llm.Message{llm.NewUserMessage("hi")}}

	first, err := p.Complete(context.Background(), req)
	require.NoError(t, err)
	second, err := p.Complete(context.Background(), req)
	require.NoError(t, err)
	third, err := p.Complete(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, "one", first.Content)
	assert.Equal(t, "two", second.Content)
	assert.Equal(t, "one", third.Content)
	assert.Len(t, p.Calls(), 3)
}

func TestMockProviderFailWith(t *testing.T) {
	boom := errors.New("service unavailable")
	p := NewMockProvider("unused").FailWith(boom)

	_, err := p.Complete(context.Background(), llm.CompletionRequest{
		Messages: []llm.Message{llm.NewUserMessage("hi")},
	})
	require.ErrorIs(t, err, boom)
}
