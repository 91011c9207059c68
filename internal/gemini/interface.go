package gemini

import (
	"context"

	"github.com/divyampandey/pixel-llm-server-go/internal/llm"
)

// LLM is the chat client interface. Handlers depend on this so tests
// can inject a mock.
type LLM interface {
	Chat(ctx context.Context, req Request) (llm.ChatResult, error)
}

var _ LLM = (*Client)(nil)
