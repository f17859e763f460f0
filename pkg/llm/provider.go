// Package llm connects chat sessions to hosted language-model APIs. It
// exposes a Provider interface with OpenAI and Anthropic implementations and
// a Responder that plugs a provider into a chat session.
package llm

import (
	"context"
	"fmt"

	"docqna/pkg/chat"
)

// Request contains the parameters for one completion call.
type Request struct {
	Model       string
	Messages    []chat.Turn
	MaxTokens   int
	Temperature float64
}

// Response contains the completion and its token accounting.
type Response struct {
	Content string
	Usage   *TokenUsage
}

// TokenUsage tracks token consumption.
type TokenUsage struct {
	InputTokens  int
	OutputTokens int
}

// Provider is an interface for LLM API providers.
type Provider interface {
	// Complete makes a completion call over the full conversation.
	Complete(ctx context.Context, request Request) (*Response, error)

	// Name returns the provider name.
	Name() string
}

// Config selects and authenticates a provider.
type Config struct {
	// Provider is "openai" or "anthropic".
	Provider string

	APIKey string

	// BaseURL points the client at a compatible endpoint instead of the
	// provider's default. Optional.
	BaseURL string
}

// New creates a provider from cfg.
func New(cfg Config) (Provider, error) {
	switch cfg.Provider {
	case "openai":
		return NewOpenAIProvider(cfg.APIKey, cfg.BaseURL), nil
	case "anthropic":
		return NewAnthropicProvider(cfg.APIKey, cfg.BaseURL), nil
	default:
		return nil, fmt.Errorf("unsupported provider: %s", cfg.Provider)
	}
}
