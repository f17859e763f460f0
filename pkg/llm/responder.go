package llm

import (
	"context"

	"github.com/rs/zerolog"

	"docqna/pkg/chat"
)

// Options carries the inference arguments applied to every completion call.
type Options struct {
	Model       string
	MaxTokens   int
	Temperature float64
}

// Responder adapts a Provider to chat.Responder. Provider errors pass
// through unmodified so the session can classify them.
type Responder struct {
	provider Provider
	opts     Options
	logger   zerolog.Logger
}

// NewResponder creates a responder over provider with fixed options.
func NewResponder(provider Provider, opts Options, logger zerolog.Logger) *Responder {
	return &Responder{
		provider: provider,
		opts:     opts,
		logger:   logger,
	}
}

// Respond sends the conversation history to the provider and returns the
// assistant's reply.
func (r *Responder) Respond(ctx context.Context, history []chat.Turn) (string, error) {
	response, err := r.provider.Complete(ctx, Request{
		Model:       r.opts.Model,
		Messages:    history,
		MaxTokens:   r.opts.MaxTokens,
		Temperature: r.opts.Temperature,
	})
	if err != nil {
		return "", err
	}

	event := r.logger.Debug().Str("provider", r.provider.Name()).Str("model", r.opts.Model)
	if response.Usage != nil {
		event = event.
			Int("input_tokens", response.Usage.InputTokens).
			Int("output_tokens", response.Usage.OutputTokens)
	}
	event.Msg("Completion received")

	return response.Content, nil
}
