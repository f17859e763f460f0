// Package setup wires configuration into ready chat sessions. It is the
// only place provider settings are read; the CLI hands everything built
// here straight to the REPL.
package setup

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"docqna/internal/config"
	"docqna/pkg/chat"
	"docqna/pkg/documents"
	"docqna/pkg/finance"
	"docqna/pkg/llm"
	"docqna/pkg/prompt"
)

// NewResponder builds the inference responder described by cfg.
func NewResponder(cfg *config.Config, logger zerolog.Logger) (chat.Responder, error) {
	provider, err := llm.New(llm.Config{
		Provider: cfg.Provider.Name,
		APIKey:   cfg.Provider.APIKey,
		BaseURL:  cfg.Provider.BaseURL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create provider: %w", err)
	}

	return llm.NewResponder(provider, llm.Options{
		Model:       cfg.Inference.Model,
		MaxTokens:   cfg.Inference.MaxTokens,
		Temperature: cfg.Inference.Temperature,
	}, logger), nil
}

// DocumentSession loads the documents folder, assembles the system prompt
// and returns a fresh session over it.
func DocumentSession(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*chat.Session, error) {
	blob, err := documentBlob(cfg, logger)
	if err != nil {
		return nil, err
	}

	assembler := prompt.NewAssembler(prompt.DocumentInstructions, blob)
	addContextSections(ctx, assembler, cfg.Context, logger)

	responder, err := NewResponder(cfg, logger)
	if err != nil {
		return nil, err
	}

	return chat.NewSession(chat.Config{
		Prompt:         assembler.Build(),
		DefaultMessage: cfg.Prompt.DefaultMessage,
		Responder:      responder,
		Logger:         logger,
	})
}

// FinanceSession fetches market data for the tickers and returns a fresh
// session over the rendered tables. Empty tickers or period fall back to
// the config values.
func FinanceSession(ctx context.Context, cfg *config.Config, logger zerolog.Logger, tickers []string, period string) (*chat.Session, error) {
	if len(tickers) == 0 {
		tickers = cfg.Finance.Tickers
	}
	if period == "" {
		period = cfg.Finance.Period
	}
	if len(tickers) == 0 {
		return nil, fmt.Errorf("no tickers configured (pass --tickers or set finance.tickers)")
	}

	client := finance.NewClient(finance.ClientConfig{
		BaseURL: cfg.Finance.BaseURL,
		Logger:  logger,
	})
	blob, err := client.FetchAll(ctx, tickers, period)
	if err != nil {
		return nil, err
	}

	assembler := prompt.NewAssembler(prompt.FinanceInstructions, blob)
	addContextSections(ctx, assembler, cfg.Context, logger)

	responder, err := NewResponder(cfg, logger)
	if err != nil {
		return nil, err
	}

	return chat.NewSession(chat.Config{
		Prompt:         assembler.Build(),
		DefaultMessage: cfg.Prompt.DefaultMessage,
		Responder:      responder,
		Logger:         logger,
	})
}

// ResumeSession rebuilds a session from a saved transcript snapshot.
func ResumeSession(cfg *config.Config, snap chat.Snapshot, logger zerolog.Logger) (*chat.Session, error) {
	responder, err := NewResponder(cfg, logger)
	if err != nil {
		return nil, err
	}
	return chat.NewSessionFromSnapshot(snap, responder, logger)
}

// documentBlob renders the corpus, going through the prompt cache when
// caching is enabled. The digest keys the cache, so any content change
// forces a fresh render.
func documentBlob(cfg *config.Config, logger zerolog.Logger) (string, error) {
	corpus, err := documents.NewLoader(documents.LoaderConfig{
		Root:   cfg.Storage.DocumentsPath,
		Logger: logger,
	}).Load()
	if err != nil {
		return "", fmt.Errorf("failed to load documents: %w", err)
	}

	if !cfg.Cache.Prompts {
		return corpus.Render(), nil
	}

	cache := documents.NewPromptCache(cfg.Storage.CachedPromptsPath)
	digest := corpus.Digest()
	if blob, ok := cache.Get(digest); ok {
		logger.Info().Str("digest", digest).Msg("Using cached document blob")
		return blob, nil
	}

	blob := corpus.Render()
	if err := cache.Put(digest, blob); err != nil {
		logger.Warn().Err(err).Msg("Failed to cache document blob")
	} else {
		logger.Info().Str("digest", digest).Msg("Cached document blob")
	}
	return blob, nil
}

// addContextSections appends the configured extra sections. REST sections
// that fail to fetch are skipped with a warning; a dead endpoint should
// not block the chat.
func addContextSections(ctx context.Context, assembler *prompt.Assembler, sections []config.ContextSection, logger zerolog.Logger) {
	for _, s := range sections {
		content := s.Content
		if s.URL != "" {
			fetched, err := prompt.FetchREST(ctx, nil, prompt.Source{
				URL:     s.URL,
				Method:  s.Method,
				Headers: s.Headers,
			})
			if err != nil {
				logger.Warn().Err(err).Str("section", s.ID).Msg("Skipping context section, REST fetch failed")
				continue
			}
			content = fetched
		}

		assembler.AddSection(prompt.Section{
			ID:          s.ID,
			Description: s.Description,
			Content:     content,
		})
	}
}
