package cli

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"docqna/internal/config"
	"docqna/internal/setup"
	"docqna/pkg/chat"
	"docqna/pkg/documents"
	"docqna/pkg/transcript"
)

var chatResume string

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with the configured documents folder",
	Long: `Load the documents folder, bake its contents into the system prompt and
start an interactive question-answering loop. Documents are frozen into the
prompt at startup; edits on disk only take effect on the next run.`,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().StringVar(&chatResume, "resume", "", "resume from a saved transcript file")
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}
	defer log.Close()

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	ctx := cmd.Context()
	session, err := buildChatSession(ctx, cfg, log.Zerolog())
	if err != nil {
		return err
	}

	// A fresh session bakes the corpus into the prompt, so warn when the
	// folder changes underneath it.
	if chatResume == "" {
		if stop := watchDocuments(cfg, log.Zerolog()); stop != nil {
			defer stop()
		}
	}

	return runREPL(ctx, cmd.InOrStdin(), cmd.OutOrStdout(), session, cfg.Storage.TranscriptsPath)
}

func buildChatSession(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*chat.Session, error) {
	if chatResume != "" {
		snap, err := transcript.Load(chatResume)
		if err != nil {
			return nil, fmt.Errorf("failed to load transcript: %w", err)
		}
		return setup.ResumeSession(cfg, snap, logger)
	}
	return setup.DocumentSession(ctx, cfg, logger)
}

// watchDocuments reports corpus changes through the logger. A watcher
// failure is not fatal; the chat just loses the staleness warning.
func watchDocuments(cfg *config.Config, logger zerolog.Logger) func() {
	watcher, err := documents.NewWatcher(documents.WatcherConfig{
		Root: cfg.Storage.DocumentsPath,
		OnChange: func(path string) {
			logger.Warn().Str("path", path).Msg("Documents changed; restart the chat to pick up the new contents")
		},
		Logger: logger,
	})
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to create documents watcher")
		return nil
	}
	if err := watcher.Start(); err != nil {
		logger.Warn().Err(err).Msg("Failed to start documents watcher")
		return nil
	}
	return func() { _ = watcher.Stop() }
}
