package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"docqna/pkg/transcript"
)

var transcriptsCmd = &cobra.Command{
	Use:   "transcripts",
	Short: "List saved chat transcripts",
	RunE:  runTranscripts,
}

func init() {
	rootCmd.AddCommand(transcriptsCmd)
}

func runTranscripts(cmd *cobra.Command, args []string) error {
	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}
	defer log.Close()

	infos, err := transcript.List(cfg.Storage.TranscriptsPath)
	if err != nil {
		return fmt.Errorf("failed to list transcripts: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(infos) == 0 {
		fmt.Fprintf(out, "No transcripts in %s\n", cfg.Storage.TranscriptsPath)
		return nil
	}

	for _, info := range infos {
		fmt.Fprintf(out, "%s  %3d turns  %s\n",
			info.SavedAt.Local().Format(time.RFC3339), info.Turns, info.Path)
	}
	return nil
}
