package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"docqna/internal/setup"
	"docqna/pkg/finance"
	"docqna/pkg/transcript"
)

var (
	financeTickers []string
	financePeriod  string
	financeResume  string
)

var financeCmd = &cobra.Command{
	Use:   "finance",
	Short: "Chat over fetched stock history",
	Long: `Fetch daily price history for the given tickers, bake the rendered tables
into the system prompt and start an interactive question-answering loop.
Tickers and period fall back to the finance section of the config.`,
	RunE: runFinance,
}

func init() {
	financeCmd.Flags().StringSliceVar(&financeTickers, "tickers", nil, "ticker symbols (e.g. TSLA,MSFT)")
	financeCmd.Flags().StringVar(&financePeriod, "period", "",
		fmt.Sprintf("history range (%s)", strings.Join(finance.Periods(), ", ")))
	financeCmd.Flags().StringVar(&financeResume, "resume", "", "resume from a saved transcript file")
	rootCmd.AddCommand(financeCmd)
}

func runFinance(cmd *cobra.Command, args []string) error {
	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}
	defer log.Close()

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	ctx := cmd.Context()

	if financeResume != "" {
		snap, err := transcript.Load(financeResume)
		if err != nil {
			return fmt.Errorf("failed to load transcript: %w", err)
		}
		session, err := setup.ResumeSession(cfg, snap, log.Zerolog())
		if err != nil {
			return err
		}
		return runREPL(ctx, cmd.InOrStdin(), cmd.OutOrStdout(), session, cfg.Storage.TranscriptsPath)
	}

	session, err := setup.FinanceSession(ctx, cfg, log.Zerolog(), financeTickers, financePeriod)
	if err != nil {
		return err
	}
	return runREPL(ctx, cmd.InOrStdin(), cmd.OutOrStdout(), session, cfg.Storage.TranscriptsPath)
}
