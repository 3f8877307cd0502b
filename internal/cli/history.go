package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"shellgate/internal/config"
	"shellgate/internal/history"
)

var (
	historySession string
	historyOutcome string
	historyLimit   int
)

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().StringVar(&historySession, "session", "", "Filter by session ID")
	historyCmd.Flags().StringVar(&historyOutcome, "outcome", "", "Filter by outcome (executed|blocked|rejected|timed_out)")
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Maximum entries to show")
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent gate decisions",
	Long:  "Queries the decision history database and prints matching records,\nnewest first, as JSON.",
	RunE:  runHistory,
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cfg.HistoryDB == "" {
		return fmt.Errorf("no history database configured")
	}

	store, err := history.Open(cfg.HistoryDB, nil)
	if err != nil {
		return fmt.Errorf("failed to open history store: %w", err)
	}
	defer store.Close()

	records, err := store.Recent(cmd.Context(), history.Query{
		SessionID: historySession,
		Outcome:   historyOutcome,
		Limit:     historyLimit,
	})
	if err != nil {
		return err
	}
	if records == nil {
		records = []history.Record{}
	}

	out, _ := json.MarshalIndent(records, "", "  ")
	fmt.Println(string(out))
	return nil
}
