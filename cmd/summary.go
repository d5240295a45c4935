package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/royalelab/crmetrics/internal/report"
	"github.com/royalelab/crmetrics/internal/storage"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show a summary of the stored dataset",
	Args:  cobra.NoArgs,
	RunE:  runSummary,
}

func runSummary(cmd *cobra.Command, args []string) error {
	db, err := storage.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer db.Close()

	o, err := db.Overview()
	if err != nil {
		return fmt.Errorf("overview: %w", err)
	}
	if o.TotalBattles == 0 {
		fmt.Fprintln(os.Stdout, "No battles stored yet. Run 'crmetrics import <battles.csv>' to add some.")
		return nil
	}

	report.PrintOverview(os.Stdout, o)
	return nil
}
