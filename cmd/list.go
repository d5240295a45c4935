package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/royalelab/crmetrics/internal/report"
	"github.com/royalelab/crmetrics/internal/storage"
)

var (
	listOrderBy string
	listLimit   int
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored player feature rows",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func init() {
	listCmd.Flags().StringVar(&listOrderBy, "order-by", "match_count", "sort column (e.g. tilt_score, win_rate, days_since_last_battle)")
	listCmd.Flags().IntVar(&listLimit, "limit", 25, "max rows to show (0 = all)")
}

func runList(cmd *cobra.Command, args []string) error {
	db, err := storage.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer db.Close()

	aggs, err := db.ListPlayerAggregates(listOrderBy, listLimit)
	if err != nil {
		return fmt.Errorf("list players: %w", err)
	}
	if len(aggs) == 0 {
		fmt.Fprintln(os.Stdout, "No player features stored yet. Run 'crmetrics features' to compute them.")
		return nil
	}

	report.PrintAggregateTable(os.Stdout, aggs, "")
	return nil
}
