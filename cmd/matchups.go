package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/royalelab/crmetrics/internal/features"
	"github.com/royalelab/crmetrics/internal/report"
	"github.com/royalelab/crmetrics/internal/storage"
)

var matchupsPairs int

var matchupsCmd = &cobra.Command{
	Use:   "matchups",
	Short: "Show winner-vs-loser matchup differentials",
	Args:  cobra.NoArgs,
	RunE:  runMatchups,
}

func init() {
	matchupsCmd.Flags().IntVar(&matchupsPairs, "pairs", 0, "also show the N most played winning card pairs")
}

func runMatchups(cmd *cobra.Command, args []string) error {
	db, err := storage.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer db.Close()

	battles, err := db.LoadBattles()
	if err != nil {
		return fmt.Errorf("load battles: %w", err)
	}
	if len(battles) == 0 {
		return fmt.Errorf("no battles stored; run 'crmetrics import' first")
	}

	report.PrintMatchupSummary(os.Stdout, features.SummarizeMatchups(battles))

	if matchupsPairs > 0 {
		pairs := features.TopPairs(battles, matchupsPairs)
		fmt.Fprintf(os.Stdout, "\nTop %d card pairs by play count:\n", len(pairs))
		for i, p := range pairs {
			fmt.Fprintf(os.Stdout, "%3d. %d + %d  %d battles, %.0f%% wins\n",
				i+1, p.Card1, p.Card2, p.Count, p.WinRate*100)
		}
	}
	return nil
}
