package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/royalelab/crmetrics/internal/report"
	"github.com/royalelab/crmetrics/internal/storage"
)

var sqlCmd = &cobra.Command{
	Use:   "sql <query>",
	Short: "Run a raw SQL query against the database",
	Long: `Run an arbitrary SQL query against the battle database and print results as a table.

Schema overview:
  battles(battle_time, winner_tag, winner_starting_trophies, winner_trophy_change,
    winner_crowns, loser_tag, loser_starting_trophies, loser_trophy_change,
    loser_crowns, game_mode_id, arena_id, winner_card_ids, winner_elixir_avg, ...)
  player_aggregates(player_tag, match_count, win_rate, total_trophy_change,
    avg_return_gap_hours, median_return_gap_hours, fast_return_rate,
    max_loss_streak, max_win_streak, tilt_score, days_since_last_battle, churned, ...)
  tilt_by_streak(bucket, ord, fast_return_rate, median_return_gap_hours, battle_count)

Note: player tags are stored as TEXT. Use quotes: WHERE player_tag = '#2PP'`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSQL,
}

func runSQL(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")
	db, err := storage.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()

	cols, rows, err := db.QueryRaw(query)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		fmt.Println("(no rows)")
		return nil
	}

	report.PrintRawTable(os.Stdout, cols, rows)
	return nil
}
