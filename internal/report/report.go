package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/royalelab/crmetrics/internal/model"
)

func newTable(w io.Writer) *tablewriter.Table {
	return tablewriter.NewTable(w, tablewriter.WithConfig(tablewriter.Config{
		Row: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignRight},
		},
		Header: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignCenter},
		},
	}))
}

// PrintOverview prints a one-line dataset summary.
func PrintOverview(w io.Writer, o model.DatasetOverview) {
	fmt.Fprintf(w, "\nBattles: %d  |  Players: %d  |  Arenas: %d  |  Modes: %d\n",
		o.TotalBattles, o.UniquePlayers, o.UniqueArenas, o.UniqueModes)
	fmt.Fprintf(w, "Window: %s — %s\n\n", o.EarliestTime, o.LatestTime)
}

// PrintBattleTable prints one row per battle, winner perspective first.
func PrintBattleTable(w io.Writer, battles []model.BattleRecord) {
	table := newTable(w)
	table.Header("TIME", "WINNER", "TROPHIES", "CROWNS", "LOSER", "TROPHIES", "CROWNS", "MODE", "ARENA")

	for _, b := range battles {
		table.Append(
			b.BattleTime.Format("2006-01-02 15:04"),
			b.WinnerTag,
			fmt.Sprintf("%.0f", b.WinnerStartingTrophies),
			strconv.Itoa(b.WinnerCrowns),
			b.LoserTag,
			fmt.Sprintf("%.0f", b.LoserStartingTrophies),
			strconv.Itoa(b.LoserCrowns),
			strconv.FormatInt(b.GameModeID, 10),
			strconv.FormatInt(b.ArenaID, 10),
		)
	}
	table.Render()
}

// PrintAggregateTable prints the player feature table.
// If focusTag is non-empty, that player's row is marked with ">".
func PrintAggregateTable(w io.Writer, aggs []model.PlayerAggregate, focusTag string) {
	table := newTable(w)
	table.Header(
		" ", "PLAYER", "MATCHES", "WIN%", "TROPHY_Δ", "GAP_MED", "FAST%",
		"LOSS_STRK", "TILT", "M/DAY", "IDLE_D", "CHURN",
	)

	for _, a := range aggs {
		marker := " "
		if focusTag != "" && a.PlayerTag == focusTag {
			marker = ">"
		}
		table.Append(
			marker,
			a.PlayerTag,
			strconv.Itoa(a.MatchCount),
			fmt.Sprintf("%.0f%%", a.WinRate*100),
			fmt.Sprintf("%+.0f", a.TotalTrophyChange),
			fmt.Sprintf("%.1fh", a.MedianReturnGapHours),
			fmt.Sprintf("%.0f%%", a.FastReturnRate*100),
			strconv.Itoa(a.MaxLossStreak),
			fmt.Sprintf("%.2f", a.TiltScore),
			fmt.Sprintf("%.1f", a.AvgMatchesPerDay),
			fmt.Sprintf("%.1f", a.DaysSinceLastBattle),
			a.ChurnRisk(),
		)
	}
	table.Render()
}

// PrintPlayerProfile prints one player's full aggregate as a label/value table.
func PrintPlayerProfile(w io.Writer, a model.PlayerAggregate) {
	fmt.Fprintf(w, "\nPlayer: %s  |  Matches: %d  |  Churn risk: %s\n\n",
		a.PlayerTag, a.MatchCount, a.ChurnRisk())

	table := newTable(w)
	table.Header("FEATURE", "VALUE")

	rows := [][2]string{
		{"win_rate", fmt.Sprintf("%.3f", a.WinRate)},
		{"total_trophy_change", fmt.Sprintf("%+.0f", a.TotalTrophyChange)},
		{"starting_trophies", fmt.Sprintf("%.0f", a.StartingTrophies)},
		{"ending_trophies", fmt.Sprintf("%.0f", a.EndingTrophies)},
		{"trophy_momentum", fmt.Sprintf("%.2f", a.TrophyMomentum)},
		{"avg_return_gap_hours", fmt.Sprintf("%.2f", a.AvgReturnGapHours)},
		{"median_return_gap_hours", fmt.Sprintf("%.2f", a.MedianReturnGapHours)},
		{"std_return_gap_hours", fmt.Sprintf("%.2f", a.StdReturnGapHours)},
		{"fast_return_rate", fmt.Sprintf("%.3f", a.FastReturnRate)},
		{"behavioral_tilt_score", fmt.Sprintf("%.3f", a.TiltScore)},
		{"max_loss_streak", strconv.Itoa(a.MaxLossStreak)},
		{"max_win_streak", strconv.Itoa(a.MaxWinStreak)},
		{"days_active", fmt.Sprintf("%.2f", a.DaysActive)},
		{"avg_matches_per_day", fmt.Sprintf("%.2f", a.AvgMatchesPerDay)},
		{"first_battle", a.FirstBattle.Format("2006-01-02 15:04")},
		{"last_battle", a.LastBattle.Format("2006-01-02 15:04")},
		{"days_since_last_battle", fmt.Sprintf("%.2f", a.DaysSinceLastBattle)},
		{"churned", strconv.Itoa(a.Churned)},
	}
	for _, r := range rows {
		table.Append(r[0], r[1])
	}
	table.Render()
}

// PrintTiltTable prints the tilt-by-loss-streak breakdown.
func PrintTiltTable(w io.Writer, buckets []model.BucketTilt) {
	table := newTable(w)
	table.Header("LOSS_STREAK", "FAST_RETURN%", "GAP_MEDIAN", "BATTLES")

	for _, b := range buckets {
		gap := "—"
		if b.BattleCount > 0 {
			gap = fmt.Sprintf("%.1fh", b.MedianReturnGapHours)
		}
		table.Append(
			b.Bucket,
			fmt.Sprintf("%.1f%%", b.FastReturnRate*100),
			gap,
			strconv.Itoa(b.BattleCount),
		)
	}
	table.Render()
}

// PrintMatchupSummary prints dataset-wide matchup differentials.
func PrintMatchupSummary(w io.Writer, m model.MatchupSummary) {
	fmt.Fprintf(w, "\nBattles analyzed: %d\n\n", m.Battles)

	table := newTable(w)
	table.Header("METRIC", "AVG (WINNER − LOSER)")
	table.Append("trophy_diff", fmt.Sprintf("%+.1f", m.AvgTrophyDiff))
	table.Append("elixir_diff", fmt.Sprintf("%+.2f", m.AvgElixirDiff))
	table.Append("card_level_diff", fmt.Sprintf("%+.1f", m.AvgCardLevelDiff))
	table.Append("crown_diff", fmt.Sprintf("%+.2f", m.AvgCrownDiff))
	table.Append("close_game_rate", fmt.Sprintf("%.1f%%", m.CloseGameRate*100))
	table.Append("three_crown_rate", fmt.Sprintf("%.1f%%", m.ThreeCrownRate*100))
	table.Render()
}

// PrintRawTable prints arbitrary query output.
func PrintRawTable(w io.Writer, cols []string, rows [][]string) {
	table := newTable(w)
	hdr := make([]any, len(cols))
	for i, c := range cols {
		hdr[i] = c
	}
	table.Header(hdr...)
	for _, r := range rows {
		cells := make([]any, len(r))
		for i, c := range r {
			cells[i] = c
		}
		table.Append(cells...)
	}
	table.Render()
	fmt.Fprintf(w, "(%d rows)\n", len(rows))
}
