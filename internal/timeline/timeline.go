// Package timeline converts battle-centric records into player-centric
// timelines and derives temporal, behavioral, and churn features from them.
//
// The pipeline is strictly forward: battles → timeline rows → rows with
// temporal features → per-player aggregates → churn-labeled feature matrix.
// Row order within a player's partition is a correctness invariant for the
// streak and gap computations and must not be disturbed between BuildTimeline
// and EngineerTemporalFeatures.
package timeline

import (
	"sort"

	"github.com/royalelab/crmetrics/internal/model"
)

// BuildTimeline explodes each battle into a winner-perspective and a
// loser-perspective row, drops perspectives with an empty player tag, and
// stable-sorts the result by (player tag, battle time). The output holds
// exactly two rows per battle minus the dropped perspectives.
func BuildTimeline(battles []model.BattleRecord) []model.TimelineRow {
	rows := make([]model.TimelineRow, 0, 2*len(battles))
	for _, b := range battles {
		if b.WinnerTag != "" {
			rows = append(rows, model.TimelineRow{
				PlayerTag:        b.WinnerTag,
				BattleTime:       b.BattleTime,
				TrophiesBefore:   b.WinnerStartingTrophies,
				TrophyChange:     b.WinnerTrophyChange,
				Crowns:           b.WinnerCrowns,
				OpponentTrophies: b.LoserStartingTrophies,
				GameMode:         b.GameModeID,
				Arena:            b.ArenaID,
				Outcome:          model.OutcomeWin,
			})
		}
		if b.LoserTag != "" {
			rows = append(rows, model.TimelineRow{
				PlayerTag:        b.LoserTag,
				BattleTime:       b.BattleTime,
				TrophiesBefore:   b.LoserStartingTrophies,
				TrophyChange:     b.LoserTrophyChange,
				Crowns:           b.LoserCrowns,
				OpponentTrophies: b.WinnerStartingTrophies,
				GameMode:         b.GameModeID,
				Arena:            b.ArenaID,
				Outcome:          model.OutcomeLoss,
			})
		}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].PlayerTag != rows[j].PlayerTag {
			return rows[i].PlayerTag < rows[j].PlayerTag
		}
		return rows[i].BattleTime.Before(rows[j].BattleTime)
	})
	return rows
}

// partitions returns the [start, end) index ranges of each player's
// contiguous run within a (player, time)-sorted row slice.
func partitions(rows []model.TimelineRow) [][2]int {
	var out [][2]int
	start := 0
	for i := 1; i <= len(rows); i++ {
		if i == len(rows) || rows[i].PlayerTag != rows[start].PlayerTag {
			out = append(out, [2]int{start, i})
			start = i
		}
	}
	return out
}
