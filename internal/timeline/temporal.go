package timeline

import (
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/royalelab/crmetrics/internal/model"
)

// BucketLossStreak maps a running loss-streak value to its categorical
// bucket, with inclusive upper bounds 0, 2, 5, 10.
func BucketLossStreak(streak int) string {
	switch {
	case streak == 0:
		return "0"
	case streak <= 2:
		return "1-2"
	case streak <= 5:
		return "3-5"
	case streak <= 10:
		return "6-10"
	default:
		return "10+"
	}
}

// StreakBuckets lists the loss-streak buckets in ascending order.
var StreakBuckets = []string{"0", "1-2", "3-5", "6-10", "10+"}

// EngineerTemporalFeatures fills in the temporal-feature fields of a
// (player, time)-sorted timeline in place: next battle time, return gap,
// fast-return flag, and running win/loss streak counters.
//
// Each value depends on the previous row in the same partition, so the scan
// is sequential per player, but partitions never interact and are computed
// in parallel, each goroutine writing only its own sub-slice.
func EngineerTemporalFeatures(rows []model.TimelineRow) {
	parts := partitions(rows)

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for _, p := range parts {
		part := rows[p[0]:p[1]]
		g.Go(func() error {
			engineerPartition(part)
			return nil
		})
	}
	// Workers cannot fail; Wait is only a join point.
	_ = g.Wait()
}

func engineerPartition(part []model.TimelineRow) {
	lossStreak, winStreak := 0, 0
	for i := range part {
		row := &part[i]

		if i+1 < len(part) {
			next := part[i+1].BattleTime
			row.NextBattleTime = next
			row.HasNext = true
			row.ReturnGapHours = next.Sub(row.BattleTime).Hours()
			row.FastReturn1hr = row.ReturnGapHours < 1.0
		} else {
			// Last battle of the player's history: no successor, and an
			// absent gap counts as "not fast", not "unknown".
			row.HasNext = false
			row.FastReturn1hr = false
		}

		if row.Outcome == model.OutcomeLoss {
			lossStreak++
			winStreak = 0
		} else {
			winStreak++
			lossStreak = 0
		}
		row.LossStreak = lossStreak
		row.WinStreak = winStreak
		row.StreakBucket = BucketLossStreak(lossStreak)
	}
}
