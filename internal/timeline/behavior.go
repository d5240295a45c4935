package timeline

import (
	"math"
	"sort"

	"github.com/royalelab/crmetrics/internal/model"
)

// DefaultMinMatches is the minimum row count for a player to appear in the
// aggregate output.
const DefaultMinMatches = 10

// TiltScores computes the behavioral tilt score per player: the fraction of
// losses that were followed by a return within one hour. Only losses with a
// successor battle count toward the denominator; a player with none scores
// 0.0. Scores are always in [0, 1].
func TiltScores(rows []model.TimelineRow) map[string]float64 {
	out := make(map[string]float64)
	for _, p := range partitions(rows) {
		part := rows[p[0]:p[1]]
		lossesWithNext, fastReturns := 0, 0
		for _, row := range part {
			if row.Outcome != model.OutcomeLoss || !row.HasNext {
				continue
			}
			lossesWithNext++
			if row.FastReturn1hr {
				fastReturns++
			}
		}
		tilt := 0.0
		if lossesWithNext > 0 {
			tilt = float64(fastReturns) / float64(lossesWithNext)
		}
		out[part[0].PlayerTag] = tilt
	}
	return out
}

// AggregatePlayers folds each player's partition into a PlayerAggregate.
// Players with fewer than minMatches rows are excluded, which is documented
// behavior rather than an error. Churn fields are left unset; LabelChurn
// fills them in. Output is ordered by player tag, matching the input order.
func AggregatePlayers(rows []model.TimelineRow, minMatches int) []model.PlayerAggregate {
	if minMatches <= 0 {
		minMatches = DefaultMinMatches
	}
	tilt := TiltScores(rows)

	var out []model.PlayerAggregate
	for _, p := range partitions(rows) {
		part := rows[p[0]:p[1]]
		if len(part) < minMatches {
			continue
		}

		agg := model.PlayerAggregate{
			PlayerTag:        part[0].PlayerTag,
			MatchCount:       len(part),
			StartingTrophies: part[0].TrophiesBefore,
			EndingTrophies:   part[len(part)-1].TrophiesBefore,
			FirstBattle:      part[0].BattleTime,
			LastBattle:       part[len(part)-1].BattleTime,
			TiltScore:        tilt[part[0].PlayerTag],
		}

		wins, fastReturns := 0, 0
		var gaps []float64
		for _, row := range part {
			if row.Outcome == model.OutcomeWin {
				wins++
			}
			agg.TotalTrophyChange += row.TrophyChange
			if row.FastReturn1hr {
				fastReturns++
			}
			if row.HasNext {
				gaps = append(gaps, row.ReturnGapHours)
			}
			if row.LossStreak > agg.MaxLossStreak {
				agg.MaxLossStreak = row.LossStreak
			}
			if row.WinStreak > agg.MaxWinStreak {
				agg.MaxWinStreak = row.WinStreak
			}
		}

		agg.WinRate = float64(wins) / float64(len(part))
		agg.FastReturnRate = float64(fastReturns) / float64(len(part))
		agg.AvgReturnGapHours = mean(gaps)
		agg.MedianReturnGapHours = median(gaps)
		agg.StdReturnGapHours = stddev(gaps)

		agg.DaysActive = agg.LastBattle.Sub(agg.FirstBattle).Hours() / 24
		agg.TrophyMomentum = agg.EndingTrophies - agg.StartingTrophies
		// Floor of one day keeps single-session players from blowing up
		// the per-day rate.
		agg.AvgMatchesPerDay = float64(agg.MatchCount) / math.Max(agg.DaysActive, 1)

		out = append(out, agg)
	}
	return out
}

// TiltByStreakBucket groups the timeline by loss-streak bucket and reports
// the fast-return rate, median return gap, and battle count per bucket, in
// ascending bucket order. Buckets with no battles are omitted.
func TiltByStreakBucket(rows []model.TimelineRow) []model.BucketTilt {
	type accum struct {
		fast  int
		count int
		gaps  []float64
	}
	byBucket := make(map[string]*accum, len(StreakBuckets))
	for _, row := range rows {
		acc := byBucket[row.StreakBucket]
		if acc == nil {
			acc = &accum{}
			byBucket[row.StreakBucket] = acc
		}
		acc.count++
		if row.FastReturn1hr {
			acc.fast++
		}
		if row.HasNext {
			acc.gaps = append(acc.gaps, row.ReturnGapHours)
		}
	}

	var out []model.BucketTilt
	for _, bucket := range StreakBuckets {
		acc := byBucket[bucket]
		if acc == nil {
			continue
		}
		out = append(out, model.BucketTilt{
			Bucket:               bucket,
			FastReturnRate:       float64(acc.fast) / float64(acc.count),
			MedianReturnGapHours: median(acc.gaps),
			BattleCount:          acc.count,
		})
	}
	return out
}

func mean(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

// median sorts a copy; callers keep their slices unsorted.
func median(vals []float64) float64 {
	n := len(vals)
	if n == 0 {
		return 0
	}
	sorted := make([]float64, n)
	copy(sorted, vals)
	sort.Float64s(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// stddev is the sample standard deviation (n-1 denominator); 0 for fewer
// than two values.
func stddev(vals []float64) float64 {
	n := len(vals)
	if n < 2 {
		return 0
	}
	m := mean(vals)
	sum := 0.0
	for _, v := range vals {
		d := v - m
		sum += d * d
	}
	return math.Sqrt(sum / float64(n-1))
}
