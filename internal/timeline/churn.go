package timeline

import (
	"time"

	"github.com/royalelab/crmetrics/internal/model"
)

// DefaultChurnThresholdDays is the recency threshold beyond which a player
// is labeled churned.
const DefaultChurnThresholdDays = 7

// DatasetEnd returns the maximum last-battle time across the whole
// aggregate set. Churn is always measured against this single global
// instant, never per player.
func DatasetEnd(aggs []model.PlayerAggregate) time.Time {
	var end time.Time
	for _, a := range aggs {
		if a.LastBattle.After(end) {
			end = a.LastBattle
		}
	}
	return end
}

// LabelChurn fills in DaysSinceLastBattle and Churned on every aggregate:
// a player is churned iff their recency relative to the dataset end exceeds
// thresholdDays. The function is total and deterministic; an empty input is
// a valid no-op.
func LabelChurn(aggs []model.PlayerAggregate, thresholdDays float64) {
	if len(aggs) == 0 {
		return
	}
	if thresholdDays <= 0 {
		thresholdDays = DefaultChurnThresholdDays
	}
	datasetEnd := DatasetEnd(aggs)

	for i := range aggs {
		a := &aggs[i]
		a.DaysSinceLastBattle = datasetEnd.Sub(a.LastBattle).Hours() / 24
		if a.DaysSinceLastBattle > thresholdDays {
			a.Churned = 1
		} else {
			a.Churned = 0
		}
	}
}

// DefaultFeatureColumns is the default feature set for the churn model
// matrix: engagement, performance, then behavior.
var DefaultFeatureColumns = []string{
	"match_count",
	"days_active",
	"avg_return_gap_hours",
	"median_return_gap_hours",
	"fast_return_rate",
	"avg_matches_per_day",
	"win_rate",
	"trophy_momentum",
	"starting_trophies",
	"behavioral_tilt_score",
	"max_loss_streak",
	"max_win_streak",
}

// featureValue extracts a named feature from an aggregate. Unknown names
// report ok=false so BuildFeatureMatrix can fall back to the columns that
// exist.
func featureValue(a *model.PlayerAggregate, name string) (float64, bool) {
	switch name {
	case "match_count":
		return float64(a.MatchCount), true
	case "days_active":
		return a.DaysActive, true
	case "avg_return_gap_hours":
		return a.AvgReturnGapHours, true
	case "median_return_gap_hours":
		return a.MedianReturnGapHours, true
	case "std_return_gap_hours":
		return a.StdReturnGapHours, true
	case "fast_return_rate":
		return a.FastReturnRate, true
	case "avg_matches_per_day":
		return a.AvgMatchesPerDay, true
	case "win_rate":
		return a.WinRate, true
	case "total_trophy_change":
		return a.TotalTrophyChange, true
	case "trophy_momentum":
		return a.TrophyMomentum, true
	case "starting_trophies":
		return a.StartingTrophies, true
	case "ending_trophies":
		return a.EndingTrophies, true
	case "behavioral_tilt_score":
		return a.TiltScore, true
	case "max_loss_streak":
		return float64(a.MaxLossStreak), true
	case "max_win_streak":
		return float64(a.MaxWinStreak), true
	case "days_since_last_battle":
		return a.DaysSinceLastBattle, true
	default:
		return 0, false
	}
}

// BuildFeatureMatrix assembles the model-ready (features, label, names)
// triple from labeled aggregates. nil columns selects the default set;
// requested columns that don't exist are dropped rather than erroring.
// NaN/Inf never occur in the inputs, so "fill missing with 0" reduces to
// the unknown-column fallback.
func BuildFeatureMatrix(aggs []model.PlayerAggregate, columns []string) (x [][]float64, y []int, names []string) {
	if columns == nil {
		columns = DefaultFeatureColumns
	}
	if len(aggs) == 0 {
		return nil, nil, nil
	}
	for _, c := range columns {
		if _, ok := featureValue(&aggs[0], c); ok {
			names = append(names, c)
		}
	}

	x = make([][]float64, len(aggs))
	y = make([]int, len(aggs))
	for i := range aggs {
		row := make([]float64, len(names))
		for j, c := range names {
			v, _ := featureValue(&aggs[i], c)
			row[j] = v
		}
		x[i] = row
		y[i] = aggs[i].Churned
	}
	return x, y, names
}
