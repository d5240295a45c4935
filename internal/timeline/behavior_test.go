package timeline

import (
	"math"
	"testing"
	"time"

	"github.com/royalelab/crmetrics/internal/model"
)

func TestTiltScores_WorkedExample(t *testing.T) {
	// A wins at t=0, loses at t=30min with no successor: the only loss has
	// no next battle, so A's tilt is 0.0 despite the fast return after the
	// win.
	battles := []model.BattleRecord{
		makeBattle("#A", "#B", 0),
		makeBattle("#B", "#A", 30*time.Minute),
	}
	rows := BuildTimeline(battles)
	EngineerTemporalFeatures(rows)

	tilt := TiltScores(rows)
	if got := tilt["#A"]; got != 0.0 {
		t.Errorf("#A tilt: want 0.0 (loss has no successor), got %v", got)
	}
	if got := tilt["#B"]; got == 0.0 {
		// B lost at t=0 and returned 30min later: one loss with a fast
		// successor → tilt 1.0.
		t.Errorf("#B tilt: want 1.0, got %v", got)
	}
}

func TestTiltScores_Bounds(t *testing.T) {
	rows := timelineFor("#P", 30*time.Minute,
		model.OutcomeLoss, model.OutcomeLoss, model.OutcomeWin, model.OutcomeLoss,
	)
	EngineerTemporalFeatures(rows)
	for tag, v := range TiltScores(rows) {
		if v < 0.0 || v > 1.0 {
			t.Errorf("tilt for %s out of [0,1]: %v", tag, v)
		}
	}
}

func TestTiltScores_NoLosses(t *testing.T) {
	rows := timelineFor("#P", time.Hour, model.OutcomeWin, model.OutcomeWin)
	EngineerTemporalFeatures(rows)
	if got := TiltScores(rows)["#P"]; got != 0.0 {
		t.Errorf("tilt with zero losses: want 0.0, got %v", got)
	}
}

func TestTiltScores_MixedGaps(t *testing.T) {
	// Three losses with successors: gaps 30min (fast), 2h (slow), 30min
	// (fast) → tilt 2/3.
	times := []time.Duration{0, 30 * time.Minute, 150 * time.Minute, 180 * time.Minute, 181 * time.Minute}
	outcomes := []model.Outcome{
		model.OutcomeLoss, model.OutcomeLoss, model.OutcomeLoss,
		model.OutcomeWin, model.OutcomeWin,
	}
	rows := make([]model.TimelineRow, len(times))
	for i := range times {
		rows[i] = model.TimelineRow{PlayerTag: "#P", BattleTime: t0.Add(times[i]), Outcome: outcomes[i]}
	}
	EngineerTemporalFeatures(rows)

	got := TiltScores(rows)["#P"]
	want := 2.0 / 3.0
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("tilt: want %v, got %v", want, got)
	}
}

func TestAggregatePlayers_MinMatchesExclusion(t *testing.T) {
	rows := timelineFor("#P", time.Hour,
		model.OutcomeWin, model.OutcomeLoss, model.OutcomeWin, model.OutcomeLoss, model.OutcomeWin,
	)
	EngineerTemporalFeatures(rows)

	aggs := AggregatePlayers(rows, 10)
	if len(aggs) != 0 {
		t.Errorf("player with 5 matches and minMatches=10 must be excluded, got %d aggregates", len(aggs))
	}

	aggs = AggregatePlayers(rows, 5)
	if len(aggs) != 1 {
		t.Fatalf("player with 5 matches and minMatches=5 must be included, got %d", len(aggs))
	}
}

func TestAggregatePlayers_Fields(t *testing.T) {
	outcomes := []model.Outcome{
		model.OutcomeWin, model.OutcomeWin, model.OutcomeLoss,
		model.OutcomeLoss, model.OutcomeLoss, model.OutcomeWin,
	}
	rows := make([]model.TimelineRow, len(outcomes))
	for i, o := range outcomes {
		rows[i] = model.TimelineRow{
			PlayerTag:      "#P",
			BattleTime:     t0.Add(time.Duration(i) * 12 * time.Hour),
			TrophiesBefore: 5000 + float64(i)*10,
			TrophyChange:   30,
			Outcome:        o,
		}
	}
	EngineerTemporalFeatures(rows)

	aggs := AggregatePlayers(rows, 3)
	if len(aggs) != 1 {
		t.Fatalf("expected 1 aggregate, got %d", len(aggs))
	}
	a := aggs[0]

	if a.MatchCount != 6 {
		t.Errorf("MatchCount: want 6, got %d", a.MatchCount)
	}
	if a.WinRate != 0.5 {
		t.Errorf("WinRate: want 0.5, got %v", a.WinRate)
	}
	if a.TotalTrophyChange != 180 {
		t.Errorf("TotalTrophyChange: want 180, got %v", a.TotalTrophyChange)
	}
	if a.StartingTrophies != 5000 || a.EndingTrophies != 5050 {
		t.Errorf("trophies: start=%v end=%v", a.StartingTrophies, a.EndingTrophies)
	}
	if a.TrophyMomentum != 50 {
		t.Errorf("TrophyMomentum: want 50, got %v", a.TrophyMomentum)
	}
	if a.MaxLossStreak != 3 || a.MaxWinStreak != 2 {
		t.Errorf("streak maxima: loss=%d win=%d", a.MaxLossStreak, a.MaxWinStreak)
	}
	if a.AvgReturnGapHours != 12 || a.MedianReturnGapHours != 12 {
		t.Errorf("gap stats: avg=%v median=%v, want 12/12", a.AvgReturnGapHours, a.MedianReturnGapHours)
	}
	// 5 gaps of 12h → 2.5 days active, floor not triggered.
	if a.DaysActive != 2.5 {
		t.Errorf("DaysActive: want 2.5, got %v", a.DaysActive)
	}
	if a.AvgMatchesPerDay != 6/2.5 {
		t.Errorf("AvgMatchesPerDay: want %v, got %v", 6/2.5, a.AvgMatchesPerDay)
	}
}

func TestAggregatePlayers_SingleDayFloor(t *testing.T) {
	rows := timelineFor("#P", time.Minute,
		model.OutcomeWin, model.OutcomeWin, model.OutcomeWin,
	)
	EngineerTemporalFeatures(rows)

	aggs := AggregatePlayers(rows, 1)
	if len(aggs) != 1 {
		t.Fatalf("expected 1 aggregate, got %d", len(aggs))
	}
	// All battles within minutes: days_active ≈ 0 but the denominator is
	// floored at 1 day.
	if got := aggs[0].AvgMatchesPerDay; got != 3 {
		t.Errorf("AvgMatchesPerDay with sub-day activity: want 3, got %v", got)
	}
}

func TestTiltByStreakBucket_OrderAndCounts(t *testing.T) {
	rows := timelineFor("#P", 30*time.Minute,
		model.OutcomeWin,
		model.OutcomeLoss, model.OutcomeLoss, model.OutcomeLoss,
		model.OutcomeWin,
	)
	EngineerTemporalFeatures(rows)

	buckets := TiltByStreakBucket(rows)
	// Streak values: 0,1,2,3,0 → buckets "0"(x2), "1-2"(x2), "3-5"(x1).
	if len(buckets) != 3 {
		t.Fatalf("expected 3 populated buckets, got %d: %+v", len(buckets), buckets)
	}
	wantOrder := []string{"0", "1-2", "3-5"}
	wantCount := []int{2, 2, 1}
	for i, b := range buckets {
		if b.Bucket != wantOrder[i] {
			t.Errorf("bucket %d: want %q, got %q", i, wantOrder[i], b.Bucket)
		}
		if b.BattleCount != wantCount[i] {
			t.Errorf("bucket %q count: want %d, got %d", b.Bucket, wantCount[i], b.BattleCount)
		}
	}
}

func TestStatsHelpers(t *testing.T) {
	if got := median([]float64{3, 1, 2}); got != 2 {
		t.Errorf("median odd: want 2, got %v", got)
	}
	if got := median([]float64{4, 1, 3, 2}); got != 2.5 {
		t.Errorf("median even: want 2.5, got %v", got)
	}
	if got := median(nil); got != 0 {
		t.Errorf("median empty: want 0, got %v", got)
	}
	if got := stddev([]float64{5}); got != 0 {
		t.Errorf("stddev single value: want 0, got %v", got)
	}
	if got := stddev([]float64{2, 4}); math.Abs(got-math.Sqrt2) > 1e-12 {
		t.Errorf("stddev {2,4}: want sqrt(2), got %v", got)
	}
}
