package timeline

import (
	"testing"
	"time"

	"github.com/royalelab/crmetrics/internal/model"
)

var t0 = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

// makeBattle builds a minimal BattleRecord between two tags at an offset
// from t0.
func makeBattle(winner, loser string, at time.Duration) model.BattleRecord {
	return model.BattleRecord{
		BattleTime:             t0.Add(at),
		WinnerTag:              winner,
		WinnerStartingTrophies: 5000,
		WinnerTrophyChange:     30,
		WinnerCrowns:           2,
		LoserTag:               loser,
		LoserStartingTrophies:  4950,
		LoserTrophyChange:      -30,
		LoserCrowns:            1,
		GameModeID:             72000006,
		ArenaID:                54000015,
	}
}

func TestBuildTimeline_TwoRowsPerBattle(t *testing.T) {
	battles := []model.BattleRecord{
		makeBattle("#AAA", "#BBB", 0),
		makeBattle("#CCC", "#DDD", time.Hour),
	}
	rows := BuildTimeline(battles)
	if len(rows) != 4 {
		t.Fatalf("expected 4 rows (2 per battle), got %d", len(rows))
	}
}

func TestBuildTimeline_DropsEmptyTags(t *testing.T) {
	b := makeBattle("#AAA", "", 0)
	rows := BuildTimeline([]model.BattleRecord{b})
	if len(rows) != 1 {
		t.Fatalf("expected 1 row (loser perspective dropped), got %d", len(rows))
	}
	if rows[0].PlayerTag != "#AAA" {
		t.Errorf("surviving row should be the winner's, got %q", rows[0].PlayerTag)
	}
}

func TestBuildTimeline_CrossMapsOpponentTrophies(t *testing.T) {
	b := makeBattle("#AAA", "#BBB", 0)
	rows := BuildTimeline([]model.BattleRecord{b})

	var winner, loser model.TimelineRow
	for _, r := range rows {
		switch r.PlayerTag {
		case "#AAA":
			winner = r
		case "#BBB":
			loser = r
		}
	}
	if winner.OpponentTrophies != b.LoserStartingTrophies {
		t.Errorf("winner OpponentTrophies: want %.0f, got %.0f",
			b.LoserStartingTrophies, winner.OpponentTrophies)
	}
	if loser.OpponentTrophies != b.WinnerStartingTrophies {
		t.Errorf("loser OpponentTrophies: want %.0f, got %.0f",
			b.WinnerStartingTrophies, loser.OpponentTrophies)
	}
	if winner.Outcome != model.OutcomeWin || loser.Outcome != model.OutcomeLoss {
		t.Errorf("outcomes: winner=%v loser=%v", winner.Outcome, loser.Outcome)
	}
}

func TestBuildTimeline_SortedByPlayerThenTime(t *testing.T) {
	battles := []model.BattleRecord{
		makeBattle("#ZZZ", "#AAA", 2*time.Hour),
		makeBattle("#AAA", "#ZZZ", 0),
		makeBattle("#ZZZ", "#AAA", time.Hour),
	}
	rows := BuildTimeline(battles)
	for i := 1; i < len(rows); i++ {
		prev, cur := rows[i-1], rows[i]
		if prev.PlayerTag > cur.PlayerTag {
			t.Fatalf("rows not sorted by player at index %d: %q > %q", i, prev.PlayerTag, cur.PlayerTag)
		}
		if prev.PlayerTag == cur.PlayerTag && prev.BattleTime.After(cur.BattleTime) {
			t.Fatalf("rows not time-sorted within player %q at index %d", cur.PlayerTag, i)
		}
	}
}

func TestBuildTimeline_EmptyInput(t *testing.T) {
	rows := BuildTimeline(nil)
	if len(rows) != 0 {
		t.Errorf("empty input must yield empty output, got %d rows", len(rows))
	}
}
