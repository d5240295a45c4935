package storage

import (
	"testing"
	"time"

	"github.com/royalelab/crmetrics/internal/model"
)

func openMemDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open in-memory db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func sampleBattle(at time.Time, winner, loser string) model.BattleRecord {
	return model.BattleRecord{
		BattleTime:             at,
		WinnerTag:              winner,
		WinnerStartingTrophies: 5000,
		WinnerTrophyChange:     30,
		WinnerCrowns:           3,
		LoserTag:               loser,
		LoserStartingTrophies:  4950,
		LoserTrophyChange:      -30,
		LoserCrowns:            1,
		GameModeID:             72000006,
		ArenaID:                54000013,
		WinnerDeck: model.Deck{
			CardIDs:        []int64{26000000, 26000001, 28000000},
			ElixirAverage:  3.5,
			SpellCount:     1,
			LegendaryCount: 1,
			TotalCardLevel: 39,
		},
	}
}

func TestBattleRoundTrip(t *testing.T) {
	db := openMemDB(t)

	t0 := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	battles := []model.BattleRecord{
		sampleBattle(t0.Add(time.Hour), "#B", "#C"),
		sampleBattle(t0, "#A", "#B"),
	}
	if err := db.InsertBattles(battles); err != nil {
		t.Fatalf("InsertBattles: %v", err)
	}

	n, err := db.BattleCount()
	if err != nil {
		t.Fatalf("BattleCount: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 battles, got %d", n)
	}

	got, err := db.LoadBattles()
	if err != nil {
		t.Fatalf("LoadBattles: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 battles, got %d", len(got))
	}
	// Ordered by battle_time — the earlier battle comes first.
	if got[0].WinnerTag != "#A" {
		t.Errorf("expected #A first (earliest), got %s", got[0].WinnerTag)
	}
	if !got[0].BattleTime.Equal(t0) {
		t.Errorf("battle time round trip: want %v, got %v", t0, got[0].BattleTime)
	}
	if got[0].WinnerDeck.ElixirAverage != 3.5 {
		t.Errorf("winner elixir avg: want 3.5, got %f", got[0].WinnerDeck.ElixirAverage)
	}
	if len(got[0].WinnerDeck.CardIDs) != 3 || got[0].WinnerDeck.CardIDs[2] != 28000000 {
		t.Errorf("winner card ids mismatch: %v", got[0].WinnerDeck.CardIDs)
	}
	if got[0].LoserDeck.CardIDs != nil {
		t.Errorf("expected empty loser deck, got %v", got[0].LoserDeck.CardIDs)
	}
}

func TestSampleBattlesBounds(t *testing.T) {
	db := openMemDB(t)

	t0 := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	var battles []model.BattleRecord
	for i := 0; i < 20; i++ {
		battles = append(battles, sampleBattle(t0.Add(time.Duration(i)*time.Minute), "#A", "#B"))
	}
	if err := db.InsertBattles(battles); err != nil {
		t.Fatalf("InsertBattles: %v", err)
	}

	all, err := db.SampleBattles(1.0)
	if err != nil {
		t.Fatalf("SampleBattles(1.0): %v", err)
	}
	if len(all) != 20 {
		t.Errorf("fraction 1.0 should return all battles, got %d", len(all))
	}

	none, err := db.SampleBattles(0)
	if err != nil {
		t.Fatalf("SampleBattles(0): %v", err)
	}
	if len(none) != 0 {
		t.Errorf("fraction 0 should return nothing, got %d", len(none))
	}
}

func TestPlayerAggregateRoundTrip(t *testing.T) {
	db := openMemDB(t)

	first := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	last := time.Date(2024, 1, 5, 12, 0, 0, 0, time.UTC)
	aggs := []model.PlayerAggregate{
		{
			PlayerTag: "#A", MatchCount: 25, WinRate: 0.6, TotalTrophyChange: 120,
			StartingTrophies: 5000, EndingTrophies: 5120,
			AvgReturnGapHours: 4.5, MedianReturnGapHours: 2.0, StdReturnGapHours: 6.1,
			FastReturnRate: 0.4, MaxLossStreak: 3, MaxWinStreak: 5,
			FirstBattle: first, LastBattle: last,
			DaysActive: 4.5, TrophyMomentum: 26.7, AvgMatchesPerDay: 5.6,
			TiltScore: 0.33, DaysSinceLastBattle: 9.5, Churned: 1,
		},
		{
			PlayerTag: "#B", MatchCount: 12, WinRate: 0.5,
			FirstBattle: first, LastBattle: last,
		},
	}
	if err := db.ReplacePlayerAggregates(aggs); err != nil {
		t.Fatalf("ReplacePlayerAggregates: %v", err)
	}

	a, err := db.GetPlayerAggregate("#A")
	if err != nil {
		t.Fatalf("GetPlayerAggregate: %v", err)
	}
	if a == nil {
		t.Fatal("expected aggregate for #A")
	}
	if a.MatchCount != 25 || a.WinRate != 0.6 || a.TiltScore != 0.33 {
		t.Errorf("aggregate mismatch: matches=%d winrate=%f tilt=%f", a.MatchCount, a.WinRate, a.TiltScore)
	}
	if !a.FirstBattle.Equal(first) || !a.LastBattle.Equal(last) {
		t.Errorf("battle time round trip: first=%v last=%v", a.FirstBattle, a.LastBattle)
	}
	if a.Churned != 1 || a.ChurnRisk() != "High" {
		t.Errorf("churn round trip: churned=%d risk=%s", a.Churned, a.ChurnRisk())
	}

	missing, err := db.GetPlayerAggregate("#NOPE")
	if err != nil {
		t.Fatalf("GetPlayerAggregate missing: %v", err)
	}
	if missing != nil {
		t.Error("expected nil for unknown tag")
	}
}

func TestReplacePlayerAggregatesOverwrites(t *testing.T) {
	db := openMemDB(t)

	first := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	old := []model.PlayerAggregate{
		{PlayerTag: "#OLD", MatchCount: 10, FirstBattle: first, LastBattle: first},
	}
	if err := db.ReplacePlayerAggregates(old); err != nil {
		t.Fatalf("first ReplacePlayerAggregates: %v", err)
	}

	next := []model.PlayerAggregate{
		{PlayerTag: "#NEW", MatchCount: 11, FirstBattle: first, LastBattle: first},
	}
	if err := db.ReplacePlayerAggregates(next); err != nil {
		t.Fatalf("second ReplacePlayerAggregates: %v", err)
	}

	gone, err := db.GetPlayerAggregate("#OLD")
	if err != nil {
		t.Fatalf("GetPlayerAggregate: %v", err)
	}
	if gone != nil {
		t.Error("expected #OLD to be replaced")
	}
	kept, _ := db.GetPlayerAggregate("#NEW")
	if kept == nil {
		t.Fatal("expected #NEW after replace")
	}
}

func TestListPlayerAggregates(t *testing.T) {
	db := openMemDB(t)

	first := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	aggs := []model.PlayerAggregate{
		{PlayerTag: "#A", MatchCount: 10, WinRate: 0.9, FirstBattle: first, LastBattle: first},
		{PlayerTag: "#B", MatchCount: 30, WinRate: 0.4, FirstBattle: first, LastBattle: first},
		{PlayerTag: "#C", MatchCount: 20, WinRate: 0.5, FirstBattle: first, LastBattle: first},
	}
	if err := db.ReplacePlayerAggregates(aggs); err != nil {
		t.Fatalf("ReplacePlayerAggregates: %v", err)
	}

	byMatches, err := db.ListPlayerAggregates("", 2)
	if err != nil {
		t.Fatalf("ListPlayerAggregates: %v", err)
	}
	if len(byMatches) != 2 {
		t.Fatalf("expected limit 2, got %d", len(byMatches))
	}
	if byMatches[0].PlayerTag != "#B" || byMatches[1].PlayerTag != "#C" {
		t.Errorf("default order should be match_count DESC: %s, %s",
			byMatches[0].PlayerTag, byMatches[1].PlayerTag)
	}

	byWinRate, err := db.ListPlayerAggregates("win_rate", 0)
	if err != nil {
		t.Fatalf("ListPlayerAggregates win_rate: %v", err)
	}
	if byWinRate[0].PlayerTag != "#A" {
		t.Errorf("win_rate order should put #A first, got %s", byWinRate[0].PlayerTag)
	}

	if _, err := db.ListPlayerAggregates("player_tag; DROP TABLE battles", 0); err == nil {
		t.Error("expected error for unknown order column")
	}
}

func TestBucketTiltsPreserveOrder(t *testing.T) {
	db := openMemDB(t)

	buckets := []model.BucketTilt{
		{Bucket: "0", FastReturnRate: 0.2, MedianReturnGapHours: 5, BattleCount: 100},
		{Bucket: "1-2", FastReturnRate: 0.3, MedianReturnGapHours: 4, BattleCount: 60},
		{Bucket: "10+", FastReturnRate: 0.8, MedianReturnGapHours: 0.5, BattleCount: 3},
	}
	if err := db.ReplaceBucketTilts(buckets); err != nil {
		t.Fatalf("ReplaceBucketTilts: %v", err)
	}

	got, err := db.GetBucketTilts()
	if err != nil {
		t.Fatalf("GetBucketTilts: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 buckets, got %d", len(got))
	}
	// "10+" sorts before "1-2" lexically; insertion order must win.
	for i, b := range buckets {
		if got[i].Bucket != b.Bucket {
			t.Errorf("bucket %d: want %s, got %s", i, b.Bucket, got[i].Bucket)
		}
	}
	if got[2].FastReturnRate != 0.8 || got[2].BattleCount != 3 {
		t.Errorf("bucket values mismatch: %+v", got[2])
	}
}

func TestOverview(t *testing.T) {
	db := openMemDB(t)

	t0 := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	battles := []model.BattleRecord{
		sampleBattle(t0, "#A", "#B"),
		sampleBattle(t0.Add(time.Hour), "#B", "#C"),
	}
	if err := db.InsertBattles(battles); err != nil {
		t.Fatalf("InsertBattles: %v", err)
	}

	o, err := db.Overview()
	if err != nil {
		t.Fatalf("Overview: %v", err)
	}
	if o.TotalBattles != 2 {
		t.Errorf("TotalBattles: want 2, got %d", o.TotalBattles)
	}
	if o.UniquePlayers != 3 {
		t.Errorf("UniquePlayers: want 3, got %d", o.UniquePlayers)
	}
	if o.UniqueArenas != 1 || o.UniqueModes != 1 {
		t.Errorf("arena/mode counts: %d/%d", o.UniqueArenas, o.UniqueModes)
	}
	if o.EarliestTime == "" || o.LatestTime == "" {
		t.Error("expected non-empty time bounds")
	}
}

func TestQueryRaw(t *testing.T) {
	db := openMemDB(t)

	t0 := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	if err := db.InsertBattles([]model.BattleRecord{sampleBattle(t0, "#A", "#B")}); err != nil {
		t.Fatalf("InsertBattles: %v", err)
	}

	cols, rows, err := db.QueryRaw("SELECT winner_tag, winner_crowns FROM battles")
	if err != nil {
		t.Fatalf("QueryRaw: %v", err)
	}
	if len(cols) != 2 || cols[0] != "winner_tag" {
		t.Errorf("columns mismatch: %v", cols)
	}
	if len(rows) != 1 || rows[0][0] != "#A" || rows[0][1] != "3" {
		t.Errorf("rows mismatch: %v", rows)
	}

	if _, _, err := db.QueryRaw("SELECT FROM nothing"); err == nil {
		t.Error("expected error for invalid SQL")
	}
}
