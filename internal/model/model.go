package model

import "time"

// Outcome is the result of one battle from a single player's perspective.
type Outcome int

const (
	OutcomeLoss Outcome = 0
	OutcomeWin  Outcome = 1
)

func (o Outcome) String() string {
	if o == OutcomeWin {
		return "win"
	}
	return "loss"
}

// Deck describes one side's deck in a battle. Card slots that were missing
// from the source file are left at zero; ElixirAverage and the counts are
// only meaningful when the corresponding columns were present.
type Deck struct {
	CardIDs        []int64
	CardLevels     []int
	ElixirAverage  float64
	SpellCount     int
	StructureCount int
	LegendaryCount int
	TotalCardLevel int
}

// BattleRecord is one completed ladder match as read from the battle log.
// Exactly one winner and one loser per record.
type BattleRecord struct {
	BattleTime time.Time

	WinnerTag              string
	WinnerStartingTrophies float64
	WinnerTrophyChange     float64
	WinnerCrowns           int

	LoserTag              string
	LoserStartingTrophies float64
	LoserTrophyChange     float64
	LoserCrowns           int

	GameModeID int64
	ArenaID    int64

	WinnerDeck Deck
	LoserDeck  Deck
}

// TimelineRow is one battle seen from a single player's perspective.
// Two TimelineRows are derived from every BattleRecord (winner view and
// loser view). Rows are immutable after construction except for the
// temporal-feature fields, which are filled in by a single ordered pass
// over each player's partition.
type TimelineRow struct {
	PlayerTag        string
	BattleTime       time.Time
	TrophiesBefore   float64
	TrophyChange     float64
	Crowns           int
	OpponentTrophies float64
	GameMode         int64
	Arena            int64
	Outcome          Outcome

	// Temporal features. NextBattleTime is the zero value and HasNext is
	// false on the last row of a player's partition; ReturnGapHours is
	// only meaningful when HasNext is true.
	NextBattleTime time.Time
	HasNext        bool
	ReturnGapHours float64
	FastReturn1hr  bool
	LossStreak     int
	WinStreak      int
	StreakBucket   string
}

// PlayerAggregate is one player's timeline folded down to a feature row.
// Players with fewer than the minimum match count are never materialized.
type PlayerAggregate struct {
	PlayerTag string

	MatchCount        int
	WinRate           float64
	TotalTrophyChange float64
	StartingTrophies  float64
	EndingTrophies    float64

	AvgReturnGapHours    float64
	MedianReturnGapHours float64
	StdReturnGapHours    float64
	FastReturnRate       float64
	MaxLossStreak        int
	MaxWinStreak         int

	FirstBattle time.Time
	LastBattle  time.Time

	DaysActive       float64
	TrophyMomentum   float64
	AvgMatchesPerDay float64

	TiltScore float64

	// Churn labeling, relative to the dataset's last observed battle.
	DaysSinceLastBattle float64
	Churned             int
}

// ChurnRisk is a coarse label for reporting.
func (a *PlayerAggregate) ChurnRisk() string {
	if a.Churned == 1 {
		return "High"
	}
	return "Low"
}

// BucketTilt summarizes fast-return behaviour within one loss-streak bucket.
type BucketTilt struct {
	Bucket               string
	FastReturnRate       float64
	MedianReturnGapHours float64
	BattleCount          int
}

// MatchupSummary holds dataset-wide averages of the winner-vs-loser
// differential features.
type MatchupSummary struct {
	Battles          int
	AvgTrophyDiff    float64
	AvgElixirDiff    float64
	AvgCardLevelDiff float64
	AvgCrownDiff     float64
	CloseGameRate    float64
	ThreeCrownRate   float64
}

// DatasetOverview is a lightweight summary of the stored battles for the
// summary command.
type DatasetOverview struct {
	TotalBattles  int
	UniquePlayers int
	EarliestTime  string
	LatestTime    string
	UniqueArenas  int
	UniqueModes   int
}
