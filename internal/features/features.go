// Package features derives deck, matchup, and tower features from battle
// records. Everything here is a pure transform; missing deck columns simply
// produce zero-valued features.
package features

import (
	"math"
	"sort"
	"strconv"

	"github.com/royalelab/crmetrics/internal/model"
)

// DeckComplexity scores a deck on a weighted blend of average elixir,
// spell count, and legendary count, each normalized to its practical
// ceiling. Higher is more complex.
func DeckComplexity(d model.Deck) float64 {
	elixirNorm := d.ElixirAverage / 5.0
	spellNorm := float64(d.SpellCount) / 8.0
	legendaryNorm := float64(d.LegendaryCount) / 8.0
	return 0.4*elixirNorm + 0.3*spellNorm + 0.3*legendaryNorm
}

// CardLevelStats summarizes a deck's card levels.
type CardLevelStats struct {
	Avg float64
	Min int
	Max int
	Std float64
}

// CardLevels computes level aggregates for a deck; a deck with no level
// columns yields the zero value.
func CardLevels(d model.Deck) CardLevelStats {
	if len(d.CardLevels) == 0 {
		return CardLevelStats{}
	}
	s := CardLevelStats{Min: d.CardLevels[0], Max: d.CardLevels[0]}
	sum := 0
	for _, lvl := range d.CardLevels {
		sum += lvl
		if lvl < s.Min {
			s.Min = lvl
		}
		if lvl > s.Max {
			s.Max = lvl
		}
	}
	s.Avg = float64(sum) / float64(len(d.CardLevels))

	if len(d.CardLevels) > 1 {
		varSum := 0.0
		for _, lvl := range d.CardLevels {
			dlt := float64(lvl) - s.Avg
			varSum += dlt * dlt
		}
		s.Std = math.Sqrt(varSum / float64(len(d.CardLevels)-1))
	}
	return s
}

// Archetype flags derived from deck composition.
type Archetype struct {
	SpellHeavy    bool // 3+ spells
	Beatdown      bool // avg elixir >= 4.0
	Cycle         bool // avg elixir <= 3.0
	BuildingHeavy bool // 2+ structures
}

func ClassifyArchetype(d model.Deck) Archetype {
	return Archetype{
		SpellHeavy:    d.SpellCount >= 3,
		Beatdown:      d.ElixirAverage >= 4.0,
		Cycle:         d.ElixirAverage > 0 && d.ElixirAverage <= 3.0,
		BuildingHeavy: d.StructureCount >= 2,
	}
}

// Matchup holds winner-vs-loser differentials for one battle.
type Matchup struct {
	TrophyDiff    float64
	ElixirDiff    float64
	CardLevelDiff float64
	SpellDiff     int
	CrownDiff     int
	CloseGame     bool // |crown diff| <= 1
	ThreeCrown    bool
}

// MatchupFeatures computes the comparison features for a single battle.
func MatchupFeatures(b model.BattleRecord) Matchup {
	m := Matchup{
		TrophyDiff:    b.WinnerStartingTrophies - b.LoserStartingTrophies,
		ElixirDiff:    b.WinnerDeck.ElixirAverage - b.LoserDeck.ElixirAverage,
		CardLevelDiff: float64(b.WinnerDeck.TotalCardLevel - b.LoserDeck.TotalCardLevel),
		SpellDiff:     b.WinnerDeck.SpellCount - b.LoserDeck.SpellCount,
		CrownDiff:     b.WinnerCrowns - b.LoserCrowns,
	}
	if m.CrownDiff < 0 {
		m.CloseGame = -m.CrownDiff <= 1
	} else {
		m.CloseGame = m.CrownDiff <= 1
	}
	m.ThreeCrown = b.WinnerCrowns == 3
	return m
}

// SummarizeMatchups reduces a battle set to dataset-wide averages of the
// differential features.
func SummarizeMatchups(battles []model.BattleRecord) model.MatchupSummary {
	s := model.MatchupSummary{Battles: len(battles)}
	if len(battles) == 0 {
		return s
	}
	closeGames, threeCrowns := 0, 0
	for _, b := range battles {
		m := MatchupFeatures(b)
		s.AvgTrophyDiff += m.TrophyDiff
		s.AvgElixirDiff += m.ElixirDiff
		s.AvgCardLevelDiff += m.CardLevelDiff
		s.AvgCrownDiff += float64(m.CrownDiff)
		if m.CloseGame {
			closeGames++
		}
		if m.ThreeCrown {
			threeCrowns++
		}
	}
	n := float64(len(battles))
	s.AvgTrophyDiff /= n
	s.AvgElixirDiff /= n
	s.AvgCardLevelDiff /= n
	s.AvgCrownDiff /= n
	s.CloseGameRate = float64(closeGames) / n
	s.ThreeCrownRate = float64(threeCrowns) / n
	return s
}

// DefaultTrophyBrackets are the ladder bracket boundaries.
var DefaultTrophyBrackets = []float64{0, 1000, 2000, 3000, 4000, 5000, 6000, 8000, 10000}

// TrophyBracket maps an average starting-trophy value to its bracket label
// ("1000-2000"); values outside the bracket range report "unknown".
func TrophyBracket(trophies float64, brackets []float64) string {
	if brackets == nil {
		brackets = DefaultTrophyBrackets
	}
	for i := 0; i+1 < len(brackets); i++ {
		if trophies >= brackets[i] && trophies < brackets[i+1] {
			return bracketLabel(brackets[i], brackets[i+1])
		}
	}
	return "unknown"
}

func bracketLabel(lo, hi float64) string {
	return strconv.Itoa(int(lo)) + "-" + strconv.Itoa(int(hi))
}

// SynergyPair is one unordered card pair observed in a deck, with the
// battle outcome from that deck's perspective.
type SynergyPair struct {
	Card1 int64
	Card2 int64
	Won   bool
}

// SynergyPairs expands a deck into its unordered card pairs. Card1 is
// always the smaller ID so a pair has one canonical form.
func SynergyPairs(d model.Deck, won bool) []SynergyPair {
	var pairs []SynergyPair
	for i := 0; i < len(d.CardIDs); i++ {
		for j := i + 1; j < len(d.CardIDs); j++ {
			a, b := d.CardIDs[i], d.CardIDs[j]
			if b < a {
				a, b = b, a
			}
			pairs = append(pairs, SynergyPair{Card1: a, Card2: b, Won: won})
		}
	}
	return pairs
}

// PairLift is the synergy lift metric: how much better a pair performs
// together than its members' independent win rates predict. Lift > 1 is
// positive synergy; a zero expectation yields 0.
func PairLift(pairWinRate, card1WinRate, card2WinRate float64) float64 {
	expected := card1WinRate * card2WinRate
	if expected == 0 {
		return 0
	}
	return pairWinRate / expected
}

// PairStats is the tallied play count and win rate for one card pair.
type PairStats struct {
	Card1   int64
	Card2   int64
	Count   int
	WinRate float64
}

// TopPairs tallies synergy pairs across both decks of every battle and
// returns the limit most played pairs, most played first.
func TopPairs(battles []model.BattleRecord, limit int) []PairStats {
	type key struct{ a, b int64 }
	type tally struct{ count, wins int }
	tallies := make(map[key]*tally)

	addDeck := func(d model.Deck, won bool) {
		for _, p := range SynergyPairs(d, won) {
			k := key{p.Card1, p.Card2}
			tl := tallies[k]
			if tl == nil {
				tl = &tally{}
				tallies[k] = tl
			}
			tl.count++
			if won {
				tl.wins++
			}
		}
	}
	for _, b := range battles {
		addDeck(b.WinnerDeck, true)
		addDeck(b.LoserDeck, false)
	}

	out := make([]PairStats, 0, len(tallies))
	for k, tl := range tallies {
		out = append(out, PairStats{
			Card1:   k.a,
			Card2:   k.b,
			Count:   tl.count,
			WinRate: float64(tl.wins) / float64(tl.count),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		if out[i].Card1 != out[j].Card1 {
			return out[i].Card1 < out[j].Card1
		}
		return out[i].Card2 < out[j].Card2
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
