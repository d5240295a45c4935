package storage

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/royalelab/crmetrics/internal/model"
)

// InsertBattles bulk-inserts battle records in a transaction.
func (db *DB) InsertBattles(battles []model.BattleRecord) error {
	if len(battles) == 0 {
		return nil
	}
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO battles(
			battle_time,
			winner_tag, winner_starting_trophies, winner_trophy_change, winner_crowns,
			loser_tag, loser_starting_trophies, loser_trophy_change, loser_crowns,
			game_mode_id, arena_id,
			winner_card_ids, winner_elixir_avg, winner_spell_count,
			winner_structure_count, winner_legendary_count, winner_total_card_level,
			loser_card_ids, loser_elixir_avg, loser_spell_count,
			loser_structure_count, loser_legendary_count, loser_total_card_level
		) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, b := range battles {
		_, err = stmt.Exec(
			b.BattleTime.UTC().Format(timeLayout),
			b.WinnerTag, b.WinnerStartingTrophies, b.WinnerTrophyChange, b.WinnerCrowns,
			b.LoserTag, b.LoserStartingTrophies, b.LoserTrophyChange, b.LoserCrowns,
			b.GameModeID, b.ArenaID,
			joinIDs(b.WinnerDeck.CardIDs), b.WinnerDeck.ElixirAverage, b.WinnerDeck.SpellCount,
			b.WinnerDeck.StructureCount, b.WinnerDeck.LegendaryCount, b.WinnerDeck.TotalCardLevel,
			joinIDs(b.LoserDeck.CardIDs), b.LoserDeck.ElixirAverage, b.LoserDeck.SpellCount,
			b.LoserDeck.StructureCount, b.LoserDeck.LegendaryCount, b.LoserDeck.TotalCardLevel,
		)
		if err != nil {
			return fmt.Errorf("insert battle %s vs %s: %w", b.WinnerTag, b.LoserTag, err)
		}
	}
	return tx.Commit()
}

// BattleCount returns the number of stored battles.
func (db *DB) BattleCount() (int, error) {
	var count int
	err := db.conn.QueryRow("SELECT COUNT(1) FROM battles").Scan(&count)
	return count, err
}

// LoadBattles returns all stored battles ordered by battle_time.
func (db *DB) LoadBattles() ([]model.BattleRecord, error) {
	return db.queryBattles("")
}

// SampleBattles returns a Bernoulli sample of the stored battles at the given
// fraction in [0, 1], ordered by battle_time. The sample is drawn server-side
// and is not seedable.
func (db *DB) SampleBattles(fraction float64) ([]model.BattleRecord, error) {
	if fraction <= 0 {
		return nil, nil
	}
	if fraction >= 1 {
		return db.LoadBattles()
	}
	cutoff := int64(fraction * 1_000_000)
	return db.queryBattles(fmt.Sprintf("WHERE (abs(random()) %% 1000000) < %d", cutoff))
}

func (db *DB) queryBattles(where string) ([]model.BattleRecord, error) {
	rows, err := db.conn.Query(fmt.Sprintf(`
		SELECT battle_time,
		       winner_tag, winner_starting_trophies, winner_trophy_change, winner_crowns,
		       loser_tag, loser_starting_trophies, loser_trophy_change, loser_crowns,
		       game_mode_id, arena_id,
		       winner_card_ids, winner_elixir_avg, winner_spell_count,
		       winner_structure_count, winner_legendary_count, winner_total_card_level,
		       loser_card_ids, loser_elixir_avg, loser_spell_count,
		       loser_structure_count, loser_legendary_count, loser_total_card_level
		FROM battles %s ORDER BY battle_time`, where))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.BattleRecord
	for rows.Next() {
		var b model.BattleRecord
		var battleTime, winnerIDs, loserIDs string
		if err := rows.Scan(
			&battleTime,
			&b.WinnerTag, &b.WinnerStartingTrophies, &b.WinnerTrophyChange, &b.WinnerCrowns,
			&b.LoserTag, &b.LoserStartingTrophies, &b.LoserTrophyChange, &b.LoserCrowns,
			&b.GameModeID, &b.ArenaID,
			&winnerIDs, &b.WinnerDeck.ElixirAverage, &b.WinnerDeck.SpellCount,
			&b.WinnerDeck.StructureCount, &b.WinnerDeck.LegendaryCount, &b.WinnerDeck.TotalCardLevel,
			&loserIDs, &b.LoserDeck.ElixirAverage, &b.LoserDeck.SpellCount,
			&b.LoserDeck.StructureCount, &b.LoserDeck.LegendaryCount, &b.LoserDeck.TotalCardLevel,
		); err != nil {
			return nil, err
		}
		b.BattleTime, err = time.Parse(timeLayout, battleTime)
		if err != nil {
			return nil, fmt.Errorf("parse battle_time %q: %w", battleTime, err)
		}
		b.WinnerDeck.CardIDs = splitIDs(winnerIDs)
		b.LoserDeck.CardIDs = splitIDs(loserIDs)
		out = append(out, b)
	}
	return out, rows.Err()
}

// ReplacePlayerAggregates replaces the player_aggregates table contents in a
// single transaction.
func (db *DB) ReplacePlayerAggregates(aggs []model.PlayerAggregate) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM player_aggregates"); err != nil {
		return err
	}

	stmt, err := tx.Prepare(`
		INSERT INTO player_aggregates(
			player_tag, match_count, win_rate, total_trophy_change,
			starting_trophies, ending_trophies,
			avg_return_gap_hours, median_return_gap_hours, std_return_gap_hours,
			fast_return_rate, max_loss_streak, max_win_streak,
			first_battle, last_battle,
			days_active, trophy_momentum, avg_matches_per_day,
			tilt_score, days_since_last_battle, churned
		) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, a := range aggs {
		_, err = stmt.Exec(
			a.PlayerTag, a.MatchCount, a.WinRate, a.TotalTrophyChange,
			a.StartingTrophies, a.EndingTrophies,
			a.AvgReturnGapHours, a.MedianReturnGapHours, a.StdReturnGapHours,
			a.FastReturnRate, a.MaxLossStreak, a.MaxWinStreak,
			a.FirstBattle.UTC().Format(timeLayout), a.LastBattle.UTC().Format(timeLayout),
			a.DaysActive, a.TrophyMomentum, a.AvgMatchesPerDay,
			a.TiltScore, a.DaysSinceLastBattle, a.Churned,
		)
		if err != nil {
			return fmt.Errorf("insert player_aggregates for %s: %w", a.PlayerTag, err)
		}
	}
	return tx.Commit()
}

const aggregateColumns = `
	player_tag, match_count, win_rate, total_trophy_change,
	starting_trophies, ending_trophies,
	avg_return_gap_hours, median_return_gap_hours, std_return_gap_hours,
	fast_return_rate, max_loss_streak, max_win_streak,
	first_battle, last_battle,
	days_active, trophy_momentum, avg_matches_per_day,
	tilt_score, days_since_last_battle, churned`

func scanAggregate(rows interface{ Scan(...any) error }) (model.PlayerAggregate, error) {
	var a model.PlayerAggregate
	var first, last string
	err := rows.Scan(
		&a.PlayerTag, &a.MatchCount, &a.WinRate, &a.TotalTrophyChange,
		&a.StartingTrophies, &a.EndingTrophies,
		&a.AvgReturnGapHours, &a.MedianReturnGapHours, &a.StdReturnGapHours,
		&a.FastReturnRate, &a.MaxLossStreak, &a.MaxWinStreak,
		&first, &last,
		&a.DaysActive, &a.TrophyMomentum, &a.AvgMatchesPerDay,
		&a.TiltScore, &a.DaysSinceLastBattle, &a.Churned,
	)
	if err != nil {
		return a, err
	}
	if a.FirstBattle, err = time.Parse(timeLayout, first); err != nil {
		return a, fmt.Errorf("parse first_battle %q: %w", first, err)
	}
	if a.LastBattle, err = time.Parse(timeLayout, last); err != nil {
		return a, fmt.Errorf("parse last_battle %q: %w", last, err)
	}
	return a, nil
}

// GetPlayerAggregate returns the stored aggregate for one player tag, or nil
// if the player has no stored row.
func (db *DB) GetPlayerAggregate(tag string) (*model.PlayerAggregate, error) {
	row := db.conn.QueryRow(
		"SELECT "+aggregateColumns+" FROM player_aggregates WHERE player_tag = ?", tag)
	a, err := scanAggregate(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// ListPlayerAggregates returns stored aggregates ordered by the given column
// descending. Only known aggregate columns are accepted. limit <= 0 means no
// limit.
func (db *DB) ListPlayerAggregates(orderBy string, limit int) ([]model.PlayerAggregate, error) {
	switch orderBy {
	case "match_count", "win_rate", "tilt_score", "fast_return_rate",
		"trophy_momentum", "days_since_last_battle", "avg_matches_per_day",
		"max_loss_streak", "ending_trophies":
	case "":
		orderBy = "match_count"
	default:
		return nil, fmt.Errorf("unknown order column %q", orderBy)
	}
	query := "SELECT " + aggregateColumns +
		" FROM player_aggregates ORDER BY " + orderBy + " DESC, player_tag"
	if limit > 0 {
		query += " LIMIT " + strconv.Itoa(limit)
	}

	rows, err := db.conn.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.PlayerAggregate
	for rows.Next() {
		a, err := scanAggregate(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// ReplaceBucketTilts replaces the tilt_by_streak table contents, preserving
// the given slice order for ordered reads.
func (db *DB) ReplaceBucketTilts(buckets []model.BucketTilt) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM tilt_by_streak"); err != nil {
		return err
	}

	stmt, err := tx.Prepare(`
		INSERT INTO tilt_by_streak(bucket, ord, fast_return_rate, median_return_gap_hours, battle_count)
		VALUES (?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, b := range buckets {
		_, err = stmt.Exec(b.Bucket, i, b.FastReturnRate, b.MedianReturnGapHours, b.BattleCount)
		if err != nil {
			return fmt.Errorf("insert tilt_by_streak for %s: %w", b.Bucket, err)
		}
	}
	return tx.Commit()
}

// GetBucketTilts returns the stored tilt-by-streak rows in insertion order.
func (db *DB) GetBucketTilts() ([]model.BucketTilt, error) {
	rows, err := db.conn.Query(`
		SELECT bucket, fast_return_rate, median_return_gap_hours, battle_count
		FROM tilt_by_streak ORDER BY ord`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.BucketTilt
	for rows.Next() {
		var b model.BucketTilt
		if err := rows.Scan(&b.Bucket, &b.FastReturnRate, &b.MedianReturnGapHours, &b.BattleCount); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// Overview returns a dataset-wide summary of the stored battles.
func (db *DB) Overview() (model.DatasetOverview, error) {
	var o model.DatasetOverview
	var earliest, latest sql.NullString
	err := db.conn.QueryRow(`
		SELECT COUNT(1), MIN(battle_time), MAX(battle_time),
		       COUNT(DISTINCT arena_id), COUNT(DISTINCT game_mode_id)
		FROM battles`).
		Scan(&o.TotalBattles, &earliest, &latest, &o.UniqueArenas, &o.UniqueModes)
	if err != nil {
		return o, err
	}
	o.EarliestTime = earliest.String
	o.LatestTime = latest.String

	err = db.conn.QueryRow(`
		SELECT COUNT(1) FROM (
			SELECT winner_tag AS tag FROM battles WHERE winner_tag != ''
			UNION
			SELECT loser_tag FROM battles WHERE loser_tag != ''
		)`).Scan(&o.UniquePlayers)
	return o, err
}

// QueryRaw runs an arbitrary query and returns column names plus all rows as
// strings. NULLs come back as empty strings.
func (db *DB) QueryRaw(query string) ([]string, [][]string, error) {
	rows, err := db.conn.Query(query)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, nil, err
	}

	var out [][]string
	for rows.Next() {
		vals := make([]sql.NullString, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, nil, err
		}
		row := make([]string, len(cols))
		for i, v := range vals {
			row[i] = v.String
		}
		out = append(out, row)
	}
	return cols, out, rows.Err()
}

func joinIDs(ids []int64) string {
	if len(ids) == 0 {
		return ""
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ",")
}

func splitIDs(s string) []int64 {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]int64, 0, len(parts))
	for _, p := range parts {
		id, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			continue
		}
		out = append(out, id)
	}
	return out
}
