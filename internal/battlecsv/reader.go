// Package battlecsv reads Clash Royale battle-log CSV files into
// BattleRecords. The reader is header-driven: columns are located by name,
// so the file may carry any number of extra columns in any order.
package battlecsv

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/royalelab/crmetrics/internal/model"
)

// requiredColumns must all be present in the header. Deck columns are
// optional and decoded only when found.
var requiredColumns = []string{
	"battleTime",
	"winner.tag", "winner.startingTrophies", "winner.trophyChange", "winner.crowns",
	"loser.tag", "loser.startingTrophies", "loser.trophyChange", "loser.crowns",
	"gameMode.id", "arena.id",
}

// battleTimeLayouts are the accepted timestamp formats: RFC3339 and the
// compact form the game API emits (20200101T120000.000Z).
var battleTimeLayouts = []string{
	time.RFC3339,
	"20060102T150405.000Z",
	"2006-01-02 15:04:05",
}

// ParseBattleTime parses a battle timestamp in any accepted layout.
func ParseBattleTime(s string) (time.Time, error) {
	for _, layout := range battleTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp layout")
}

// Reader streams BattleRecords out of a battles CSV file.
type Reader struct {
	cr   *csv.Reader
	cols map[string]int
}

// NewReader reads and validates the header row. A missing required column
// is a DataFormatError.
func NewReader(r io.Reader) (*Reader, error) {
	cr := csv.NewReader(r)
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[name] = i
	}
	for _, name := range requiredColumns {
		if _, ok := cols[name]; !ok {
			return nil, &model.DataFormatError{Column: name, Err: fmt.Errorf("required column missing")}
		}
	}
	return &Reader{cr: cr, cols: cols}, nil
}

// Columns returns the header column names seen by the reader.
func (r *Reader) Columns() map[string]int { return r.cols }

// Read returns the next BattleRecord, or io.EOF when the file is exhausted.
func (r *Reader) Read() (model.BattleRecord, error) {
	rec, err := r.cr.Read()
	if err != nil {
		return model.BattleRecord{}, err
	}

	var b model.BattleRecord

	ts := r.field(rec, "battleTime")
	b.BattleTime, err = ParseBattleTime(ts)
	if err != nil {
		return model.BattleRecord{}, &model.DataFormatError{Column: "battleTime", Value: ts, Err: err}
	}

	b.WinnerTag = r.field(rec, "winner.tag")
	b.LoserTag = r.field(rec, "loser.tag")

	if b.WinnerStartingTrophies, err = r.floatField(rec, "winner.startingTrophies"); err != nil {
		return model.BattleRecord{}, err
	}
	if b.WinnerTrophyChange, err = r.floatField(rec, "winner.trophyChange"); err != nil {
		return model.BattleRecord{}, err
	}
	if b.WinnerCrowns, err = r.intField(rec, "winner.crowns"); err != nil {
		return model.BattleRecord{}, err
	}
	if b.LoserStartingTrophies, err = r.floatField(rec, "loser.startingTrophies"); err != nil {
		return model.BattleRecord{}, err
	}
	if b.LoserTrophyChange, err = r.floatField(rec, "loser.trophyChange"); err != nil {
		return model.BattleRecord{}, err
	}
	if b.LoserCrowns, err = r.intField(rec, "loser.crowns"); err != nil {
		return model.BattleRecord{}, err
	}
	gm, err := r.floatField(rec, "gameMode.id")
	if err != nil {
		return model.BattleRecord{}, err
	}
	b.GameModeID = int64(gm)
	ar, err := r.floatField(rec, "arena.id")
	if err != nil {
		return model.BattleRecord{}, err
	}
	b.ArenaID = int64(ar)

	b.WinnerDeck = r.deck(rec, "winner")
	b.LoserDeck = r.deck(rec, "loser")
	return b, nil
}

// ReadAll drains the reader. An empty file (header only) yields an empty
// slice, not an error.
func (r *Reader) ReadAll() ([]model.BattleRecord, error) {
	var out []model.BattleRecord
	for {
		b, err := r.Read()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
}

func (r *Reader) field(rec []string, name string) string {
	idx, ok := r.cols[name]
	if !ok || idx >= len(rec) {
		return ""
	}
	return rec[idx]
}

// floatField parses a numeric column. Empty cells read as 0 (the source
// data leaves trophy columns blank for some casual modes); a non-empty
// cell that fails to parse is a DataFormatError.
func (r *Reader) floatField(rec []string, name string) (float64, error) {
	s := r.field(rec, name)
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, &model.DataFormatError{Column: name, Value: s, Err: err}
	}
	return v, nil
}

func (r *Reader) intField(rec []string, name string) (int, error) {
	v, err := r.floatField(rec, name)
	if err != nil {
		return 0, err
	}
	return int(v), nil
}

// deck decodes the optional per-side deck columns. Parse failures in deck
// columns are tolerated (cell left at zero): decks feed derived features,
// not the core pipeline.
func (r *Reader) deck(rec []string, side string) model.Deck {
	var d model.Deck
	for i := 1; i <= 8; i++ {
		if s := r.field(rec, fmt.Sprintf("%s.card%d.id", side, i)); s != "" {
			if id, err := strconv.ParseInt(s, 10, 64); err == nil {
				d.CardIDs = append(d.CardIDs, id)
			}
		}
		if s := r.field(rec, fmt.Sprintf("%s.card%d.level", side, i)); s != "" {
			if lvl, err := strconv.Atoi(s); err == nil {
				d.CardLevels = append(d.CardLevels, lvl)
			}
		}
	}
	d.ElixirAverage = optFloat(r, rec, side+".elixir.average")
	d.SpellCount = int(optFloat(r, rec, side+".spell.count"))
	d.StructureCount = int(optFloat(r, rec, side+".structure.count"))
	d.LegendaryCount = int(optFloat(r, rec, side+".legendary.count"))
	d.TotalCardLevel = int(optFloat(r, rec, side+".totalcard.level"))
	return d
}

func optFloat(r *Reader, rec []string, name string) float64 {
	s := r.field(rec, name)
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
