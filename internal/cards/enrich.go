package cards

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strings"
)

// cardIDColumn matches the per-slot deck columns: winner.card1.id through
// loser.card8.id.
var cardIDColumn = regexp.MustCompile(`^(winner|loser)\.card[1-8]\.id$`)

// EnrichStats reports what an enrichment pass did.
type EnrichStats struct {
	Rows        int
	IDColumns   []string
	NameColumns []string
}

// Enrich streams a battles CSV from in to out, appending a ".name" column
// for every card-ID column found in the header. Original columns are
// preserved untouched; unknown IDs pass through as their original tokens.
// Falls back to any column containing both "card" and "id" when none match
// the canonical pattern.
func (c *Catalog) Enrich(in io.Reader, out io.Writer) (EnrichStats, error) {
	r := csv.NewReader(in)
	w := csv.NewWriter(out)

	header, err := r.Read()
	if err != nil {
		return EnrichStats{}, fmt.Errorf("read header: %w", err)
	}

	var stats EnrichStats
	var idIdx []int
	for i, name := range header {
		if cardIDColumn.MatchString(name) {
			idIdx = append(idIdx, i)
			stats.IDColumns = append(stats.IDColumns, name)
		}
	}
	if len(idIdx) == 0 {
		// Loose fallback for non-canonical exports.
		for i, name := range header {
			lower := strings.ToLower(name)
			if strings.Contains(lower, "card") && strings.Contains(lower, "id") {
				idIdx = append(idIdx, i)
				stats.IDColumns = append(stats.IDColumns, name)
			}
		}
	}
	if len(idIdx) == 0 {
		return EnrichStats{}, fmt.Errorf("no card ID columns found in header")
	}

	outHeader := append([]string(nil), header...)
	for _, i := range idIdx {
		nameCol := strings.Replace(header[i], ".id", ".name", 1)
		outHeader = append(outHeader, nameCol)
		stats.NameColumns = append(stats.NameColumns, nameCol)
	}
	if err := w.Write(outHeader); err != nil {
		return stats, fmt.Errorf("write header: %w", err)
	}

	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return stats, fmt.Errorf("read row %d: %w", stats.Rows+1, err)
		}
		outRec := append([]string(nil), rec...)
		for _, i := range idIdx {
			cell := ""
			if i < len(rec) {
				cell = rec[i]
			}
			outRec = append(outRec, c.MapCell(cell))
		}
		if err := w.Write(outRec); err != nil {
			return stats, fmt.Errorf("write row %d: %w", stats.Rows+1, err)
		}
		stats.Rows++
	}

	w.Flush()
	return stats, w.Error()
}
