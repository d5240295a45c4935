// Package cards maps Clash Royale card IDs to names and enriches battle
// CSV files with name columns.
package cards

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// Catalog is a card ID → name mapping.
type Catalog struct {
	names map[int64]string
}

// ParseCatalog builds a catalog from cards.json content. Both the bare
// array form (RoyaleAPI dumps) and the official API's {"items": [...]}
// wrapper are accepted; entries without a usable id/name pair are skipped.
func ParseCatalog(data []byte) (*Catalog, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("cards catalog: invalid JSON")
	}
	root := gjson.ParseBytes(data)
	items := root
	if root.IsObject() {
		items = root.Get("items")
	}
	if !items.IsArray() {
		return nil, fmt.Errorf("cards catalog: expected an array or an items array")
	}

	names := make(map[int64]string)
	items.ForEach(func(_, card gjson.Result) bool {
		id := card.Get("id")
		name := card.Get("name")
		if id.Exists() && name.Exists() && name.String() != "" {
			names[id.Int()] = name.String()
		}
		return true
	})
	if len(names) == 0 {
		return nil, fmt.Errorf("cards catalog: no id/name pairs found")
	}
	return &Catalog{names: names}, nil
}

// LoadCatalog reads and parses a cards.json file from disk.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read cards file: %w", err)
	}
	return ParseCatalog(data)
}

// Len reports the number of known cards.
func (c *Catalog) Len() int { return len(c.names) }

// Name returns the card name for an ID, or ok=false for an unknown ID.
func (c *Catalog) Name(id int64) (string, bool) {
	name, ok := c.names[id]
	return name, ok
}

var (
	listPattern  = regexp.MustCompile(`-?\d+`)
	tokenPattern = regexp.MustCompile(`^-?\d+$`)
)

// delimiters tried in order when splitting a cell that holds several IDs.
var delimiters = []string{",", ";", "|", " "}

// MapCell maps a CSV cell that holds a card ID, or a delimited/bracketed
// list of IDs, to the corresponding names. Unknown IDs and non-integer
// tokens pass through unchanged; multi-token cells come back comma-joined.
func (c *Catalog) MapCell(cell string) string {
	s := strings.TrimSpace(cell)
	if s == "" {
		return cell
	}

	tokens := splitTokens(s)
	if len(tokens) == 1 {
		return c.mapToken(tokens[0])
	}
	mapped := make([]string, len(tokens))
	for i, tok := range tokens {
		mapped[i] = c.mapToken(tok)
	}
	return strings.Join(mapped, ",")
}

func (c *Catalog) mapToken(tok string) string {
	if !tokenPattern.MatchString(tok) {
		return tok
	}
	id, err := strconv.ParseInt(tok, 10, 64)
	if err != nil {
		return tok
	}
	if name, ok := c.names[id]; ok {
		return name
	}
	return tok
}

func splitTokens(s string) []string {
	// JSON-like list: [26000000, 26000001]
	if strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]") {
		return listPattern.FindAllString(s, -1)
	}
	for _, d := range delimiters {
		if strings.Contains(s, d) {
			parts := strings.Split(s, d)
			out := parts[:0]
			for _, p := range parts {
				if p = strings.TrimSpace(p); p != "" {
					out = append(out, p)
				}
			}
			return out
		}
	}
	return []string{s}
}
