// Package ranking orders leaderboard rows for display.
package ranking

import (
	"cmp"
	"slices"
	"sync"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/okian/starboard/internal/domain/model"
)

// EmphasisCutoff is the last position rendered with emphasis.
const EmphasisCutoff = 3

// collator orders names the way a browser's localeCompare does. A Collator
// keeps scratch buffers, so calls are serialised by collatorMu.
var collator = collate.New(language.Und) //nolint:gochecknoglobals // shared collation table

var collatorMu sync.Mutex //nolint:gochecknoglobals // guards collator

// RankedRow is a row with its 1-based display position.
type RankedRow struct {
	model.Row
	Position int  `json:"position"`
	Emphasis bool `json:"emphasis"`
}

// Sort returns rows ordered by total descending, then name ascending. The
// input slice is not modified.
func Sort(rows []model.Row) []model.Row {
	out := slices.Clone(rows)
	slices.SortStableFunc(out, Compare)
	return out
}

// Compare orders a before b when it has more stars, or the same stars and a
// name that collates first. Case and accents only break ties between names
// that are otherwise equal.
func Compare(a, b model.Row) int {
	if c := cmp.Compare(b.Total, a.Total); c != 0 {
		return c
	}
	return CompareNames(a.Name, b.Name)
}

// CompareNames collates two display names.
func CompareNames(a, b string) int {
	collatorMu.Lock()
	defer collatorMu.Unlock()
	return collator.CompareString(a, b)
}

// Visible drops rows without any star in the current filter.
func Visible(rows []model.Row) []model.Row {
	out := make([]model.Row, 0, len(rows))
	for _, r := range rows {
		if r.Total > 0 {
			out = append(out, r)
		}
	}
	return out
}

// Ranked numbers visible rows in order and flags the top positions.
func Ranked(rows []model.Row) []RankedRow {
	out := make([]RankedRow, len(rows))
	for i, r := range rows {
		out[i] = RankedRow{Row: r, Position: i + 1, Emphasis: i < EmphasisCutoff}
	}
	return out
}

// Board sorts, filters and ranks rows in one step.
func Board(rows []model.Row) []RankedRow {
	return Ranked(Visible(Sort(rows)))
}
