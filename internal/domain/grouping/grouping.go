// Package grouping splits leaderboard rows into registered levels and the
// unregistered remainder.
package grouping

import (
	"slices"
	"strings"

	"github.com/okian/starboard/internal/domain/model"
	"github.com/okian/starboard/internal/domain/ranking"
)

// UnspecifiedLevel labels registered members whose level cell was blank.
const UnspecifiedLevel = "Unspecified Level"

// Lookup resolves a display name to its registration entry.
type Lookup interface {
	Lookup(name string) (model.RegistrationEntry, bool)
}

// LevelGroup is the registered members of one level.
type LevelGroup struct {
	Level string      `json:"level"`
	Rows  []model.Row `json:"rows"`
}

// Groups is the classified leaderboard. Every slice is in ranking order and
// still holds rows with a zero total.
type Groups struct {
	Levels       []LevelGroup `json:"levels"`
	Unregistered []model.Row  `json:"unregistered"`
	All          []model.Row  `json:"all"`
}

// Registered counts rows matched to a registration entry.
func (g Groups) Registered() int {
	n := 0
	for _, l := range g.Levels {
		n += len(l.Rows)
	}
	return n
}

// Group classifies rows by an exact match of their name against idx. A nil idx
// leaves every row unregistered.
func Group(rows []model.Row, idx Lookup) Groups {
	byLevel := map[string][]model.Row{}
	var unregistered []model.Row
	all := make([]model.Row, 0, len(rows))

	for _, r := range rows {
		if idx != nil {
			if e, ok := idx.Lookup(r.Name); ok {
				r.FullName = e.FullName
				r.Level = e.Level
				level := e.Level
				if level == "" {
					level = UnspecifiedLevel
				}
				byLevel[level] = append(byLevel[level], r)
				all = append(all, r)
				continue
			}
		}
		unregistered = append(unregistered, r)
		all = append(all, r)
	}

	g := Groups{
		Unregistered: ranking.Sort(unregistered),
		All:          ranking.Sort(all),
	}
	for _, level := range levelOrder(byLevel) {
		g.Levels = append(g.Levels, LevelGroup{Level: level, Rows: ranking.Sort(byLevel[level])})
	}
	return g
}

// levelOrder sorts level names alphabetically with UnspecifiedLevel last.
func levelOrder(byLevel map[string][]model.Row) []string {
	levels := make([]string, 0, len(byLevel))
	for l := range byLevel {
		levels = append(levels, l)
	}
	slices.SortFunc(levels, func(a, b string) int {
		switch {
		case a == b:
			return 0
		case a == UnspecifiedLevel:
			return 1
		case b == UnspecifiedLevel:
			return -1
		}
		return strings.Compare(a, b)
	})
	return levels
}
