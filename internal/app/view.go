package service

import (
	"time"

	"github.com/okian/starboard/internal/domain/grouping"
	"github.com/okian/starboard/internal/domain/ranking"
	"github.com/okian/starboard/internal/domain/viewstate"
)

// Section titles used when no level applies.
const (
	TitleLeaderboard  = "Leaderboard"
	TitleUnregistered = "Unregistered"
)

// Section is one rendered table: ranked rows with stars in the current
// filter.
type Section struct {
	Title string              `json:"title"`
	Level string              `json:"level,omitempty"`
	Rows  []ranking.RankedRow `json:"rows"`
}

// View is the result of one load cycle for one set of inputs.
type View struct {
	Cycle          string          `json:"cycle"`
	GeneratedAt    time.Time       `json:"generated_at"`
	Years          []string        `json:"years"`
	State          viewstate.State `json:"state"`
	Groups         grouping.Groups `json:"-"`
	Sections       []Section       `json:"sections"`
	Empty          bool            `json:"empty"`
	Registrations  int             `json:"registrations"`
	MissingColumns []string        `json:"missing_columns,omitempty"`
}

// YearSelected reports whether the year label counts toward totals.
func (v View) YearSelected(year string) bool { return v.State.YearSelected(year) }

// sections turns grouped rows into display tables. Without any registered
// member there is a single table of everyone.
func sections(g grouping.Groups) []Section {
	if g.Registered() == 0 {
		return []Section{{Title: TitleLeaderboard, Rows: ranking.Board(g.All)}}
	}
	out := make([]Section, 0, len(g.Levels)+1)
	for _, l := range g.Levels {
		out = append(out, Section{Title: l.Level, Level: l.Level, Rows: ranking.Board(l.Rows)})
	}
	out = append(out, Section{Title: TitleUnregistered, Rows: ranking.Board(g.Unregistered)})
	return out
}
