// Package aggregate merges yearly snapshots into one row per member.
package aggregate

import (
	"slices"

	"github.com/okian/starboard/internal/domain/model"
	"github.com/okian/starboard/internal/domain/viewstate"
)

// anonymousPrefix is shown for members who never set a display name.
const anonymousPrefix = "User "

// Compute builds one row per member id seen in any year. PerYear has one entry
// per record in years; Total sums only the years f selects. Rows come back
// ordered by id so the output is stable for equal input.
func Compute(years []model.YearRecord, f viewstate.Filter) []model.Row {
	byYear, ids := index(years)
	rows := make([]model.Row, 0, len(ids))
	for _, id := range ids {
		row := model.Row{ID: id, PerYear: make([]int, len(years))}
		for i, yr := range years {
			m, ok := byYear[i][id]
			if !ok {
				continue
			}
			if row.Name == "" {
				row.Name = m.DisplayName()
			}
			row.LastStarTS = max(row.LastStarTS, m.LastStarTS)
			row.PerYear[i] = CountStars(m, f)
			if f.YearSelected(yr.Year) {
				row.Total += row.PerYear[i]
			}
		}
		if row.Name == "" {
			row.Name = anonymousPrefix + id
		}
		rows = append(rows, row)
	}
	return rows
}

// CountStars counts the parts m completed that pass the day and date filters.
// A part with a zero timestamp was never solved and does not count.
func CountStars(m model.Member, f viewstate.Filter) int {
	n := 0
	for day, parts := range m.CompletionDayLevel {
		if !f.InDayRange(day) {
			continue
		}
		for _, p := range parts {
			if p.GetStarTS == 0 || !f.InDateRange(p.GetStarTS) {
				continue
			}
			n++
		}
	}
	return n
}

// Totals recomputes row totals for a new year selection without touching the
// per-year counts. labels must line up with each row's PerYear.
func Totals(rows []model.Row, labels []string, f viewstate.Filter) []model.Row {
	out := make([]model.Row, len(rows))
	for i, r := range rows {
		r.PerYear = slices.Clone(r.PerYear)
		r.Total = 0
		for j, n := range r.PerYear {
			if j < len(labels) && f.YearSelected(labels[j]) {
				r.Total += n
			}
		}
		out[i] = r
	}
	return out
}

// index keys each year's members by member id and returns the sorted union of
// ids. Records without an id of their own are skipped whatever key they sit
// under.
func index(years []model.YearRecord) ([]map[string]model.Member, []string) {
	byYear := make([]map[string]model.Member, len(years))
	seen := make(map[string]struct{})
	for i, yr := range years {
		byYear[i] = make(map[string]model.Member, len(yr.Members))
		for _, m := range yr.Members {
			id := string(m.ID)
			if id == "" {
				continue
			}
			byYear[i][id] = m
			seen[id] = struct{}{}
		}
	}
	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return byYear, ids
}
