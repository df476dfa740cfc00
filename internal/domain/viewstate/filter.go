// Package viewstate holds the leaderboard's filter inputs as one immutable
// value and derives the effective filter from it.
package viewstate

import (
	"strconv"
	"time"
)

// Day bounds of an event.
const (
	FirstDay = 1
	LastDay  = 25
)

const dateLayout = "2006-01-02"

// Filter is the effective, validated filter the aggregator applies.
type Filter struct {
	StartTS  *int64          // inclusive; nil = unbounded
	EndTS    *int64          // inclusive; nil = unbounded
	StartDay int             // 0 = unset
	EndDay   int             // 0 = unset
	Years    map[string]bool // nil selects every year
}

// DateActive reports whether either date bound is set.
func (f Filter) DateActive() bool { return f.StartTS != nil || f.EndTS != nil }

// DayActive reports whether either day bound is set.
func (f Filter) DayActive() bool { return f.StartDay > 0 || f.EndDay > 0 }

// InDateRange reports whether a star earned at ts passes the date filter. The
// star's own timestamp is compared against each bound.
func (f Filter) InDateRange(ts int64) bool {
	if f.StartTS != nil && ts < *f.StartTS {
		return false
	}
	if f.EndTS != nil && ts > *f.EndTS {
		return false
	}
	return true
}

// InDayRange reports whether the given day key passes the day filter. Day keys
// that are not numbers only pass when the day filter is off.
func (f Filter) InDayRange(day string) bool {
	if !f.DayActive() {
		return true
	}
	n, err := strconv.Atoi(day)
	if err != nil {
		return false
	}
	if f.StartDay > 0 && n < f.StartDay {
		return false
	}
	if f.EndDay > 0 && n > f.EndDay {
		return false
	}
	return true
}

// YearSelected reports whether year counts toward totals. A nil selection
// selects every year.
func (f Filter) YearSelected(year string) bool {
	if f.Years == nil {
		return true
	}
	return f.Years[year]
}

// startOfDay parses YYYY-MM-DD as 00:00:00 UTC. Malformed input is unbounded.
func startOfDay(s string) *int64 {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return nil
	}
	ts := t.UTC().Unix()
	return &ts
}

// endOfDay parses YYYY-MM-DD as 23:59:59 UTC. Malformed input is unbounded.
func endOfDay(s string) *int64 {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return nil
	}
	ts := t.UTC().Add(24*time.Hour - time.Second).Unix()
	return &ts
}
