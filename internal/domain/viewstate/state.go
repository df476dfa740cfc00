package viewstate

import (
	"net/url"
	"slices"
	"strconv"
	"strings"
)

// Validation messages shown next to the filter inputs.
const (
	MsgDayOutOfRange = "Day numbers must be between 1 and 25"
	MsgDayOrder      = "Start Day must be less than or equal to End Day"
)

// Query parameter names understood by FromQuery and produced by Query.
const (
	ParamStartDate = "start_date"
	ParamEndDate   = "end_date"
	ParamStartDay  = "start_day"
	ParamEndDay    = "end_day"
	ParamYears     = "years"
	ParamDetailed  = "detailed"
)

// State is the complete set of user inputs for one leaderboard view. Values
// are never mutated in place; Reduce returns a new State.
type State struct {
	StartDate     string   `json:"start_date,omitempty"`
	EndDate       string   `json:"end_date,omitempty"`
	StartDay      string   `json:"start_day,omitempty"`
	EndDay        string   `json:"end_day,omitempty"`
	SelectedYears []string `json:"selected_years,omitempty"` // nil selects every year
	Detailed      bool     `json:"detailed"`

	// Error is the current validation message, "" when the inputs are valid.
	Error string `json:"error,omitempty"`
}

// Event is one user input change.
type Event interface {
	apply(State) State
}

// SetStartDate sets the lower date bound (YYYY-MM-DD).
type SetStartDate struct{ Value string }

// SetEndDate sets the upper date bound (YYYY-MM-DD).
type SetEndDate struct{ Value string }

// SetStartDay sets the first event day to count.
type SetStartDay struct{ Value string }

// SetEndDay sets the last event day to count.
type SetEndDay struct{ Value string }

// SelectYears replaces the year selection. Nil selects every year.
type SelectYears struct{ Years []string }

// ToggleYear flips one year in or out of the selection. All lists the loaded
// years and seeds the selection when nothing was selected yet.
type ToggleYear struct {
	Year string
	All  []string
}

// SetDetailed shows or hides the per-year breakdown.
type SetDetailed struct{ On bool }

// Reset clears every filter input. The detail toggle is kept.
type Reset struct{}

func (e SetStartDate) apply(s State) State {
	s.StartDate = strings.TrimSpace(e.Value)
	return s
}

func (e SetEndDate) apply(s State) State {
	s.EndDate = strings.TrimSpace(e.Value)
	return s
}

func (e SetStartDay) apply(s State) State {
	s.StartDay = digits(e.Value)
	return s
}

func (e SetEndDay) apply(s State) State {
	s.EndDay = digits(e.Value)
	return s
}

func (e SetDetailed) apply(s State) State {
	s.Detailed = e.On
	return s
}

func (e SelectYears) apply(s State) State {
	if e.Years == nil {
		s.SelectedYears = nil
		return s
	}
	s.SelectedYears = normalizeYears(e.Years)
	return s
}

func (e ToggleYear) apply(s State) State {
	sel := s.SelectedYears
	if sel == nil {
		sel = e.All
	}
	next := make([]string, 0, len(sel)+1)
	found := false
	for _, y := range sel {
		if y == e.Year {
			found = true
			continue
		}
		next = append(next, y)
	}
	if !found {
		next = append(next, e.Year)
	}
	s.SelectedYears = normalizeYears(next)
	return s
}

func (Reset) apply(s State) State {
	return State{Detailed: s.Detailed}
}

// Reduce applies ev to s and revalidates. s is left untouched.
func Reduce(s State, ev Event) State {
	s.SelectedYears = slices.Clone(s.SelectedYears)
	next := ev.apply(s)
	next.Error = next.validate()
	return next
}

// Apply folds events over s from left to right.
func Apply(s State, evs ...Event) State {
	for _, ev := range evs {
		s = Reduce(s, ev)
	}
	return s
}

// Valid reports whether the inputs passed validation.
func (s State) Valid() bool { return s.Error == "" }

// Filter derives the effective filter. When the day inputs are invalid the
// day filter is off; the date bounds still apply.
func (s State) Filter() Filter {
	f := Filter{}
	if s.StartDate != "" {
		f.StartTS = startOfDay(s.StartDate)
	}
	if s.EndDate != "" {
		f.EndTS = endOfDay(s.EndDate)
	}
	if s.validate() == "" {
		f.StartDay, _ = strconv.Atoi(s.StartDay)
		f.EndDay, _ = strconv.Atoi(s.EndDay)
	}
	if s.SelectedYears != nil {
		f.Years = make(map[string]bool, len(s.SelectedYears))
		for _, y := range s.SelectedYears {
			f.Years[y] = true
		}
	}
	return f
}

// YearSelected reports whether year is part of the current selection.
func (s State) YearSelected(year string) bool {
	return s.SelectedYears == nil || slices.Contains(s.SelectedYears, year)
}

// Active reports whether any filter input is set.
func (s State) Active() bool {
	return s.StartDate != "" || s.EndDate != "" || s.StartDay != "" || s.EndDay != ""
}

func (s State) validate() string {
	start, startOK := parseDay(s.StartDay)
	end, endOK := parseDay(s.EndDay)
	if !startOK || !endOK {
		return MsgDayOutOfRange
	}
	if start > 0 && end > 0 && end < start {
		return MsgDayOrder
	}
	return ""
}

// parseDay accepts "" (unset) or a number within the event's days.
func parseDay(v string) (int, bool) {
	if v == "" {
		return 0, true
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < FirstDay || n > LastDay {
		return 0, false
	}
	return n, true
}

func digits(v string) string {
	var b strings.Builder
	for _, r := range v {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func normalizeYears(years []string) []string {
	out := make([]string, 0, len(years))
	for _, y := range years {
		y = strings.TrimSpace(y)
		if y != "" {
			out = append(out, y)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// FromQuery builds a State from request query parameters.
func FromQuery(q url.Values) State {
	evs := []Event{
		SetStartDate{q.Get(ParamStartDate)},
		SetEndDate{q.Get(ParamEndDate)},
		SetStartDay{q.Get(ParamStartDay)},
		SetEndDay{q.Get(ParamEndDay)},
		SetDetailed{parseBool(q.Get(ParamDetailed))},
	}
	if raw, ok := q[ParamYears]; ok {
		var years []string
		for _, v := range raw {
			years = append(years, strings.Split(v, ",")...)
		}
		evs = append(evs, SelectYears{Years: append([]string{}, years...)})
	}
	return Apply(State{}, evs...)
}

// Query encodes s as query parameters; FromQuery(s.Query()) reproduces s.
func (s State) Query() url.Values {
	q := url.Values{}
	set := func(k, v string) {
		if v != "" {
			q.Set(k, v)
		}
	}
	set(ParamStartDate, s.StartDate)
	set(ParamEndDate, s.EndDate)
	set(ParamStartDay, s.StartDay)
	set(ParamEndDay, s.EndDay)
	if s.SelectedYears != nil {
		q.Set(ParamYears, strings.Join(s.SelectedYears, ","))
	}
	if s.Detailed {
		q.Set(ParamDetailed, "1")
	}
	return q
}

func parseBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "on", "yes":
		return true
	}
	return false
}
