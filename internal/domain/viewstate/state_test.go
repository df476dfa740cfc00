package viewstate_test

import (
	"net/url"
	"testing"
	"time"

	"github.com/okian/starboard/internal/domain/viewstate"
	. "github.com/smartystreets/goconvey/convey"
)

func days(start, end string) viewstate.State {
	return viewstate.Apply(viewstate.State{},
		viewstate.SetStartDay{Value: start},
		viewstate.SetEndDay{Value: end},
	)
}

func TestDayValidation(t *testing.T) {
	Convey("Given day range inputs", t, func() {
		Convey("When the start day is past the last event day", func() {
			s := days("26", "")

			Convey("Then the range error is reported and the day filter is off", func() {
				So(s.Error, ShouldEqual, viewstate.MsgDayOutOfRange)
				So(s.Valid(), ShouldBeFalse)
				So(s.Filter().DayActive(), ShouldBeFalse)
			})
		})

		Convey("When the end day is zero", func() {
			s := days("", "0")

			Convey("Then the range error is reported", func() {
				So(s.Error, ShouldEqual, viewstate.MsgDayOutOfRange)
				So(s.Filter().DayActive(), ShouldBeFalse)
			})
		})

		Convey("When the start day is after the end day", func() {
			s := days("10", "5")

			Convey("Then the order error is reported", func() {
				So(s.Error, ShouldEqual, viewstate.MsgDayOrder)
				So(s.Filter().DayActive(), ShouldBeFalse)
			})
		})

		Convey("When the range is 5 to 10", func() {
			s := days("5", "10")

			Convey("Then the filter is active with no error", func() {
				So(s.Error, ShouldBeEmpty)
				f := s.Filter()
				So(f.DayActive(), ShouldBeTrue)
				So(f.StartDay, ShouldEqual, 5)
				So(f.EndDay, ShouldEqual, 10)
				So(f.InDayRange("5"), ShouldBeTrue)
				So(f.InDayRange("10"), ShouldBeTrue)
				So(f.InDayRange("4"), ShouldBeFalse)
				So(f.InDayRange("11"), ShouldBeFalse)
			})
		})

		Convey("When only one bound is set", func() {
			s := days("", "3")

			Convey("Then the other side is open", func() {
				So(s.Error, ShouldBeEmpty)
				f := s.Filter()
				So(f.InDayRange("1"), ShouldBeTrue)
				So(f.InDayRange("4"), ShouldBeFalse)
			})
		})

		Convey("When the input carries non-digit characters", func() {
			s := days(" 1a2", "-")

			Convey("Then only the digits are kept", func() {
				So(s.StartDay, ShouldEqual, "12")
				So(s.EndDay, ShouldEqual, "")
				So(s.Error, ShouldBeEmpty)
			})
		})
	})
}

func TestDateBounds(t *testing.T) {
	Convey("Given a date range", t, func() {
		s := viewstate.Apply(viewstate.State{},
			viewstate.SetStartDate{Value: "2023-12-01"},
			viewstate.SetEndDate{Value: "2023-12-02"},
		)
		f := s.Filter()
		start := time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC).Unix()
		end := time.Date(2023, 12, 2, 23, 59, 59, 0, time.UTC).Unix()

		Convey("Then the bounds cover whole UTC days", func() {
			So(f.DateActive(), ShouldBeTrue)
			So(*f.StartTS, ShouldEqual, start)
			So(*f.EndTS, ShouldEqual, end)
		})

		Convey("And stars outside the range are rejected", func() {
			So(f.InDateRange(start-1), ShouldBeFalse)
			So(f.InDateRange(start), ShouldBeTrue)
			So(f.InDateRange(end), ShouldBeTrue)
			So(f.InDateRange(end+1), ShouldBeFalse)
		})
	})

	Convey("Given a malformed date", t, func() {
		s := viewstate.Reduce(viewstate.State{}, viewstate.SetStartDate{Value: "12/01/2023"})

		Convey("Then the bound is open and no error is raised", func() {
			So(s.Error, ShouldBeEmpty)
			So(s.Filter().DateActive(), ShouldBeFalse)
		})
	})

	Convey("Given invalid days alongside a date range", t, func() {
		s := viewstate.Apply(viewstate.State{},
			viewstate.SetStartDate{Value: "2023-12-01"},
			viewstate.SetStartDay{Value: "30"},
		)

		Convey("Then the date bound still applies", func() {
			So(s.Error, ShouldNotBeEmpty)
			So(s.Filter().DateActive(), ShouldBeTrue)
			So(s.Filter().DayActive(), ShouldBeFalse)
		})
	})
}

func TestYearSelection(t *testing.T) {
	all := []string{"2022", "2023", "2024"}

	Convey("Given no explicit selection", t, func() {
		s := viewstate.State{}

		Convey("Then every year is selected", func() {
			So(s.YearSelected("2022"), ShouldBeTrue)
			So(s.Filter().Years, ShouldBeNil)
			So(s.Filter().YearSelected("1999"), ShouldBeTrue)
		})

		Convey("When a year is toggled off", func() {
			next := viewstate.Reduce(s, viewstate.ToggleYear{Year: "2023", All: all})

			Convey("Then the remaining years stay selected", func() {
				So(next.SelectedYears, ShouldResemble, []string{"2022", "2024"})
				So(next.Filter().YearSelected("2023"), ShouldBeFalse)
				So(next.Filter().YearSelected("2024"), ShouldBeTrue)
			})

			Convey("And toggling it again restores it", func() {
				back := viewstate.Reduce(next, viewstate.ToggleYear{Year: "2023", All: all})
				So(back.SelectedYears, ShouldResemble, all)
			})
		})
	})

	Convey("Given an empty selection", t, func() {
		s := viewstate.Reduce(viewstate.State{}, viewstate.SelectYears{Years: []string{}})

		Convey("Then no year is selected", func() {
			So(s.YearSelected("2022"), ShouldBeFalse)
			So(s.Filter().YearSelected("2022"), ShouldBeFalse)
		})
	})
}

func TestReduceIsPure(t *testing.T) {
	Convey("Given a state with a selection", t, func() {
		s := viewstate.Reduce(viewstate.State{}, viewstate.SelectYears{Years: []string{"2024", "2023"}})
		before := append([]string{}, s.SelectedYears...)

		Convey("When further events are applied", func() {
			_ = viewstate.Reduce(s, viewstate.ToggleYear{Year: "2023"})
			_ = viewstate.Reduce(s, viewstate.SetStartDay{Value: "30"})

			Convey("Then the input is untouched", func() {
				So(s.SelectedYears, ShouldResemble, before)
				So(s.Error, ShouldBeEmpty)
				So(s.StartDay, ShouldBeEmpty)
			})
		})

		Convey("When the state is reset", func() {
			dirty := viewstate.Apply(s,
				viewstate.SetDetailed{On: true},
				viewstate.SetStartDay{Value: "40"},
				viewstate.SetEndDate{Value: "2024-12-25"},
			)
			clean := viewstate.Reduce(dirty, viewstate.Reset{})

			Convey("Then filters are cleared and the detail toggle kept", func() {
				So(clean.Active(), ShouldBeFalse)
				So(clean.Error, ShouldBeEmpty)
				So(clean.SelectedYears, ShouldBeNil)
				So(clean.Detailed, ShouldBeTrue)
			})
		})
	})
}

func TestQueryRoundTrip(t *testing.T) {
	Convey("Given request parameters", t, func() {
		q := url.Values{}
		q.Set(viewstate.ParamStartDate, "2024-12-01")
		q.Set(viewstate.ParamStartDay, "3")
		q.Set(viewstate.ParamEndDay, "9")
		q.Add(viewstate.ParamYears, "2024,2022")
		q.Add(viewstate.ParamYears, "2023")
		q.Set(viewstate.ParamDetailed, "on")

		s := viewstate.FromQuery(q)

		Convey("Then the state reflects them", func() {
			So(s.StartDate, ShouldEqual, "2024-12-01")
			So(s.StartDay, ShouldEqual, "3")
			So(s.EndDay, ShouldEqual, "9")
			So(s.SelectedYears, ShouldResemble, []string{"2022", "2023", "2024"})
			So(s.Detailed, ShouldBeTrue)
			So(s.Error, ShouldBeEmpty)
		})

		Convey("And encoding it back reproduces the same state", func() {
			So(viewstate.FromQuery(s.Query()), ShouldResemble, s)
		})
	})

	Convey("Given no parameters", t, func() {
		s := viewstate.FromQuery(url.Values{})

		Convey("Then nothing is filtered", func() {
			So(s.Active(), ShouldBeFalse)
			So(s.SelectedYears, ShouldBeNil)
			So(len(s.Query()), ShouldEqual, 0)
		})
	})
}
