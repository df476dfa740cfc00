package site

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-chi/chi/v5"

	service "github.com/okian/starboard/internal/app"
	"github.com/okian/starboard/internal/domain/model"
	"github.com/okian/starboard/internal/domain/ranking"
	"github.com/okian/starboard/internal/domain/viewstate"
	. "github.com/smartystreets/goconvey/convey"
)

type fakeDeps struct {
	view service.View
	err  error
}

func (f *fakeDeps) Leaderboard(_ context.Context, state viewstate.State) (service.View, error) {
	if f.err != nil {
		return service.View{}, f.err
	}
	v := f.view
	v.State = state
	return v, nil
}

func groupedView() service.View {
	beginners := ranking.Board([]model.Row{
		{ID: "1", Name: "alice", FullName: "Alice Liddell", Level: "Beginner", PerYear: []int{3, 4}, Total: 7},
		{ID: "2", Name: "bob", Level: "Beginner", PerYear: []int{1, 1}, Total: 2},
		{ID: "3", Name: "carl", Level: "Beginner", PerYear: []int{1, 0}, Total: 1},
		{ID: "4", Name: "dora", Level: "Beginner", PerYear: []int{0, 1}, Total: 1},
		{ID: "5", Name: "idle", Level: "Beginner", PerYear: []int{0, 0}, Total: 0},
	})
	rest := ranking.Board([]model.Row{
		{ID: "9", Name: "zed", PerYear: []int{5, 0}, Total: 5},
	})
	return service.View{
		Years: []string{"2022", "2023"},
		Sections: []service.Section{
			{Title: "Beginner", Level: "Beginner", Rows: beginners},
			{Title: service.TitleUnregistered, Rows: rest},
		},
	}
}

func serve(deps *fakeDeps, target string) (*httptest.ResponseRecorder, *goquery.Document) {
	r := chi.NewRouter()
	New(deps).Register(r)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(w.Body.String()))
	if err != nil {
		panic(err)
	}
	return w, doc
}

func TestLeaderboardPage(t *testing.T) {
	Convey("Given grouped leaderboard data", t, func() {
		deps := &fakeDeps{view: groupedView()}

		Convey("When the page is requested", func() {
			w, doc := serve(deps, "/")

			Convey("Then it renders one table per group", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Header().Get("Content-Type"), ShouldEqual, "text/html; charset=utf-8")
				So(doc.Find("h1").Text(), ShouldEqual, Title)
				So(doc.Find("table.leaderboard-table").Length(), ShouldEqual, 2)
				So(doc.Find("section.group h2").First().Text(), ShouldEqual, "Beginner")
				So(doc.Find("section.group h2").Last().Text(), ShouldEqual, service.TitleUnregistered)
			})

			Convey("And members without stars are hidden", func() {
				So(doc.Find(`tr[data-id="5"]`).Length(), ShouldEqual, 0)
				So(doc.Find("section.group").First().Find("tbody tr").Length(), ShouldEqual, 4)
			})

			Convey("And only the top three of a group are emphasized", func() {
				So(doc.Find("section.group").First().Find("tbody tr.gold").Length(), ShouldEqual, 3)
				So(doc.Find(`tr[data-id="4"]`).HasClass("gold"), ShouldBeFalse)
			})

			Convey("And rows read position, name and total", func() {
				row := doc.Find(`tr[data-id="1"]`)
				So(row.Find("td").First().Text(), ShouldEqual, "1")
				So(row.Find("td.name").Text(), ShouldContainSubstring, "alice")
				So(row.Find(".full-name").Text(), ShouldEqual, "(Alice Liddell)")
				So(row.Find("td.total").Text(), ShouldEqual, "7")
			})

			Convey("And the header has no per-year columns", func() {
				headers := doc.Find("section.group").First().Find("thead th").Map(func(_ int, s *goquery.Selection) string {
					return s.Text()
				})
				So(headers, ShouldResemble, []string{"#", "Name", "Total Stars"})
			})

			Convey("And every year is offered as checked", func() {
				So(doc.Find(`input[name="years"][type="checkbox"][checked]`).Length(), ShouldEqual, 2)
			})
		})

		Convey("When the per-year breakdown is requested", func() {
			_, doc := serve(deps, "/?detailed=1&years=2023")

			Convey("Then a column per year is added", func() {
				headers := doc.Find("section.group").First().Find("thead th").Map(func(_ int, s *goquery.Selection) string {
					return s.Text()
				})
				So(headers, ShouldResemble, []string{"#", "Name", "Stars 2022", "Stars 2023", "Total Stars"})
				So(doc.Find(`tr[data-id="1"] td.year`).First().Text(), ShouldEqual, "3")
			})

			Convey("And unselected years are marked", func() {
				So(doc.Find("th.unselected").First().Text(), ShouldEqual, "Stars 2022")
				So(doc.Find(`input[value="2022"]`).AttrOr("checked", "none"), ShouldEqual, "none")
			})

			Convey("And each year header flips that year in the totals", func() {
				toggles := doc.Find("section.group").First().Find("th.year a.year-toggle").Map(func(_ int, s *goquery.Selection) string {
					return s.AttrOr("href", "")
				})
				So(toggles, ShouldResemble, []string{
					"/?detailed=1&years=2022%2C2023",
					"/?detailed=1&years=",
				})
			})

			Convey("And the image export is labelled as a chart", func() {
				So(doc.Find(".export-btn").First().Text(), ShouldEqual, "Export Chart as Image")
			})

			Convey("And export links carry the inputs", func() {
				href, ok := doc.Find(".export-btn").First().Attr("data-href")
				So(ok, ShouldBeTrue)
				So(href, ShouldStartWith, "/export/leaderboard.png?")
				So(href, ShouldContainSubstring, "detailed=1")
			})

			Convey("And reset keeps the breakdown", func() {
				So(doc.Find("a.reset").AttrOr("href", ""), ShouldEqual, "/?detailed=1")
			})
		})

		Convey("When the day inputs are invalid", func() {
			_, doc := serve(deps, "/?start_day=26")

			Convey("Then the message is shown and the tables stay", func() {
				So(doc.Find(".filter-error").Text(), ShouldEqual, viewstate.MsgDayOutOfRange)
				So(doc.Find("table.leaderboard-table").Length(), ShouldEqual, 2)
				So(doc.Find(`input[name="start_day"]`).AttrOr("value", ""), ShouldEqual, "26")
			})
		})
	})

	Convey("Given a single ungrouped table", t, func() {
		v := groupedView()
		v.Sections = v.Sections[1:]
		v.Sections[0].Title = service.TitleLeaderboard
		_, doc := serve(&fakeDeps{view: v}, "/")

		Convey("Then no group heading is shown", func() {
			So(doc.Find("section.group h2").Length(), ShouldEqual, 0)
			So(doc.Find("table.leaderboard-table").Length(), ShouldEqual, 1)
		})
	})

	Convey("Given a snapshot that failed to load", t, func() {
		deps := &fakeDeps{err: errors.New(`load snapshot "2023.json": status 404`)}
		w, doc := serve(deps, "/")

		Convey("Then only the error is shown", func() {
			So(w.Code, ShouldEqual, http.StatusBadGateway)
			So(doc.Find(".load-error").Text(), ShouldStartWith, "Error: ")
			So(doc.Find(".load-error").Text(), ShouldContainSubstring, "status 404")
			So(doc.Find("table").Length(), ShouldEqual, 0)
			So(doc.Find("form").Length(), ShouldEqual, 0)
		})
	})

	Convey("Given no snapshots at all", t, func() {
		w, doc := serve(&fakeDeps{view: service.View{Empty: true}}, "/")

		Convey("Then the no data message is shown", func() {
			So(w.Code, ShouldEqual, http.StatusOK)
			So(doc.Find(".no-data").Text(), ShouldEqual, MsgNoData)
			So(doc.Find("table").Length(), ShouldEqual, 0)
		})
	})
}

func TestStaticAssets(t *testing.T) {
	Convey("Given a registered page", t, func() {
		r := chi.NewRouter()
		New(&fakeDeps{}).Register(r)

		Convey("Then the export script is served", func() {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/static/export.js", nil))
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, "Failed to export image")
		})

		Convey("And the stylesheet is served", func() {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/static/style.css", nil))
			So(w.Code, ShouldEqual, http.StatusOK)
		})
	})

	Convey("Given a nil router", t, func() {
		Convey("Then registering panics", func() {
			So(func() { New(&fakeDeps{}).Register(nil) }, ShouldPanic)
		})
	})
}
