package ranking_test

import (
	"testing"

	"github.com/okian/starboard/internal/domain/model"
	"github.com/okian/starboard/internal/domain/ranking"
	. "github.com/smartystreets/goconvey/convey"
)

func names(rows []model.Row) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Name
	}
	return out
}

func TestSort(t *testing.T) {
	Convey("Given rows with tied totals", t, func() {
		rows := []model.Row{
			{ID: "1", Name: "Bob", Total: 5},
			{ID: "2", Name: "Alice", Total: 5},
			{ID: "3", Name: "Zed", Total: 3},
		}

		sorted := ranking.Sort(rows)

		Convey("Then ties are broken by name", func() {
			So(names(sorted), ShouldResemble, []string{"Alice", "Bob", "Zed"})
		})

		Convey("And the input order is untouched", func() {
			So(names(rows), ShouldResemble, []string{"Bob", "Alice", "Zed"})
		})
	})
}

func TestSortCollatesNames(t *testing.T) {
	Convey("Given tied rows whose names differ in case", t, func() {
		rows := []model.Row{
			{ID: "1", Name: "bob", Total: 5},
			{ID: "2", Name: "Zed", Total: 5},
			{ID: "3", Name: "alice", Total: 5},
		}

		sorted := ranking.Sort(rows)

		Convey("Then names are ordered alphabetically regardless of case", func() {
			So(names(sorted), ShouldResemble, []string{"alice", "bob", "Zed"})
		})
	})

	Convey("Given names with accents", t, func() {
		Convey("Then an accented letter sorts with its base letter", func() {
			So(ranking.CompareNames("émile", "fred"), ShouldBeLessThan, 0)
			So(ranking.CompareNames("Émile", "dave"), ShouldBeGreaterThan, 0)
		})

		Convey("And identical names compare equal", func() {
			So(ranking.CompareNames("alice", "alice"), ShouldEqual, 0)
		})
	})
}

func TestBoard(t *testing.T) {
	Convey("Given rows including some without stars", t, func() {
		rows := []model.Row{
			{ID: "1", Name: "Dana", Total: 0},
			{ID: "2", Name: "Eve", Total: 9},
			{ID: "3", Name: "Finn", Total: 4},
			{ID: "4", Name: "Gus", Total: 7},
			{ID: "5", Name: "Hal", Total: 1},
		}

		board := ranking.Board(rows)

		Convey("Then zero-star rows are dropped", func() {
			So(len(board), ShouldEqual, 4)
			for _, r := range board {
				So(r.Total, ShouldBeGreaterThan, 0)
			}
		})

		Convey("And positions are sequential with the top three emphasised", func() {
			So(board[0].Name, ShouldEqual, "Eve")
			So(board[0].Position, ShouldEqual, 1)
			So(board[2].Emphasis, ShouldBeTrue)
			So(board[3].Position, ShouldEqual, 4)
			So(board[3].Emphasis, ShouldBeFalse)
		})
	})

	Convey("Given no rows", t, func() {
		Convey("Then the board is empty", func() {
			So(ranking.Board(nil), ShouldBeEmpty)
		})
	})
}
