package export

import (
	"fmt"
	"io"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/okian/starboard/internal/domain/model"
)

const (
	chartTitle   = "Stars Earned"
	emptyTitle   = "No leaderboard data found."
	chartHeight  = 480
	minWidth     = 640
	barWidth     = 36
	barSpacing   = 12
	maxLabelRune = 14
)

// MaxBars caps the members drawn in one chart.
const MaxBars = 60

var (
	background = drawing.ColorFromHex("0f0f23")
	textColor  = drawing.ColorFromHex("cccccc")
	gold       = drawing.ColorFromHex("ffd700")
	silver     = drawing.ColorFromHex("9999cc")
)

// PNG draws one bar per visible member, tallest first, up to MaxBars. With
// the per-year breakdown on, each bar is stacked by the selected years.
func PNG(w io.Writer, b Board) error {
	rows := b.Rows()
	title := caption(b, len(rows))
	if len(rows) > MaxBars {
		rows = rows[:MaxBars]
	}
	var err error
	switch {
	case len(rows) == 0:
		err = emptyChart().Render(chart.PNG, w)
	case b.Detailed && len(b.Years) > 0:
		err = stackedChart(rows, b, title).Render(chart.PNG, w)
	default:
		err = totalsChart(rows, title).Render(chart.PNG, w)
	}
	if err != nil {
		return fmt.Errorf("%w: png: %w", ErrRender, err)
	}
	return nil
}

// Caption is the chart title for b. When more members are visible than fit,
// it says how many are shown.
func Caption(b Board) string {
	return caption(b, len(b.Rows()))
}

func caption(b Board, visible int) string {
	title := chartTitle
	if b.Detailed && len(b.Years) > 0 {
		title += " per Year"
	}
	if visible > MaxBars {
		title += fmt.Sprintf(" (top %d of %d members)", MaxBars, visible)
	}
	return title
}

func totalsChart(rows []model.Row, title string) chart.BarChart {
	bars := make([]chart.Value, len(rows))
	top := 0
	for i, r := range rows {
		fill := silver
		if i < 3 {
			fill = gold
		}
		bars[i] = chart.Value{
			Label: label(r.Name),
			Value: float64(r.Total),
			Style: chart.Style{FillColor: fill, StrokeColor: fill},
		}
		top = max(top, r.Total)
	}
	return chart.BarChart{
		Title:      title,
		TitleStyle: chart.Style{FontColor: textColor},
		Width:      width(len(rows)),
		Height:     chartHeight,
		BarWidth:   barWidth,
		BarSpacing: barSpacing,
		Background: chart.Style{FillColor: background},
		Canvas:     chart.Style{FillColor: background},
		XAxis:      chart.Style{FontColor: textColor},
		YAxis: chart.YAxis{
			Style:          chart.Style{FontColor: textColor},
			ValueFormatter: chart.IntValueFormatter,
			Range:          &chart.ContinuousRange{Min: 0, Max: float64(top)},
		},
		Bars: bars,
	}
}

func stackedChart(rows []model.Row, b Board, title string) chart.StackedBarChart {
	bars := make([]chart.StackedBar, len(rows))
	for i, r := range rows {
		var values []chart.Value
		for j, n := range r.PerYear {
			if j >= len(b.Years) || n == 0 || !b.selected(b.Years[j]) {
				continue
			}
			c := chart.GetDefaultColor(j)
			values = append(values, chart.Value{
				Label: b.Years[j],
				Value: float64(n),
				Style: chart.Style{FillColor: c, StrokeColor: c},
			})
		}
		if len(values) == 0 {
			values = []chart.Value{{Value: 0}}
		}
		bars[i] = chart.StackedBar{Name: label(r.Name), Width: barWidth, Values: values}
	}
	return chart.StackedBarChart{
		Title:      title,
		TitleStyle: chart.Style{FontColor: textColor},
		Width:      width(len(rows)),
		Height:     chartHeight,
		BarSpacing: barSpacing,
		Background: chart.Style{FillColor: background},
		Canvas:     chart.Style{FillColor: background},
		XAxis:      chart.Style{FontColor: textColor},
		YAxis:      chart.Style{FontColor: textColor},
		Bars:       bars,
	}
}

func emptyChart() chart.BarChart {
	return chart.BarChart{
		Title:      emptyTitle,
		TitleStyle: chart.Style{FontColor: textColor},
		Width:      minWidth,
		Height:     chartHeight / 2,
		BarWidth:   barWidth,
		Background: chart.Style{FillColor: background},
		Canvas:     chart.Style{FillColor: background},
		YAxis: chart.YAxis{
			ValueFormatter: chart.IntValueFormatter,
			Range:          &chart.ContinuousRange{Min: 0, Max: 1},
		},
		Bars: []chart.Value{{Label: "-", Value: 0}},
	}
}

func width(bars int) int {
	return max(minWidth, bars*(barWidth+barSpacing)+120)
}

// label shortens long names so the axis stays readable.
func label(name string) string {
	r := []rune(name)
	if len(r) <= maxLabelRune {
		return name
	}
	return string(r[:maxLabelRune-1]) + "…"
}
