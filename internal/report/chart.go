// Package report renders rankings and team data for people: PNG charts for the
// HTTP API and terminal tables for scoutctl.
package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/okian/scout/internal/domain/aggregate"
	"github.com/okian/scout/internal/domain/types"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

const (
	chartWidth  = 1024
	chartHeight = 512
	barWidth    = 40
	noDataTitle = "No scouting data yet"
)

var (
	barColor  = drawing.ColorFromHex("1f6feb")
	textColor = drawing.ColorFromHex("24292f")
)

// TopTeamsChart writes a PNG bar chart of the first n rankings (mean score per
// team). With no rankings it writes a placeholder image instead.
func TopTeamsChart(w io.Writer, rankings []types.TeamRanking, n int, title string) error {
	top := aggregate.Top(rankings, n)
	if len(top) == 0 {
		return render(w, noDataTitle, []chart.Value{{Label: " ", Value: 0}}, 1)
	}

	bars := make([]chart.Value, 0, len(top))
	maxScore := 0.0
	for _, r := range top {
		bars = append(bars, chart.Value{
			Label: strconv.Itoa(r.TeamNumber),
			Value: r.MeanScore,
			Style: chart.Style{FillColor: barColor, StrokeColor: barColor},
		})
		maxScore = max(maxScore, r.MeanScore)
	}
	return render(w, title, bars, maxScore)
}

// render draws bars on a y axis pinned to [0, top]. go-chart rejects a zero
// height range, so top is raised to 1 when every score is zero.
func render(w io.Writer, title string, bars []chart.Value, top float64) error {
	if top <= 0 {
		top = 1
	}
	graph := chart.BarChart{
		Title:      title,
		TitleStyle: chart.Style{FontColor: textColor},
		Width:      chartWidth,
		Height:     chartHeight,
		BarWidth:   barWidth,
		Background: chart.Style{Padding: chart.Box{Top: 48, Left: 16, Right: 16, Bottom: 16}},
		XAxis:      chart.Style{FontColor: textColor},
		YAxis: chart.YAxis{
			Name:           "Mean score",
			Style:          chart.Style{FontColor: textColor},
			Range:          &chart.ContinuousRange{Min: 0, Max: top},
			ValueFormatter: func(v any) string { return fmt.Sprintf("%.1f", v) },
		},
		Bars: bars,
	}
	if err := graph.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	return nil
}
