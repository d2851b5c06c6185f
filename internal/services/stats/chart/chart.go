// Package chart renders statistics charts as inline SVG components.
package chart

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"
	"github.com/louisbranch/lolworlds/internal/services/stats/report"
	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

const (
	// ChampionAvgKillsTitle is the heading of the champion average kills chart.
	ChampionAvgKillsTitle = "Top 10 Champions by Avg Kills"
	// ChampionAvgKillsYLabel labels the value axis.
	ChampionAvgKillsYLabel = "Avg Kills"

	width         = 800
	height        = 500
	labelRotation = 45
)

// barColor matches the skyblue bars of the desktop chart.
var barColor = drawing.ColorFromHex("87ceeb")

// Bar is one labelled value.
type Bar struct {
	Label string
	Value float64
}

// BarsFromAverages converts champion averages into bars, keeping at most limit.
func BarsFromAverages(averages []report.ChampionAverage, limit int) []Bar {
	if limit <= 0 || limit > len(averages) {
		limit = len(averages)
	}
	bars := make([]Bar, 0, limit)
	for _, avg := range averages[:limit] {
		bars = append(bars, Bar{Label: avg.Champion, Value: avg.AvgKills})
	}
	return bars
}

// ChampionAvgKills renders the champion average kills bar chart.
func ChampionAvgKills(averages []report.ChampionAverage) templ.Component {
	return BarChart(ChampionAvgKillsTitle, ChampionAvgKillsYLabel, BarsFromAverages(averages, report.DefaultChartLimit))
}

// BarChart renders a vertical bar chart with rotated category labels.
func BarChart(title, yLabel string, bars []Bar) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		if len(bars) == 0 {
			return emptyChart(w, title)
		}
		if err := newBarChart(title, yLabel, bars).Render(gochart.SVG, w); err != nil {
			return fmt.Errorf("render bar chart: %w", err)
		}
		return nil
	})
}

// newBarChart lays out bars on a value axis that starts at zero. The SVG
// renderer writes text verbatim, so every label is escaped here.
func newBarChart(title, yLabel string, bars []Bar) gochart.BarChart {
	values := make([]gochart.Value, 0, len(bars))
	top := 0.0
	for _, bar := range bars {
		value := max(bar.Value, 0)
		top = max(top, value)
		values = append(values, gochart.Value{
			Label: templ.EscapeString(bar.Label),
			Value: value,
			Style: gochart.Style{FillColor: barColor, StrokeColor: barColor, StrokeWidth: 1},
		})
	}
	if top == 0 {
		top = 1
	}
	return gochart.BarChart{
		Title:  templ.EscapeString(title),
		Width:  width,
		Height: height,
		Background: gochart.Style{
			Padding: gochart.Box{Top: 48, Left: 24, Right: 24, Bottom: 110},
		},
		BarWidth: 40,
		XAxis:    gochart.Style{TextRotationDegrees: labelRotation},
		YAxis: gochart.YAxis{
			Name:  templ.EscapeString(yLabel),
			Range: &gochart.ContinuousRange{Min: 0, Max: top},
		},
		Bars: values,
	}
}

func emptyChart(w io.Writer, title string) error {
	_, err := fmt.Fprintf(w,
		`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %d %d"><text x="%d" y="40" text-anchor="middle">%s</text><text x="%d" y="%d" text-anchor="middle">No data</text></svg>`,
		width, height, width/2, templ.EscapeString(title), width/2, height/2)
	return err
}
