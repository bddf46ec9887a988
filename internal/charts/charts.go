// Package charts renders dashboard views as SVG images.
package charts

import (
	"bytes"
	"fmt"
	"html"
	"io"
	"time"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	apperrors "olist-dashboard/internal/errors"
	"olist-dashboard/internal/format"
	"olist-dashboard/internal/models"
	"olist-dashboard/internal/services"
)

const (
	Width  = 1024
	Height = 400

	NoDataMessage = "No data for the selected filters"
)

const (
	RevenueTrendChart  = "revenue-trend"
	SegmentsChart      = "segments"
	TopCategoriesChart = "top-categories"
	TopRegionsChart    = "top-regions"
)

// Names lists every chart Render accepts, in page order.
var Names = []string{RevenueTrendChart, SegmentsChart, TopCategoriesChart, TopRegionsChart}

var (
	primary   = drawing.ColorFromHex("0083B8")
	secondary = drawing.ColorFromHex("E2A33B")

	palette = []drawing.Color{
		primary,
		secondary,
		drawing.ColorFromHex("2CA02C"),
		drawing.ColorFromHex("D62728"),
		drawing.ColorFromHex("9467BD"),
		drawing.ColorFromHex("8C564B"),
		drawing.ColorFromHex("E377C2"),
		drawing.ColorFromHex("7F7F7F"),
	}

	background = chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}}
)

// Render writes the named chart for v as SVG.
func Render(w io.Writer, name string, v *services.View) error {
	switch name {
	case RevenueTrendChart:
		return RevenueTrend(w, v.RevenueTrend)
	case SegmentsChart:
		return Segments(w, v.Segments)
	case TopCategoriesChart:
		return TopCategories(w, v.TopCategories)
	case TopRegionsChart:
		return TopRegions(w, v.TopRegions)
	default:
		return apperrors.NotFound(fmt.Sprintf("unknown chart %q", name))
	}
}

// RevenueTrend draws monthly revenue as a filled area.
func RevenueTrend(w io.Writer, points []models.MonthlyRevenue) error {
	if len(points) == 0 {
		return Placeholder(w, NoDataMessage)
	}

	xs := make([]time.Time, 0, len(points)+1)
	ys := make([]float64, 0, len(points)+1)
	var peak float64
	for _, p := range points {
		xs = append(xs, p.Month)
		ys = append(ys, p.Revenue)
		peak = max(peak, p.Revenue)
	}
	// A single month has no x extent; widen it by a day.
	if len(xs) == 1 {
		xs = append(xs, xs[0].Add(24*time.Hour))
		ys = append(ys, ys[0])
	}

	c := chart.Chart{
		Title:      "Monthly revenue",
		Width:      Width,
		Height:     Height,
		Background: background,
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeValueFormatterWithFormat("Jan 2006"),
		},
		YAxis: chart.YAxis{
			Name:           "Revenue (R$)",
			Range:          valueRange(peak),
			ValueFormatter: moneyTick,
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    "Revenue",
				XValues: xs,
				YValues: ys,
				Style: chart.Style{
					StrokeColor: primary,
					StrokeWidth: 2,
					FillColor:   primary.WithAlpha(64),
				},
			},
		},
	}
	return render(w, c)
}

// Segments draws the customer share of each segment as a pie.
func Segments(w io.Writer, counts []models.SegmentCount) error {
	values := make([]chart.Value, 0, len(counts))
	total := 0
	for i, c := range counts {
		total += c.Count
		values = append(values, chart.Value{
			Label: fmt.Sprintf("%s (%s)", c.Segment, format.Percent(c.Share)),
			Value: float64(c.Count),
			Style: chart.Style{FillColor: palette[i%len(palette)]},
		})
	}
	if total == 0 {
		return Placeholder(w, NoDataMessage)
	}

	c := chart.PieChart{
		Title:      "Customer segments",
		Width:      Height * 2,
		Height:     Height * 2,
		Background: background,
		Values:     values,
	}
	return render(w, c)
}

// TopCategories draws the category ranking as bars.
func TopCategories(w io.Writer, ranked []models.CategoryRevenue) error {
	bars := make([]chart.Value, 0, len(ranked))
	for _, r := range ranked {
		bars = append(bars, chart.Value{Label: r.Category, Value: r.Revenue})
	}
	return barChart(w, "Top categories by revenue", bars, primary)
}

// TopRegions draws the region ranking as bars.
func TopRegions(w io.Writer, ranked []models.RegionRevenue) error {
	bars := make([]chart.Value, 0, len(ranked))
	for _, r := range ranked {
		bars = append(bars, chart.Value{Label: r.Region, Value: r.Revenue})
	}
	return barChart(w, "Top regions by revenue", bars, secondary)
}

func barChart(w io.Writer, title string, bars []chart.Value, color drawing.Color) error {
	if len(bars) == 0 {
		return Placeholder(w, NoDataMessage)
	}

	var peak float64
	for i := range bars {
		peak = max(peak, bars[i].Value)
		bars[i].Style = chart.Style{FillColor: color, StrokeColor: color}
	}

	c := chart.BarChart{
		Title:      title,
		Width:      Width,
		Height:     Height,
		Background: background,
		BarWidth:   Width / (2 * len(bars)),
		XAxis:      chart.Style{TextRotationDegrees: 30},
		YAxis: chart.YAxis{
			Range:          valueRange(peak),
			ValueFormatter: moneyTick,
		},
		Bars: bars,
	}
	return render(w, c)
}

type renderable interface {
	Render(rp chart.RendererProvider, w io.Writer) error
}

// render buffers the SVG so a failed render never leaves a partial image
// behind; the placeholder is written instead.
func render(w io.Writer, c renderable) error {
	var buf bytes.Buffer
	if err := c.Render(chart.SVG, &buf); err != nil {
		return Placeholder(w, "Chart unavailable: "+err.Error())
	}
	_, err := buf.WriteTo(w)
	return err
}

// Placeholder writes a blank SVG carrying a single line of text.
func Placeholder(w io.Writer, message string) error {
	_, err := fmt.Fprintf(w,
		`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`+
			`<rect width="100%%" height="100%%" fill="#ffffff"/>`+
			`<text x="50%%" y="50%%" text-anchor="middle" dominant-baseline="middle" font-family="sans-serif" font-size="18" fill="#7f7f7f">%s</text>`+
			`</svg>`,
		Width, Height, Width, Height, html.EscapeString(message),
	)
	return err
}

// valueRange pins the y axis at zero; go-chart rejects a zero-height range.
func valueRange(peak float64) *chart.ContinuousRange {
	if peak <= 0 {
		peak = 1
	}
	return &chart.ContinuousRange{Min: 0, Max: peak * 1.1}
}

func moneyTick(v any) string {
	if f, ok := v.(float64); ok {
		return format.Money(f)
	}
	return fmt.Sprint(v)
}
