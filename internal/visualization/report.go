// Package visualization renders simulation trajectories as a self-contained
// HTML report with inline SVG charts.
package visualization

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"math"
	"time"

	"github.com/nvandessel/acsim/internal/analysis"
	"github.com/nvandessel/acsim/internal/models"
)

// Chart geometry in SVG user units.
const (
	chartWidth  = 640.0
	chartHeight = 360.0
	marginLeft  = 56.0
	marginRight = 16.0
	marginTop   = 16.0
	marginBot   = 44.0
	tickCount   = 5
)

// settingColors matches the setting to a fixed point colour.
var settingColors = map[models.Setting]string{
	models.SettingLow:    "#4c9be8",
	models.SettingMedium: "#f2a541",
	models.SettingHigh:   "#d94f4f",
}

type point struct {
	X, Y  float64
	Color string
	Title string
}

type tick struct {
	Pos   float64
	Label string
}

type chart struct {
	Title  string
	XLabel string
	YLabel string
	Width  float64
	Height float64
	Left   float64
	Right  float64
	Top    float64
	Bottom float64
	XTicks []tick
	YTicks []tick
	Points []point
}

type reportData struct {
	Title       string
	GeneratedAt string
	Summary     *analysis.Summary
	Charts      []chart
}

// RenderHTML writes the report for records and their summary to w.
func RenderHTML(w io.Writer, summary *analysis.Summary, records []models.TrajectoryRecord) error {
	if summary == nil || len(records) == 0 {
		return analysis.ErrNoRecords
	}

	tmplBytes, err := templates.ReadFile("templates/report.html.tmpl")
	if err != nil {
		return fmt.Errorf("read HTML template: %w", err)
	}

	tmpl, err := template.New("report").Funcs(template.FuncMap{
		"f1": func(v float64) string { return fmt.Sprintf("%.1f", v) },
		"f2": func(v float64) string { return fmt.Sprintf("%.2f", v) },
	}).Parse(string(tmplBytes))
	if err != nil {
		return fmt.Errorf("parse HTML template: %w", err)
	}

	data := reportData{
		Title:       "AC simulation report",
		GeneratedAt: time.Now().Format(time.RFC1123),
		Summary:     summary,
		Charts: []chart{
			energyChart(records),
			timelineChart(records),
		},
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return fmt.Errorf("execute HTML template: %w", err)
	}
	_, err = w.Write(buf.Bytes())
	return err
}

// energyChart plots energy usage against adjusted temperature, coloured by setting.
func energyChart(records []models.TrajectoryRecord) chart {
	xs := make([]float64, len(records))
	ys := make([]float64, len(records))
	for i, r := range records {
		xs[i], ys[i] = r.EnergyUsage, r.AdjustedTemp
	}
	c, sx, sy := newChart("Energy usage vs adjusted temperature", "Energy usage", "Adjusted temperature (°C)", xs, ys)
	for i, r := range records {
		c.Points = append(c.Points, point{
			X:     sx(xs[i]),
			Y:     sy(ys[i]),
			Color: settingColors[r.Setting],
			Title: fmt.Sprintf("minute %d: %s, %.2f °C", r.Time, r.Setting, r.AdjustedTemp),
		})
	}
	return c
}

// timelineChart plots adjusted temperature over time, coloured cold to hot.
func timelineChart(records []models.TrajectoryRecord) chart {
	xs := make([]float64, len(records))
	ys := make([]float64, len(records))
	for i, r := range records {
		xs[i], ys[i] = float64(r.Time), r.AdjustedTemp
	}
	c, sx, sy := newChart("Adjusted temperature over time", "Time (min)", "Adjusted temperature (°C)", xs, ys)
	lo, hi := bounds(ys)
	for i, r := range records {
		c.Points = append(c.Points, point{
			X:     sx(xs[i]),
			Y:     sy(ys[i]),
			Color: heat(ys[i], lo, hi),
			Title: fmt.Sprintf("minute %d: %.2f °C (was %.2f)", r.Time, r.AdjustedTemp, r.OriginalTemp),
		})
	}
	return c
}

// newChart builds axes for the data and returns scale functions mapping data
// values to SVG coordinates.
func newChart(title, xLabel, yLabel string, xs, ys []float64) (chart, func(float64) float64, func(float64) float64) {
	c := chart{
		Title:  title,
		XLabel: xLabel,
		YLabel: yLabel,
		Width:  chartWidth,
		Height: chartHeight,
		Left:   marginLeft,
		Right:  chartWidth - marginRight,
		Top:    marginTop,
		Bottom: chartHeight - marginBot,
	}

	xlo, xhi := padded(bounds(xs))
	ylo, yhi := padded(bounds(ys))

	sx := func(v float64) float64 { return c.Left + (v-xlo)/(xhi-xlo)*(c.Right-c.Left) }
	sy := func(v float64) float64 { return c.Bottom - (v-ylo)/(yhi-ylo)*(c.Bottom-c.Top) }

	for i := 0; i <= tickCount; i++ {
		xv := xlo + (xhi-xlo)*float64(i)/tickCount
		yv := ylo + (yhi-ylo)*float64(i)/tickCount
		c.XTicks = append(c.XTicks, tick{Pos: sx(xv), Label: label(xv)})
		c.YTicks = append(c.YTicks, tick{Pos: sy(yv), Label: label(yv)})
	}
	return c, sx, sy
}

func bounds(vs []float64) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range vs {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}

// padded widens a range by 5% each side, and gives a constant series a unit range.
func padded(lo, hi float64) (float64, float64) {
	if hi-lo < 1e-9 {
		return lo - 0.5, hi + 0.5
	}
	pad := (hi - lo) * 0.05
	return lo - pad, hi + pad
}

func label(v float64) string {
	if math.Abs(v) >= 100 {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.1f", v)
}

// heat maps v in [lo, hi] onto a blue to red ramp.
func heat(v, lo, hi float64) string {
	t := 0.5
	if hi > lo {
		t = (v - lo) / (hi - lo)
	}
	r := int(math.Round(40 + t*(220-40)))
	b := int(math.Round(220 - t*(220-40)))
	return fmt.Sprintf("#%02x50%02x", r, b)
}
