package view

import (
	"fmt"
	"strings"

	"github.com/Sureka400/Ecolens-AI/internal/domain"
)

// RingView carries the SVG attributes of a ring chart.
type RingView struct {
	Radius        float64
	Size          float64
	Center        float64
	Circumference float64
	Offset        float64
	Color         string
}

// NewRing lays out a ring of radius r filled to percent.
func NewRing(r, percent float64, color string) RingView {
	ring := domain.Ring{Radius: r}
	stroke := r / 7
	size := 2*r + 2*stroke
	return RingView{
		Radius:        r,
		Size:          size,
		Center:        size / 2,
		Circumference: ring.Circumference(),
		Offset:        ring.Offset(percent),
		Color:         color,
	}
}

// Chart canvas dimensions shared by the forecast and simulation charts.
const (
	ChartWidth   = 600
	ChartHeight  = 240
	chartPadding = 30
)

// LineChart is the SVG geometry of the forecast chart.
type LineChart struct {
	Width, Height   int
	CurrentPoints   string
	ActionPoints    string
	Labels          []AxisLabel
	CurrentColor    string
	WithActionColor string
}

// AxisLabel is a day label under the chart.
type AxisLabel struct {
	X    float64
	Y    float64
	Text string
}

// NewLineChart plots the current and with-action series of a forecast.
func NewLineChart(points []domain.ForecastPoint) LineChart {
	chart := LineChart{
		Width:           ChartWidth,
		Height:          ChartHeight,
		CurrentColor:    domain.ColorRed,
		WithActionColor: domain.ColorGreen,
	}
	if len(points) == 0 {
		return chart
	}

	top := 1
	for _, p := range points {
		top = max(top, p.Current, p.WithAction)
	}

	plotW := float64(ChartWidth - 2*chartPadding)
	plotH := float64(ChartHeight - 2*chartPadding)
	x := func(i int) float64 {
		if len(points) == 1 {
			return chartPadding + plotW/2
		}
		return chartPadding + float64(i)*plotW/float64(len(points)-1)
	}
	y := func(v int) float64 {
		return chartPadding + plotH - float64(v)/float64(top)*plotH
	}

	current := make([]string, 0, len(points))
	action := make([]string, 0, len(points))
	for i, p := range points {
		current = append(current, fmt.Sprintf("%.1f,%.1f", x(i), y(p.Current)))
		action = append(action, fmt.Sprintf("%.1f,%.1f", x(i), y(p.WithAction)))
		chart.Labels = append(chart.Labels, AxisLabel{X: x(i), Y: ChartHeight - 8, Text: p.Day})
	}
	chart.CurrentPoints = strings.Join(current, " ")
	chart.ActionPoints = strings.Join(action, " ")
	return chart
}

// Bar is one rectangle of the simulation chart.
type Bar struct {
	X, Y, Width, Height float64
	LabelX              float64
	Label               string
	Value               int
}

// NewBars lays out one bar per item. Values are scaled against 100 or the
// largest value, whichever is greater.
func NewBars(items []domain.SimulationItem) []Bar {
	if len(items) == 0 {
		return nil
	}
	top := 100
	for _, it := range items {
		top = max(top, it.Value)
	}

	plotW := float64(ChartWidth - 2*chartPadding)
	plotH := float64(ChartHeight - 2*chartPadding)
	slot := plotW / float64(len(items))
	width := slot * 0.6

	bars := make([]Bar, 0, len(items))
	for i, it := range items {
		h := float64(max(it.Value, 0)) / float64(top) * plotH
		x := chartPadding + float64(i)*slot + (slot-width)/2
		bars = append(bars, Bar{
			X:      x,
			Y:      chartPadding + plotH - h,
			Width:  width,
			Height: h,
			LabelX: x + width/2,
			Label:  it.Category,
			Value:  it.Value,
		})
	}
	return bars
}

// Map canvas dimensions. The canvas spans mapSpanDeg degrees either side of
// the centre.
const (
	MapWidth   = 600
	MapHeight  = 400
	mapSpanDeg = 0.05
)

// ZoneView is a pollution zone projected onto the map canvas.
type ZoneView struct {
	X, Y, R  float64
	Color    string
	Severity string
	Tooltip  string
}

// ProjectZones places zones on the map canvas relative to center. Points
// outside the span are clamped to the edge.
func ProjectZones(center domain.Coordinates, zones []domain.PollutionZone) []ZoneView {
	out := make([]ZoneView, 0, len(zones))
	for _, z := range zones {
		dx := (z.Lon - center.Lon) / mapSpanDeg
		dy := (z.Lat - center.Lat) / mapSpanDeg
		x := MapWidth/2 + clamp(dx, -1, 1)*(MapWidth/2-20)
		y := MapHeight/2 - clamp(dy, -1, 1)*(MapHeight/2-20)
		out = append(out, ZoneView{
			X:        x,
			Y:        y,
			R:        zoneRadius(z.Severity),
			Color:    domain.RiskColor(z.Severity),
			Severity: z.Severity,
			Tooltip:  z.Tooltip,
		})
	}
	return out
}

func zoneRadius(severity string) float64 {
	switch severity {
	case domain.RiskHigh:
		return 40
	case domain.RiskModerate:
		return 30
	default:
		return 20
	}
}

func clamp(v, lo, hi float64) float64 {
	return min(max(v, lo), hi)
}
