// Package chart draws a pinned region's trajectory as a line chart.
package chart

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/couchcryptid/modis-choropleth/internal/domain"
	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// ErrNoData is returned when a trajectory has no defined value to draw.
var ErrNoData = errors.New("trajectory has no defined values")

// Format is an output image format.
type Format string

const (
	SVG Format = "svg"
	PNG Format = "png"
)

// ContentType returns the MIME type for f.
func (f Format) ContentType() string {
	if f == PNG {
		return "image/png"
	}
	return "image/svg+xml"
}

// ParseFormat accepts "svg" or "png".
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case SVG, PNG:
		return Format(s), nil
	}
	return "", fmt.Errorf("unknown chart format %q", s)
}

const maxTicks = 12

// Renderer draws trajectories at a fixed size.
type Renderer struct {
	Width  int
	Height int
}

// New creates a Renderer. Non-positive dimensions fall back to 800x400.
func New(width, height int) *Renderer {
	if width <= 0 {
		width = 800
	}
	if height <= 0 {
		height = 400
	}
	return &Renderer{Width: width, Height: height}
}

// Labels are the chart title and y-axis name.
type Labels struct {
	Title string
	YAxis string
}

// Render writes the trajectory chart for points to w. Missing values break
// the line instead of being drawn as zero. The tracked point, if any, is
// drawn as a highlighted dot.
func (r *Renderer) Render(w io.Writer, format Format, labels Labels, points []domain.Point, tracked *domain.Point) error {
	lo, hi, ok := valueRange(points)
	if !ok {
		return ErrNoData
	}

	line := gochart.Style{StrokeColor: gochart.ColorBlue, StrokeWidth: 2}
	series := make([]gochart.Series, 0, 4)
	for _, run := range runs(points) {
		s := gochart.ContinuousSeries{XValues: run.xs, YValues: run.ys, Style: line}
		if len(run.xs) == 1 {
			// A lone value between gaps would draw nothing as a line.
			s.XValues = []float64{run.xs[0], run.xs[0]}
			s.YValues = []float64{run.ys[0], run.ys[0]}
			s.Style = pointStyle(gochart.ColorBlue, 4)
		}
		series = append(series, s)
	}
	if x, ok := trackedIndex(points, tracked); ok {
		y := *tracked.Value
		series = append(series, gochart.ContinuousSeries{
			Name:    "current",
			XValues: []float64{x, x},
			YValues: []float64{y, y},
			Style:   pointStyle(gochart.ColorRed, 6),
		})
	}

	ch := gochart.Chart{
		Title:      labels.Title,
		Width:      r.Width,
		Height:     r.Height,
		Background: gochart.Style{Padding: gochart.Box{Top: 24, Left: 16, Right: 16, Bottom: 16}},
		XAxis:      xAxis(points),
		YAxis: gochart.YAxis{
			Name:  labels.YAxis,
			Range: &gochart.ContinuousRange{Min: lo, Max: hi},
		},
		Series: series,
	}

	rp := gochart.SVG
	if format == PNG {
		rp = gochart.PNG
	}
	if err := ch.Render(rp, w); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	return nil
}

// pointStyle renders points only.
func pointStyle(col drawing.Color, width float64) gochart.Style {
	return gochart.Style{
		StrokeWidth: 0,
		DotWidth:    width,
		DotColor:    col,
	}
}

type run struct {
	xs []float64
	ys []float64
}

// runs splits points into maximal stretches of defined values. X values are
// period indexes.
func runs(points []domain.Point) []run {
	var out []run
	var cur run
	for i, p := range points {
		if !p.Defined() {
			if len(cur.xs) > 0 {
				out = append(out, cur)
				cur = run{}
			}
			continue
		}
		cur.xs = append(cur.xs, float64(i))
		cur.ys = append(cur.ys, *p.Value)
	}
	if len(cur.xs) > 0 {
		out = append(out, cur)
	}
	return out
}

// valueRange returns a padded [lo, hi] over the defined values that is
// never empty.
func valueRange(points []domain.Point) (lo, hi float64, ok bool) {
	for _, p := range points {
		if !p.Defined() {
			continue
		}
		v := *p.Value
		if !ok {
			lo, hi, ok = v, v, true
			continue
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if !ok {
		return 0, 0, false
	}
	pad := (hi - lo) * 0.05
	if pad == 0 {
		pad = math.Max(math.Abs(lo)*0.1, 1)
	}
	return lo - pad, hi + pad, true
}

func xAxis(points []domain.Point) gochart.XAxis {
	n := len(points)
	maxX := float64(n - 1)
	if n <= 1 {
		maxX = 1
	}
	step := (n + maxTicks - 1) / maxTicks
	if step < 1 {
		step = 1
	}
	ticks := make([]gochart.Tick, 0, maxTicks+1)
	for i := 0; i < n; i += step {
		ticks = append(ticks, gochart.Tick{Value: float64(i), Label: points[i].Period.String()})
	}
	if n == 1 {
		ticks = append(ticks, gochart.Tick{Value: 1, Label: ""})
	}
	return gochart.XAxis{
		Ticks: ticks,
		Range: &gochart.ContinuousRange{Min: 0, Max: maxX},
	}
}

func trackedIndex(points []domain.Point, tracked *domain.Point) (float64, bool) {
	if tracked == nil || !tracked.Defined() {
		return 0, false
	}
	for i, p := range points {
		if p.Period == tracked.Period {
			return float64(i), true
		}
	}
	return 0, false
}
