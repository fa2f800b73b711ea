package domain

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
)

// NoDataColor fills regions without an observation. It is never part of a palette.
const NoDataColor = "#444444"

// LegendBucket is one legend entry: a value range label and its colour.
type LegendBucket struct {
	Label string `json:"label"`
	Color string `json:"color"`
}

// ColorMode is the colour strategy of a variable. It is a closed set:
// Binned and Continuous are the only implementations.
type ColorMode interface {
	// Kind is "binned" or "continuous".
	Kind() string
	// ColorFor maps a value to a colour. nil maps to NoDataColor.
	ColorFor(v *float64) string
	// Fit returns the mode with the active domain for the visible slice.
	Fit(values []float64) ColorMode
	// Legend describes the mode's buckets, or the two ends of a gradient.
	Legend() []LegendBucket

	colorMode()
}

// Binned is a step function over ascending breakpoints. The palette has one
// more colour than there are breakpoints.
type Binned struct {
	Breakpoints []float64
	Low         float64
	High        float64
	Palette     []string
}

// NewBinned validates and builds a binned colour mode.
func NewBinned(breakpoints []float64, low, high float64, palette []string) (Binned, error) {
	if len(breakpoints) == 0 {
		return Binned{}, errors.New("binned mode needs at least one breakpoint")
	}
	if len(palette) != len(breakpoints)+1 {
		return Binned{}, fmt.Errorf("binned mode needs %d palette colours, got %d", len(breakpoints)+1, len(palette))
	}
	for i := 1; i < len(breakpoints); i++ {
		if breakpoints[i] <= breakpoints[i-1] {
			return Binned{}, fmt.Errorf("breakpoints must be strictly ascending at index %d", i)
		}
	}
	if !(low < high) {
		return Binned{}, fmt.Errorf("binned domain [%g, %g] is empty", low, high)
	}
	return Binned{
		Breakpoints: append([]float64(nil), breakpoints...),
		Low:         low,
		High:        high,
		Palette:     append([]string(nil), palette...),
	}, nil
}

func (Binned) colorMode() {}

func (Binned) Kind() string { return "binned" }

// Bucket returns the palette index for v.
func (b Binned) Bucket(v float64) int {
	return sort.Search(len(b.Breakpoints), func(i int) bool { return b.Breakpoints[i] > v })
}

func (b Binned) ColorFor(v *float64) string {
	if v == nil || math.IsNaN(*v) {
		return NoDataColor
	}
	return b.Palette[b.Bucket(*v)]
}

func (b Binned) Fit([]float64) ColorMode { return b }

func (b Binned) Legend() []LegendBucket {
	bp := b.Breakpoints
	out := make([]LegendBucket, len(b.Palette))
	for i, color := range b.Palette {
		var label string
		switch {
		case i == 0:
			label = "< " + formatBound(bp[0])
		case i == len(bp):
			label = formatBound(bp[i-1]) + " – " + formatBound(b.High)
		default:
			label = formatBound(bp[i-1]) + " – " + formatBound(bp[i])
		}
		out[i] = LegendBucket{Label: label, Color: color}
	}
	return out
}

// DomainPolicy selects how a continuous variable's colour domain is chosen.
type DomainPolicy string

const (
	// DomainFixed uses the configured bounds as-is.
	DomainFixed DomainPolicy = "fixed"
	// DomainGlobal uses min/max over every period, so colours compare across time.
	DomainGlobal DomainPolicy = "global"
	// DomainSlice recomputes min/max from the visible slice on every render.
	DomainSlice DomainPolicy = "slice"
)

// ParseDomainPolicy accepts "fixed", "global" or "slice". Empty means global.
func ParseDomainPolicy(s string) (DomainPolicy, error) {
	switch DomainPolicy(s) {
	case "":
		return DomainGlobal, nil
	case DomainFixed, DomainGlobal, DomainSlice:
		return DomainPolicy(s), nil
	default:
		return "", fmt.Errorf("unknown domain policy %q", s)
	}
}

// Continuous maps a clamped value through an interpolator.
type Continuous struct {
	Min          float64
	Max          float64
	Policy       DomainPolicy
	Interpolator Interpolator
}

func (Continuous) colorMode() {}

func (Continuous) Kind() string { return "continuous" }

// WithDomain returns a copy with the given bounds.
func (c Continuous) WithDomain(lo, hi float64) Continuous {
	c.Min, c.Max = lo, hi
	return c
}

func (c Continuous) ColorFor(v *float64) string {
	if v == nil || math.IsNaN(*v) {
		return NoDataColor
	}
	if c.Max == c.Min {
		return c.Interpolator.At(0.5)
	}
	t := (*v - c.Min) / (c.Max - c.Min)
	return c.Interpolator.At(math.Max(0, math.Min(1, t)))
}

func (c Continuous) Fit(values []float64) ColorMode {
	if c.Policy != DomainSlice || len(values) == 0 {
		return c
	}
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return c.WithDomain(lo, hi)
}

func (c Continuous) Legend() []LegendBucket {
	return []LegendBucket{
		{Label: formatBound(c.Min), Color: c.Interpolator.At(0)},
		{Label: formatBound(c.Max), Color: c.Interpolator.At(1)},
	}
}

func formatBound(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
