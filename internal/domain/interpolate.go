package domain

import (
	"fmt"
	"math"
	"sort"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Interpolator maps t in [0, 1] onto a colour ramp. Adjacent stops are
// blended in CIE L*a*b* so equal steps in t look like equal steps in colour.
type Interpolator struct {
	name  string
	stops []colorful.Color
}

// NewInterpolator builds a named ramp from at least two hex colour stops.
func NewInterpolator(name string, hexStops ...string) (Interpolator, error) {
	if len(hexStops) < 2 {
		return Interpolator{}, fmt.Errorf("interpolator %q needs at least two stops", name)
	}
	stops := make([]colorful.Color, len(hexStops))
	for i, h := range hexStops {
		c, err := colorful.Hex(h)
		if err != nil {
			return Interpolator{}, fmt.Errorf("interpolator %q stop %d: %w", name, i, err)
		}
		stops[i] = c
	}
	return Interpolator{name: name, stops: stops}, nil
}

func mustInterpolator(name string, hexStops ...string) Interpolator {
	ip, err := NewInterpolator(name, hexStops...)
	if err != nil {
		panic(err)
	}
	return ip
}

// Name returns the ramp's registry name.
func (ip Interpolator) Name() string { return ip.name }

// At returns the hex colour at position t. t is clamped into [0, 1].
func (ip Interpolator) At(t float64) string {
	if len(ip.stops) == 0 {
		return NoDataColor
	}
	if math.IsNaN(t) || t <= 0 {
		return ip.stops[0].Hex()
	}
	if t >= 1 {
		return ip.stops[len(ip.stops)-1].Hex()
	}
	scaled := t * float64(len(ip.stops)-1)
	i := int(scaled)
	frac := scaled - float64(i)
	return ip.stops[i].BlendLab(ip.stops[i+1], frac).Clamped().Hex()
}

var interpolators = map[string]Interpolator{
	"viridis": mustInterpolator("viridis",
		"#440154", "#472d7b", "#3b528b", "#2c728e", "#21918c",
		"#28ae80", "#5ec962", "#addc30", "#fde725"),
	"magma": mustInterpolator("magma",
		"#000004", "#1c1044", "#4f127b", "#812581", "#b5367a",
		"#e55964", "#fb8761", "#fec287", "#fcfdbf"),
	"greens": mustInterpolator("greens",
		"#f7fcf5", "#c7e9c0", "#74c476", "#238b45", "#00441b"),
}

// InterpolatorByName looks up a built-in ramp.
func InterpolatorByName(name string) (Interpolator, bool) {
	ip, ok := interpolators[name]
	return ip, ok
}

// InterpolatorNames lists the built-in ramps, sorted.
func InterpolatorNames() []string {
	names := make([]string, 0, len(interpolators))
	for n := range interpolators {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
