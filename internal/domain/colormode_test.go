package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testPalette = []string{"#c0c0c0", "#c1c1c1", "#c2c2c2", "#c3c3c3"}

func testBinned(t *testing.T) Binned {
	t.Helper()
	b, err := NewBinned([]float64{0.2, 0.4, 0.6}, -0.2, 1, testPalette)
	require.NoError(t, err)
	return b
}

func TestBinned_ColorFor(t *testing.T) {
	b := testBinned(t)

	tests := []struct {
		name     string
		value    *float64
		expected string
	}{
		{"below first breakpoint", Float(0.1), testPalette[0]},
		{"negative", Float(-0.15), testPalette[0]},
		{"edge at first breakpoint", Float(0.2), testPalette[1]},
		{"between", Float(0.5), testPalette[2]},
		{"edge at last breakpoint", Float(0.6), testPalette[3]},
		{"above last", Float(0.95), testPalette[3]},
		{"above domain", Float(4), testPalette[3]},
		{"zero is a value", Float(0), testPalette[0]},
		{"absent", nil, NoDataColor},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, b.ColorFor(tt.value))
		})
	}
}

func TestBinned_MonotoneAndCoversPalette(t *testing.T) {
	b := testBinned(t)

	seen := make(map[string]int)
	last := -1
	for v := b.Low; v <= b.High; v += 0.01 {
		bucket := b.Bucket(v)
		assert.GreaterOrEqual(t, bucket, last, "bucket index decreased at %g", v)
		last = bucket
		seen[b.ColorFor(Float(v))]++
	}

	assert.Len(t, seen, len(testPalette))
	for _, c := range testPalette {
		assert.Positive(t, seen[c], "palette colour %s never produced", c)
	}
	assert.NotContains(t, seen, NoDataColor)
}

func TestBinned_Legend(t *testing.T) {
	b := testBinned(t)

	assert.Equal(t, []LegendBucket{
		{Label: "< 0.2", Color: testPalette[0]},
		{Label: "0.2 – 0.4", Color: testPalette[1]},
		{Label: "0.4 – 0.6", Color: testPalette[2]},
		{Label: "0.6 – 1", Color: testPalette[3]},
	}, b.Legend())
}

func TestNewBinned_Validation(t *testing.T) {
	tests := []struct {
		name        string
		breakpoints []float64
		low, high   float64
		palette     []string
	}{
		{"no breakpoints", nil, 0, 1, []string{"#000000"}},
		{"palette too short", []float64{0.5}, 0, 1, []string{"#000000"}},
		{"palette too long", []float64{0.5}, 0, 1, []string{"#000000", "#111111", "#222222"}},
		{"descending breakpoints", []float64{0.5, 0.2}, 0, 1, testPalette[:3]},
		{"repeated breakpoint", []float64{0.5, 0.5}, 0, 1, testPalette[:3]},
		{"empty domain", []float64{0.5}, 1, 1, testPalette[:2]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewBinned(tt.breakpoints, tt.low, tt.high, tt.palette)
			assert.Error(t, err)
		})
	}
}

func TestContinuous_ColorFor(t *testing.T) {
	viridis, ok := InterpolatorByName("viridis")
	require.True(t, ok)
	c := Continuous{Min: 0, Max: 10, Policy: DomainFixed, Interpolator: viridis}

	assert.Equal(t, "#440154", c.ColorFor(Float(0)))
	assert.Equal(t, "#fde725", c.ColorFor(Float(10)))
	assert.Equal(t, "#440154", c.ColorFor(Float(-5)), "clamped below")
	assert.Equal(t, "#fde725", c.ColorFor(Float(99)), "clamped above")
	assert.Equal(t, viridis.At(0.5), c.ColorFor(Float(5)))
	assert.Equal(t, NoDataColor, c.ColorFor(nil))
}

func TestContinuous_Fit(t *testing.T) {
	viridis, _ := InterpolatorByName("viridis")
	values := []float64{3, 7, 5}

	t.Run("slice policy adopts slice bounds", func(t *testing.T) {
		c := Continuous{Min: 0, Max: 100, Policy: DomainSlice, Interpolator: viridis}
		fitted, ok := c.Fit(values).(Continuous)
		require.True(t, ok)
		assert.InDelta(t, 3.0, fitted.Min, 1e-9)
		assert.InDelta(t, 7.0, fitted.Max, 1e-9)
		assert.Equal(t, "#fde725", fitted.ColorFor(Float(7)))
	})

	t.Run("slice policy with empty slice keeps bounds", func(t *testing.T) {
		c := Continuous{Min: 0, Max: 100, Policy: DomainSlice, Interpolator: viridis}
		assert.Equal(t, ColorMode(c), c.Fit(nil))
	})

	t.Run("global policy ignores slice", func(t *testing.T) {
		c := Continuous{Min: 0, Max: 100, Policy: DomainGlobal, Interpolator: viridis}
		assert.Equal(t, ColorMode(c), c.Fit(values))
	})

	t.Run("single value maps to the middle", func(t *testing.T) {
		c := Continuous{Policy: DomainSlice, Interpolator: viridis}
		fitted := c.Fit([]float64{4})
		assert.Equal(t, viridis.At(0.5), fitted.ColorFor(Float(4)))
	})
}

func TestContinuous_Legend(t *testing.T) {
	magma, _ := InterpolatorByName("magma")
	c := Continuous{Min: -10, Max: 45.5, Interpolator: magma}

	assert.Equal(t, []LegendBucket{
		{Label: "-10", Color: "#000004"},
		{Label: "45.5", Color: "#fcfdbf"},
	}, c.Legend())
}

func TestParseDomainPolicy(t *testing.T) {
	p, err := ParseDomainPolicy("")
	require.NoError(t, err)
	assert.Equal(t, DomainGlobal, p)

	p, err = ParseDomainPolicy("slice")
	require.NoError(t, err)
	assert.Equal(t, DomainSlice, p)

	_, err = ParseDomainPolicy("per-month")
	assert.Error(t, err)
}

func TestInterpolator(t *testing.T) {
	_, err := NewInterpolator("bad", "#000000")
	require.Error(t, err)

	_, err = NewInterpolator("bad", "#000000", "not-a-colour")
	require.Error(t, err)

	ip, err := NewInterpolator("bw", "#000000", "#ffffff")
	require.NoError(t, err)
	assert.Equal(t, "#000000", ip.At(-1))
	assert.Equal(t, "#ffffff", ip.At(2))
	mid := ip.At(0.5)
	assert.NotEqual(t, "#000000", mid)
	assert.NotEqual(t, "#ffffff", mid)

	assert.Equal(t, []string{"greens", "magma", "viridis"}, InterpolatorNames())
}
