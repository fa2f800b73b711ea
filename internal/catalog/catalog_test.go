package catalog

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/couchcryptid/modis-choropleth/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testYAML = `
variables:
  - id: NDVI
    name: Vegetation
    binned:
      breakpoints: [0.2, 0.4, 0.6]
      domain: [0, 1]
      palette: ["#000001", "#000002", "#000003", "#000004"]
  - id: LST_Day
    unit: "°C"
    continuous:
      domain: [0, 40]
      policy: fixed
      interpolator: magma
`

func testStore() *domain.Store {
	return domain.NewStore([]domain.Observation{
		{Region: "Texas", Period: "2024-01", Variable: "NDVI", Value: domain.Float(0.3)},
		{Region: "Texas", Period: "2024-01", Variable: "LST_Day", Value: domain.Float(12)},
		{Region: "Texas", Period: "2024-02", Variable: "LST_Day", Value: domain.Float(31)},
		{Region: "Texas", Period: "2024-01", Variable: "Snow_Cover", Value: domain.Float(5)},
		{Region: "Ohio", Period: "2024-02", Variable: "Snow_Cover", Value: domain.Float(55)},
	})
}

func TestParse(t *testing.T) {
	defs, err := Parse(strings.NewReader(testYAML))
	require.NoError(t, err)
	require.Len(t, defs, 2)
	assert.Equal(t, "NDVI", defs[0].ID)
	require.NotNil(t, defs[0].Binned)
	assert.Equal(t, []float64{0.2, 0.4, 0.6}, defs[0].Binned.Breakpoints)
	require.NotNil(t, defs[1].Continuous)
	assert.Equal(t, "fixed", defs[1].Continuous.Policy)
}

func TestParse_Errors(t *testing.T) {
	_, err := Parse(strings.NewReader(""))
	require.Error(t, err)

	_, err = Parse(strings.NewReader("variables: []"))
	require.Error(t, err)

	_, err = Parse(strings.NewReader("variables:\n  - id: X\n    colour: red\n"))
	require.Error(t, err, "unknown fields are rejected")
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "variables.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testYAML), 0o600))

	defs, err := LoadFile(path)
	require.NoError(t, err)
	assert.Len(t, defs, 2)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestBuild(t *testing.T) {
	defs, err := Parse(strings.NewReader(testYAML))
	require.NoError(t, err)

	reg, err := Build(defs, testStore(), slog.Default())
	require.NoError(t, err)

	assert.Equal(t, []string{"NDVI", "LST_Day", "Snow_Cover"}, reg.IDs())

	lst, err := reg.Resolve("LST_Day")
	require.NoError(t, err)
	c, ok := lst.Mode.(domain.Continuous)
	require.True(t, ok)
	assert.Equal(t, domain.DomainFixed, c.Policy)
	assert.InDelta(t, 40.0, c.Max, 1e-9, "fixed domain is not widened by data")
	assert.Equal(t, "magma", c.Interpolator.Name())

	snow, err := reg.Resolve("Snow_Cover")
	require.NoError(t, err)
	auto, ok := snow.Mode.(domain.Continuous)
	require.True(t, ok)
	assert.Equal(t, domain.DomainGlobal, auto.Policy)
	assert.InDelta(t, 5.0, auto.Min, 1e-9)
	assert.InDelta(t, 55.0, auto.Max, 1e-9)
	assert.Equal(t, DefaultInterpolator, auto.Interpolator.Name())
}

func TestBuild_DefaultsGlobalDomain(t *testing.T) {
	reg, err := Build(Defaults(), testStore(), slog.Default())
	require.NoError(t, err)

	assert.Equal(t, []string{"NDVI", "LST_Day", "Snow_Cover"}, reg.IDs(), "defaults absent from data are skipped")

	lst, err := reg.Resolve("LST_Day")
	require.NoError(t, err)
	c := lst.Mode.(domain.Continuous)
	assert.InDelta(t, 12.0, c.Min, 1e-9)
	assert.InDelta(t, 31.0, c.Max, 1e-9)
}

func TestBuild_EmptyStoreKeepsAllDefinitions(t *testing.T) {
	reg, err := Build(Defaults(), domain.NewStore(nil), slog.Default())
	require.NoError(t, err)
	assert.Equal(t, len(Defaults()), reg.Len())

	et, err := reg.Resolve("ET")
	require.NoError(t, err)
	c := et.Mode.(domain.Continuous)
	assert.InDelta(t, 250.0, c.Max, 1e-9, "configured domain is the fallback")
}

func TestBuild_InvalidDefinitions(t *testing.T) {
	store := domain.NewStore(nil)
	tests := []struct {
		name string
		def  Definition
	}{
		{"no mode", Definition{ID: "X"}},
		{"empty id", Definition{Continuous: &ContinuousDef{}}},
		{"both modes", Definition{ID: "X", Binned: &BinnedDef{}, Continuous: &ContinuousDef{}}},
		{"binned without domain", Definition{ID: "X", Binned: &BinnedDef{Breakpoints: []float64{1}, Palette: []string{"#000000", "#ffffff"}}}},
		{"bad palette length", Definition{ID: "X", Binned: &BinnedDef{Breakpoints: []float64{1}, Domain: []float64{0, 2}, Palette: []string{"#000000"}}}},
		{"unknown interpolator", Definition{ID: "X", Continuous: &ContinuousDef{Interpolator: "rainbow"}}},
		{"unknown policy", Definition{ID: "X", Continuous: &ContinuousDef{Policy: "monthly"}}},
		{"fixed without domain", Definition{ID: "X", Continuous: &ContinuousDef{Policy: "fixed"}}},
		{"inverted domain", Definition{ID: "X", Continuous: &ContinuousDef{Domain: []float64{5, 1}}}},
		{"three-value domain", Definition{ID: "X", Continuous: &ContinuousDef{Domain: []float64{1, 2, 3}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build([]Definition{tt.def}, store, slog.Default())
			assert.Error(t, err)
		})
	}

	_, err := Build([]Definition{Defaults()[0], Defaults()[0]}, store, slog.Default())
	assert.Error(t, err, "duplicate ids")
}
