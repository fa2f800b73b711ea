package app

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/couchcryptid/modis-choropleth/internal/config"
	"github.com/couchcryptid/modis-choropleth/internal/domain"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const wideCSV = `State,year,month,NDVI,ET
Texas,2024,1,0.31,
Texas,2024,2,0.52,40
Ohio,2024,1,0.7,55
`

const statesGeoJSON = `{"type":"FeatureCollection","features":[
 {"type":"Feature","properties":{"name":"Texas"},"geometry":{"type":"Polygon","coordinates":[[[0,0],[1,0],[1,1],[0,1],[0,0]]]}},
 {"type":"Feature","properties":{"name":"Maine"},"geometry":{"type":"Polygon","coordinates":[[[5,5],[6,5],[6,6],[5,6],[5,5]]]}}
]}`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func testConfig(dataPath string) *config.Config {
	return &config.Config{
		DataSource:           "csv",
		DataPath:             dataPath,
		DataFormat:           "auto",
		DuplicatePolicy:      "last",
		BoundaryNameProperty: "name",
	}
}

func discard() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestLoad_CSVWithDefaults(t *testing.T) {
	cfg := testConfig(writeFile(t, "modis.csv", wideCSV))

	ds, err := Load(context.Background(), cfg, discard())
	require.NoError(t, err)
	assert.Nil(t, ds.Boundaries)

	assert.Equal(t, []string{"Ohio", "Texas"}, ds.Engine.Regions())
	assert.Equal(t, []string{"NDVI", "ET"}, ds.Engine.Registry().IDs(), "catalog order, absent variables skipped")
	assert.Equal(t, []domain.Period{"2024-01", "2024-02"}, ds.Engine.Store().Periods())
}

func TestLoad_WithBoundaries(t *testing.T) {
	cfg := testConfig(writeFile(t, "modis.csv", wideCSV))
	cfg.BoundariesPath = writeFile(t, "states.geojson", statesGeoJSON)

	ds, err := Load(context.Background(), cfg, discard())
	require.NoError(t, err)
	require.NotNil(t, ds.Boundaries)

	assert.Equal(t, []string{"Maine", "Ohio", "Texas"}, ds.Engine.Regions())
	region, ok := ds.Boundaries.RegionAt(orb.Point{0.5, 0.5})
	require.True(t, ok)
	assert.Equal(t, "Texas", region)

	frame, err := ds.Engine.Render("NDVI", "2024-01", "")
	require.NoError(t, err)
	assert.Equal(t, domain.NoDataColor, frame.RegionColors["Maine"])
}

func TestLoad_VariablesFile(t *testing.T) {
	cfg := testConfig(writeFile(t, "modis.csv", wideCSV))
	cfg.VariablesFile = writeFile(t, "variables.yaml", `
variables:
  - id: ET
    name: Evapotranspiration
    unit: mm
    continuous:
      interpolator: greens
      policy: fixed
      domain: [0, 100]
`)

	ds, err := Load(context.Background(), cfg, discard())
	require.NoError(t, err)

	assert.Equal(t, []string{"ET", "NDVI"}, ds.Engine.Registry().IDs(), "NDVI is auto-registered")
	spec, err := ds.Engine.Registry().Resolve("ET")
	require.NoError(t, err)
	assert.Equal(t, "Evapotranspiration", spec.Name)
}

func TestLoad_Errors(t *testing.T) {
	t.Run("missing data file", func(t *testing.T) {
		_, err := Load(context.Background(), testConfig(filepath.Join(t.TempDir(), "nope.csv")), discard())
		require.Error(t, err)
	})
	t.Run("malformed number", func(t *testing.T) {
		cfg := testConfig(writeFile(t, "bad.csv", "State,year,month,NDVI\nTexas,2024,1,abc\n"))
		_, err := Load(context.Background(), cfg, discard())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "row")
	})
	t.Run("bad boundaries", func(t *testing.T) {
		cfg := testConfig(writeFile(t, "modis.csv", wideCSV))
		cfg.BoundariesPath = writeFile(t, "states.geojson", "{")
		_, err := Load(context.Background(), cfg, discard())
		require.Error(t, err)
	})
	t.Run("duplicate rejected", func(t *testing.T) {
		cfg := testConfig(writeFile(t, "dup.csv", "State,year,month,NDVI\nTexas,2024,1,0.1\nTexas,2024,1,0.2\n"))
		cfg.DuplicatePolicy = "reject"
		_, err := Load(context.Background(), cfg, discard())
		require.Error(t, err)
	})
}
