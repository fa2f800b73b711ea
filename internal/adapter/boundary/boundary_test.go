package boundary

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Two unit squares side by side plus a detached island belonging to "West".
const testGeoJSON = `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature", "properties": {"name": "West"},
     "geometry": {"type": "Polygon", "coordinates": [[[0,0],[1,0],[1,1],[0,1],[0,0]]]}},
    {"type": "Feature", "properties": {"name": "East"},
     "geometry": {"type": "MultiPolygon", "coordinates": [[[[1,0],[2,0],[2,1],[1,1],[1,0]]]]}},
    {"type": "Feature", "properties": {"name": "West"},
     "geometry": {"type": "Polygon", "coordinates": [[[5,5],[6,5],[6,6],[5,6],[5,5]]]}}
  ]
}`

func TestLoad(t *testing.T) {
	c, err := Load(strings.NewReader(testGeoJSON), "")
	require.NoError(t, err)

	assert.Equal(t, []string{"East", "West"}, c.Names())
	assert.Equal(t, 2, c.Len())

	west, ok := c.Geometry("West")
	require.True(t, ok)
	assert.Len(t, west, 2, "features with the same name merge")

	_, ok = c.Geometry("North")
	assert.False(t, ok)
}

func TestRegionAt(t *testing.T) {
	c, err := Load(strings.NewReader(testGeoJSON), DefaultNameProperty)
	require.NoError(t, err)

	tests := []struct {
		name   string
		point  orb.Point
		region string
		found  bool
	}{
		{"inside west", orb.Point{0.5, 0.5}, "West", true},
		{"inside east", orb.Point{1.5, 0.5}, "East", true},
		{"west island", orb.Point{5.5, 5.5}, "West", true},
		{"outside everything", orb.Point{3, 3}, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			region, found := c.RegionAt(tt.point)
			assert.Equal(t, tt.found, found)
			assert.Equal(t, tt.region, region)
		})
	}
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(strings.NewReader("not json"), "")
	require.Error(t, err)

	noName := `{"type":"FeatureCollection","features":[{"type":"Feature","properties":{},
	  "geometry":{"type":"Point","coordinates":[0,0]}}]}`
	_, err = Load(strings.NewReader(noName), "")
	require.ErrorContains(t, err, `"name"`)

	point := `{"type":"FeatureCollection","features":[{"type":"Feature","properties":{"name":"P"},
	  "geometry":{"type":"Point","coordinates":[0,0]}}]}`
	_, err = Load(strings.NewReader(point), "")
	require.ErrorContains(t, err, "unsupported geometry")
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "states.geojson")
	require.NoError(t, os.WriteFile(path, []byte(testGeoJSON), 0o600))

	c, err := LoadFile(path, "name")
	require.NoError(t, err)
	assert.Equal(t, 2, c.Len())

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.geojson"), "name")
	require.Error(t, err)
}
