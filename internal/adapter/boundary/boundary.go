// Package boundary loads the region boundary collection from GeoJSON and
// resolves map coordinates to region names.
package boundary

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"
)

// DefaultNameProperty is the feature property holding the region name in
// us-atlas derived state boundaries.
const DefaultNameProperty = "name"

// Collection is an immutable set of named region geometries.
type Collection struct {
	names  []string
	shapes map[string]orb.MultiPolygon
	bounds map[string]orb.Bound
}

// LoadFile reads a GeoJSON FeatureCollection from path.
func LoadFile(path, nameProperty string) (*Collection, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open boundaries: %w", err)
	}
	defer f.Close()
	return Load(f, nameProperty)
}

// Load parses a GeoJSON FeatureCollection of Polygon and MultiPolygon
// features. Features sharing a name are merged into one region.
func Load(r io.Reader, nameProperty string) (*Collection, error) {
	if nameProperty == "" {
		nameProperty = DefaultNameProperty
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read boundaries: %w", err)
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("parse boundaries: %w", err)
	}

	c := &Collection{
		shapes: make(map[string]orb.MultiPolygon),
		bounds: make(map[string]orb.Bound),
	}
	for i, f := range fc.Features {
		name, ok := f.Properties[nameProperty].(string)
		if !ok || name == "" {
			return nil, fmt.Errorf("feature %d has no %q property", i, nameProperty)
		}

		var mp orb.MultiPolygon
		switch g := f.Geometry.(type) {
		case orb.Polygon:
			mp = orb.MultiPolygon{g}
		case orb.MultiPolygon:
			mp = g
		default:
			return nil, fmt.Errorf("feature %q: unsupported geometry %T", name, f.Geometry)
		}

		if existing, dup := c.shapes[name]; dup {
			mp = append(existing, mp...)
		} else {
			c.names = append(c.names, name)
		}
		c.shapes[name] = mp
		c.bounds[name] = mp.Bound()
	}
	sort.Strings(c.names)
	return c, nil
}

// Names returns the region names, sorted.
func (c *Collection) Names() []string {
	return append([]string(nil), c.names...)
}

// Len returns the number of regions.
func (c *Collection) Len() int { return len(c.names) }

// Geometry returns the region's polygons.
func (c *Collection) Geometry(name string) (orb.MultiPolygon, bool) {
	mp, ok := c.shapes[name]
	return mp, ok
}

// RegionAt returns the region containing p (lon, lat). Regions are tested
// in name order; the first hit wins.
func (c *Collection) RegionAt(p orb.Point) (string, bool) {
	for _, name := range c.names {
		if !c.bounds[name].Contains(p) {
			continue
		}
		if planar.MultiPolygonContains(c.shapes[name], p) {
			return name, true
		}
	}
	return "", false
}
