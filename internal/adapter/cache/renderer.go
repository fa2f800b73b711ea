// Package cache memoizes rendered frames. The store and registry behind a
// renderer never change after startup, so a frame is a pure function of its
// (variable, period, pinned) key and can be reused until evicted.
package cache

import (
	"maps"
	"slices"

	"github.com/couchcryptid/modis-choropleth/internal/domain"
	"github.com/couchcryptid/modis-choropleth/internal/observability"
	lru "github.com/hashicorp/golang-lru/v2"
)

// CachedRenderer wraps a Renderer with an in-memory LRU cache. It is safe
// for concurrent use.
type CachedRenderer struct {
	inner   domain.Renderer
	cache   *lru.Cache[frameKey, domain.Frame]
	metrics *observability.Metrics
}

type frameKey struct {
	variable string
	period   domain.Period
	pinned   string
}

// NewCachedRenderer creates a cache decorator around a renderer. A
// maxEntries below 1 keeps a single frame.
func NewCachedRenderer(inner domain.Renderer, maxEntries int, metrics *observability.Metrics) *CachedRenderer {
	if maxEntries < 1 {
		maxEntries = 1
	}
	// lru.New only fails for a non-positive size.
	cache, _ := lru.New[frameKey, domain.Frame](maxEntries)
	return &CachedRenderer{
		inner:   inner,
		cache:   cache,
		metrics: metrics,
	}
}

func (c *CachedRenderer) Render(variableID string, period domain.Period, pinned string) (domain.Frame, error) {
	key := frameKey{variable: variableID, period: period, pinned: pinned}
	if frame, ok := c.cache.Get(key); ok {
		c.metrics.FrameCache.WithLabelValues("hit").Inc()
		return cloneFrame(frame), nil
	}
	c.metrics.FrameCache.WithLabelValues("miss").Inc()

	frame, err := c.inner.Render(variableID, period, pinned)
	if err != nil {
		// Errors are not cached; an unknown variable stays unknown but costs
		// nothing to re-check.
		return frame, err
	}
	c.cache.Add(key, cloneFrame(frame))
	return frame, nil
}

// Len returns the number of cached frames.
func (c *CachedRenderer) Len() int { return c.cache.Len() }

func cloneFrame(f domain.Frame) domain.Frame {
	f.RegionColors = maps.Clone(f.RegionColors)
	f.Legend = slices.Clone(f.Legend)
	f.Trajectory = slices.Clone(f.Trajectory)
	if f.Tracked != nil {
		p := *f.Tracked
		f.Tracked = &p
	}
	return f
}
